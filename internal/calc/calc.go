package calc

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

var (
	// ErrEmpty is returned by Mean for a dataset without values.
	ErrEmpty = errors.New("empty dataset")
	// ErrNotFinite is returned when a value or the mean does not fit in a
	// finite float64.
	ErrNotFinite = errors.New("value not representable as a finite float64")
)

// IsInteger reports whether s is an optional '-' followed by one or more
// ASCII decimal digits.
func IsInteger(s string) bool {
	if len(s) > 0 && s[0] == '-' {
		s = s[1:]
	}

	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}

// Factorial returns n!. Negative n yields nil.
func Factorial(n int64) *big.Int {
	if n < 0 {
		return nil
	}

	// MulRange returns 1 for an empty range, which covers 0! and 1!.
	return new(big.Int).MulRange(1, n)
}

// Fibonacci returns F(n) with F(0)=0 and F(1)=1. Negative n yields nil.
func Fibonacci(n int64) *big.Int {
	if n < 0 {
		return nil
	}

	a, b := big.NewInt(0), big.NewInt(1)
	for i := int64(0); i < n; i++ {
		a.Add(a, b)
		a, b = b, a
	}

	return a
}

// Mean returns the arithmetic mean of numeric literals in JSON number
// syntax. Values are added strictly left to right. Integer literals are
// summed exactly until the first non-integer literal appears; from then on
// the running total and every later value are float64.
func Mean(literals []string) (float64, error) {
	if len(literals) == 0 {
		return 0, ErrEmpty
	}

	exact := new(big.Int)
	var total float64
	inexact := false

	for _, lit := range literals {
		if !strings.ContainsAny(lit, ".eE") {
			v, ok := new(big.Int).SetString(lit, 10)
			if !ok {
				return 0, fmt.Errorf("invalid integer literal %q", lit)
			}

			if !inexact {
				exact.Add(exact, v)
				continue
			}

			f, err := intToFloat(v)
			if err != nil {
				return 0, err
			}
			total += f
			continue
		}

		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrNotFinite, lit)
		}

		if !inexact {
			if total, err = intToFloat(exact); err != nil {
				return 0, err
			}
			inexact = true
		}
		total += f
	}

	var mean float64
	if inexact {
		mean = total / float64(len(literals))
	} else {
		// Exact integer division, rounded once to the nearest float64.
		mean, _ = new(big.Rat).SetFrac(exact, big.NewInt(int64(len(literals)))).Float64()
	}

	if math.IsInf(mean, 0) || math.IsNaN(mean) {
		return 0, ErrNotFinite
	}

	return mean, nil
}

func intToFloat(v *big.Int) (float64, error) {
	f, _ := new(big.Float).SetInt(v).Float64()
	if math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s", ErrNotFinite, v)
	}

	return f, nil
}

// FormatMean renders a mean with exactly two decimal places.
func FormatMean(mean float64) string {
	return strconv.FormatFloat(mean, 'f', 2, 64)
}
