package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/angeloszaimis/mathapi/internal/calc"
)

var (
	// ErrMalformed marks input that is missing or cannot be parsed.
	ErrMalformed = errors.New("malformed input")
	// ErrOutOfRange marks well-formed input whose value is not acceptable.
	ErrOutOfRange = errors.New("input out of range")
	// ErrEmptyDataset marks a well-formed but empty list of numbers.
	ErrEmptyDataset = errors.New("empty dataset")
)

var integerToken = validation.NewStringRule(calc.IsInteger, "must be an integer")

// parseIndex validates a raw integer token and bounds it by limit (0 means
// unbounded).
func parseIndex(raw string, limit int64) (int64, error) {
	if err := validation.Validate(raw, validation.Required, integerToken); err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrMalformed, raw, err)
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// The token is a valid integer that does not fit in int64.
		return 0, fmt.Errorf("%w: %q does not fit in 64 bits", ErrOutOfRange, raw)
	}

	rules := []validation.Rule{validation.Min(int64(0))}
	if limit > 0 {
		rules = append(rules, validation.Max(limit))
	}
	if err := validation.Validate(n, rules...); err != nil {
		return 0, fmt.Errorf("%w: %d: %v", ErrOutOfRange, n, err)
	}

	return n, nil
}

// queryParam returns the last value of key in a raw query string. Pairs that
// fail to decode are skipped rather than failing the whole query.
func queryParam(rawQuery, key string) (string, bool) {
	values, _ := url.ParseQuery(rawQuery)
	vs, ok := values[key]
	if !ok || len(vs) == 0 {
		return "", false
	}

	return vs[len(vs)-1], true
}

// fibonacciIndex extracts <value> from /fibonacci/<value>. Leading and
// trailing slashes are ignored; any other extra segment is malformed.
func fibonacciIndex(path string) (string, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: path %q", ErrMalformed, path)
	}

	return parts[1], nil
}

// readBody assembles the request body by concatenating chunks in arrival
// order until end of stream. A positive limit caps the total size.
func readBody(body io.Reader, limit int64, chunkSize int) ([]byte, error) {
	if body == nil {
		return nil, nil
	}

	if limit > 0 {
		body = io.LimitReader(body, limit+1)
	}

	var buf bytes.Buffer
	chunk := make([]byte, chunkSize)
	for {
		n, err := body.Read(chunk)
		buf.Write(chunk[:n])

		if limit > 0 && int64(buf.Len()) > limit {
			return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrMalformed, limit)
		}

		if errors.Is(err, io.EOF) {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading body: %v", ErrMalformed, err)
		}
	}
}

// parseDataset decodes a JSON array whose elements are all JSON numbers and
// returns their literals in order.
func parseDataset(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if raw == nil {
		// null decodes into a nil slice without error.
		return nil, fmt.Errorf("%w: not an array", ErrMalformed)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after array", ErrMalformed)
	}

	values := make([]string, 0, len(raw))
	for i, item := range raw {
		num, ok := item.(json.Number)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is not a number", ErrMalformed, i)
		}
		values = append(values, num.String())
	}

	if len(values) == 0 {
		return nil, ErrEmptyDataset
	}

	return values, nil
}
