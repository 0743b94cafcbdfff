// Package calc holds the pure computations behind the HTTP endpoints:
// arbitrary-precision factorial and Fibonacci numbers, the arithmetic mean
// of a dataset, and the integer-token check used to validate raw input.
package calc
