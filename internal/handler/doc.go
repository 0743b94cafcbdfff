// Package handler implements the public HTTP surface of the math API.
//
// MathHandler dispatches on exact method and path, validates the raw input,
// calls a pure computation from package calc and writes a text/plain
// response whose body is either {"result": <value>} or a fixed error string.
// Malformed input maps to 422, well-formed but invalid input to 400 and any
// unknown route or method to 404.
package handler
