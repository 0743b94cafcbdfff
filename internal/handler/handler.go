package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/angeloszaimis/mathapi/internal/calc"
	"github.com/angeloszaimis/mathapi/internal/metrics"
)

const (
	EndpointFactorial = "factorial"
	EndpointFibonacci = "fibonacci"
	EndpointMean      = "mean"
	EndpointNotFound  = "not_found"
)

const (
	msgInvalidInput = "Invalid input."
	msgNoData       = "No data provided."
	msgNotFound     = "404 Not Found"

	bodyChunkSize = 32 << 10
)

// Limits caps the work a single request may ask for. Zero disables a limit.
type Limits struct {
	MaxFactorial int64
	MaxFibonacci int64
	MaxBodyBytes int64
}

type MathHandler struct {
	logger           *slog.Logger
	limits           Limits
	metricsCollector *metrics.Collector
}

type response struct {
	status int
	body   string
}

func (h *MathHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.metricsCollector != nil {
		done := h.metricsCollector.Begin()
		defer done()
	}

	start := time.Now()

	endpoint, handle := h.route(r)
	resp := handle(r)
	writeResponse(w, resp)

	duration := time.Since(start)

	h.logger.Debug("Handled request",
		slog.String("from", extractClientIP(r)),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("endpoint", endpoint),
		slog.Int("status", resp.status),
		slog.Duration("duration", duration))

	h.emitEvent(metrics.MetricEvent{
		Type:       metrics.EventRequestCompleted,
		Timestamp:  time.Now(),
		Endpoint:   endpoint,
		Duration:   duration,
		StatusCode: resp.status,
	})
}

func (h *MathHandler) route(r *http.Request) (string, func(*http.Request) response) {
	if r.Method != http.MethodGet {
		return EndpointNotFound, notFound
	}

	path := r.URL.Path
	switch {
	case path == "/factorial":
		return EndpointFactorial, h.handleFactorial
	case strings.HasPrefix(path, "/fibonacci/"):
		return EndpointFibonacci, h.handleFibonacci
	case path == "/mean":
		return EndpointMean, h.handleMean
	default:
		return EndpointNotFound, notFound
	}
}

func (h *MathHandler) handleFactorial(r *http.Request) response {
	raw, ok := queryParam(r.URL.RawQuery, "n")
	if !ok {
		return h.reject(EndpointFactorial, fmt.Errorf("%w: missing n", ErrMalformed))
	}

	n, err := parseIndex(raw, h.limits.MaxFactorial)
	if err != nil {
		return h.reject(EndpointFactorial, err)
	}

	return result(calc.Factorial(n).String())
}

func (h *MathHandler) handleFibonacci(r *http.Request) response {
	raw, err := fibonacciIndex(r.URL.Path)
	if err != nil {
		return h.reject(EndpointFibonacci, err)
	}

	n, err := parseIndex(raw, h.limits.MaxFibonacci)
	if err != nil {
		return h.reject(EndpointFibonacci, err)
	}

	return result(calc.Fibonacci(n).String())
}

func (h *MathHandler) handleMean(r *http.Request) response {
	body, err := readBody(r.Body, h.limits.MaxBodyBytes, bodyChunkSize)
	if err != nil {
		return h.reject(EndpointMean, err)
	}

	values, err := parseDataset(body)
	if err != nil {
		return h.reject(EndpointMean, err)
	}

	mean, err := calc.Mean(values)
	if err != nil {
		return h.reject(EndpointMean, fmt.Errorf("%w: %v", ErrMalformed, err))
	}

	return result(calc.FormatMean(mean))
}

// reject maps a validation error onto its fixed status and body.
func (h *MathHandler) reject(endpoint string, err error) response {
	h.logger.Debug("Rejected input",
		slog.String("endpoint", endpoint),
		slog.String("error", err.Error()))

	switch {
	case errors.Is(err, ErrEmptyDataset):
		return response{status: http.StatusBadRequest, body: msgNoData}
	case errors.Is(err, ErrOutOfRange):
		return response{status: http.StatusBadRequest, body: msgInvalidInput}
	default:
		return response{status: http.StatusUnprocessableEntity, body: msgInvalidInput}
	}
}

func notFound(*http.Request) response {
	return response{status: http.StatusNotFound, body: msgNotFound}
}

func result(value string) response {
	return response{status: http.StatusOK, body: `{"result": ` + value + `}`}
}

// writeResponse emits the status line with a single text/plain content type,
// then the body.
func writeResponse(w http.ResponseWriter, resp response) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(resp.status)
	w.Write([]byte(resp.body))
}

func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}

	host, _, _ := net.SplitHostPort(r.RemoteAddr)
	return host
}

func (h *MathHandler) emitEvent(event metrics.MetricEvent) {
	if h.metricsCollector == nil {
		return
	}

	select {
	case h.metricsCollector.EventChannel() <- event:
	default:
	}
}

func NewMathHandler(logger *slog.Logger, limits Limits, collector *metrics.Collector) *MathHandler {
	return &MathHandler{
		logger:           logger,
		limits:           limits,
		metricsCollector: collector,
	}
}
