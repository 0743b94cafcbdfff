package main

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/handlers"

	"github.com/angeloszaimis/mathapi/internal/healthcheck"
	"github.com/angeloszaimis/mathapi/internal/metrics"
)

// setupPublicRouter serves the math endpoints directly; the handler does its
// own dispatch so that unknown methods answer 404 rather than 405.
func setupPublicRouter(h http.Handler, log *slog.Logger) http.Handler {
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(slog.NewLogLogger(log.Handler(), slog.LevelError)),
	)(h)
}

func setupAdminRouter(collector *metrics.Collector, probe *healthcheck.Probe) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/metrics", collector.PrometheusHandler())
	mux.HandleFunc("/stats", collector.StatsHandler())
	mux.HandleFunc("/healthz", probe.Liveness)
	mux.HandleFunc("/readyz", probe.Readiness)

	return mux
}
