// Package metrics collects per-endpoint request metrics for the math API.
//
// Handlers emit a MetricEvent for every finished request through a buffered
// channel using a non-blocking send, so a slow or saturated collector never
// delays a response. A single goroutine consumes the channel and updates:
//   - request counts per endpoint
//   - HTTP status code distribution per endpoint
//   - response times with percentile calculations (P50, P95, P99)
//   - Prometheus counters and histograms
//
// Example usage:
//
//	collector := metrics.NewCollector(1000, logger)
//	go collector.Run(ctx)
//
//	done := collector.Begin()
//	defer done()
//	collector.EventChannel() <- metrics.MetricEvent{
//		Type:       metrics.EventRequestCompleted,
//		Endpoint:   "factorial",
//		Duration:   150 * time.Microsecond,
//		StatusCode: 200,
//	}
//
//	snapshot := collector.Snapshot()
//
// StatsHandler exposes the snapshot as JSON and PrometheusHandler exposes the
// registry for scraping. Pending events are drained when the context passed to
// Run is cancelled.
package metrics
