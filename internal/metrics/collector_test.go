package metrics_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/mathapi/internal/metrics"
)

var _ = Describe("Collector", func() {
	var (
		collector *metrics.Collector
		log       *slog.Logger
		ctx       context.Context
		cancel    context.CancelFunc
	)

	completed := func(endpoint string, code int) metrics.MetricEvent {
		return metrics.MetricEvent{
			Type:       metrics.EventRequestCompleted,
			Timestamp:  time.Now(),
			Endpoint:   endpoint,
			Duration:   5 * time.Millisecond,
			StatusCode: code,
		}
	}

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
		ctx, cancel = context.WithCancel(context.Background())
		collector = metrics.NewCollector(100, log)
	})

	AfterEach(func() {
		cancel()
	})

	Describe("event processing", func() {
		It("should record completed requests", func() {
			go collector.Run(ctx)
			collector.EventChannel() <- completed("factorial", 200)

			Eventually(func() int64 {
				return collector.Snapshot().Endpoints["factorial"].Requests
			}).Should(Equal(int64(1)))
			Expect(collector.Snapshot().Endpoints["factorial"].StatusCodes[200]).To(Equal(int64(1)))
		})

		It("should drain events on context cancellation", func() {
			for i := 0; i < 5; i++ {
				collector.EventChannel() <- completed("mean", 400)
			}

			cancel()
			collector.Run(ctx)

			Expect(collector.Snapshot().Endpoints["mean"].Requests).To(Equal(int64(5)))
		})

		It("should ignore unknown event types", func() {
			collector.EventChannel() <- metrics.MetricEvent{Type: "bogus", Endpoint: "mean"}

			cancel()
			collector.Run(ctx)

			Expect(collector.Snapshot().TotalRequests).To(BeZero())
		})
	})

	Describe("Begin", func() {
		It("should track in-flight requests", func() {
			done1 := collector.Begin()
			done2 := collector.Begin()
			Expect(collector.Snapshot().InFlight).To(Equal(int64(2)))

			done1()
			done2()
			Expect(collector.Snapshot().InFlight).To(BeZero())
		})
	})

	Describe("StatsHandler", func() {
		It("should serve the snapshot as JSON", func() {
			collector.EventChannel() <- completed("fibonacci", 422)
			cancel()
			collector.Run(ctx)

			w := httptest.NewRecorder()
			collector.StatsHandler()(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(Equal("application/json"))

			var snap metrics.Snapshot
			Expect(json.Unmarshal(w.Body.Bytes(), &snap)).To(Succeed())
			Expect(snap.TotalRequests).To(Equal(int64(1)))
			Expect(snap.Endpoints["fibonacci"].StatusCodes[422]).To(Equal(int64(1)))
		})
	})

	Describe("PrometheusHandler", func() {
		It("should expose request counters", func() {
			collector.EventChannel() <- completed("factorial", 200)
			collector.EventChannel() <- completed("factorial", 200)
			cancel()
			collector.Run(ctx)

			w := httptest.NewRecorder()
			collector.PrometheusHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			Expect(w.Code).To(Equal(http.StatusOK))
			body := w.Body.String()
			Expect(body).To(ContainSubstring(`mathapi_requests_total{code="200",endpoint="factorial"} 2`))
			Expect(body).To(ContainSubstring("mathapi_request_duration_seconds_bucket"))
			Expect(body).To(ContainSubstring("mathapi_requests_in_flight 0"))
		})
	})
})
