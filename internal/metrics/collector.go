package metrics

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	atom "go.uber.org/atomic"
)

type EventType string

const (
	EventRequestCompleted EventType = "request_completed"
)

type MetricEvent struct {
	Type       EventType
	Timestamp  time.Time
	Endpoint   string
	Duration   time.Duration
	StatusCode int
}

type Collector struct {
	eventCh  chan MetricEvent
	metrics  *Metrics
	logger   *slog.Logger
	inFlight atom.Int64

	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func NewCollector(bufferSize int, logger *slog.Logger) *Collector {
	c := &Collector{
		eventCh:  make(chan MetricEvent, bufferSize),
		metrics:  NewMetrics(),
		logger:   logger,
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mathapi_requests_total",
			Help: "The number of handled requests by endpoint and status code",
		}, []string{"endpoint", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mathapi_request_duration_seconds",
			Help:    "Time spent handling a request by endpoint",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}

	inFlight := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "mathapi_requests_in_flight",
		Help: "The number of requests currently being handled",
	}, func() float64 {
		return float64(c.inFlight.Load())
	})

	c.registry.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		inFlight,
		collectors.NewBuildInfoCollector(),
	)

	return c
}

func (c *Collector) EventChannel() chan<- MetricEvent {
	return c.eventCh
}

// Begin marks a request as in flight. The returned func must be called
// exactly once when the request finishes.
func (c *Collector) Begin() (done func()) {
	c.inFlight.Inc()
	return func() { c.inFlight.Dec() }
}

// Run consumes events until ctx is cancelled, then drains whatever is
// still buffered.
func (c *Collector) Run(ctx context.Context) {
	c.logger.Info("Metrics collector started")
	defer c.logger.Info("Metrics collector stopped")

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event MetricEvent) {
	switch event.Type {
	case EventRequestCompleted:
		c.metrics.RecordRequest(event.Endpoint, event.Duration, event.StatusCode)
		c.requestsTotal.WithLabelValues(event.Endpoint, strconv.Itoa(event.StatusCode)).Inc()
		c.requestDuration.WithLabelValues(event.Endpoint).Observe(event.Duration.Seconds())
	default:
		c.logger.Debug("Dropping unknown metric event", slog.String("type", string(event.Type)))
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func (c *Collector) Snapshot() Snapshot {
	snap := c.metrics.Snapshot()
	snap.InFlight = c.inFlight.Load()
	return snap
}
