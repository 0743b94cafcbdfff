package metrics_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/mathapi/internal/metrics"
)

var _ = Describe("Metrics", func() {
	var m *metrics.Metrics

	BeforeEach(func() {
		m = metrics.NewMetrics()
	})

	Describe("RecordRequest", func() {
		It("should count requests per endpoint", func() {
			m.RecordRequest("factorial", time.Millisecond, 200)
			m.RecordRequest("factorial", time.Millisecond, 422)
			m.RecordRequest("mean", time.Millisecond, 200)

			snap := m.Snapshot()
			Expect(snap.TotalRequests).To(Equal(int64(3)))
			Expect(snap.Endpoints["factorial"].Requests).To(Equal(int64(2)))
			Expect(snap.Endpoints["mean"].Requests).To(Equal(int64(1)))
		})

		It("should track status codes", func() {
			m.RecordRequest("fibonacci", time.Millisecond, 200)
			m.RecordRequest("fibonacci", time.Millisecond, 400)
			m.RecordRequest("fibonacci", time.Millisecond, 400)

			codes := m.Snapshot().Endpoints["fibonacci"].StatusCodes
			Expect(codes[200]).To(Equal(int64(1)))
			Expect(codes[400]).To(Equal(int64(2)))
		})

		It("should average response times", func() {
			m.RecordRequest("mean", 100*time.Millisecond, 200)
			m.RecordRequest("mean", 200*time.Millisecond, 200)

			Expect(m.Snapshot().Endpoints["mean"].AvgResponse).To(Equal(150 * time.Millisecond))
		})

		It("should calculate percentiles correctly", func() {
			for i := 1; i <= 100; i++ {
				m.RecordRequest("factorial", time.Duration(i)*time.Millisecond, 200)
			}

			em := m.Snapshot().Endpoints["factorial"]
			Expect(em.P50Response).To(BeNumerically("~", 50*time.Millisecond, 1*time.Millisecond))
			Expect(em.P95Response).To(BeNumerically("~", 95*time.Millisecond, 1*time.Millisecond))
			Expect(em.P99Response).To(BeNumerically("~", 99*time.Millisecond, 1*time.Millisecond))
		})

		It("should limit stored response times to 1000", func() {
			for i := 1; i <= 1500; i++ {
				m.RecordRequest("factorial", time.Duration(i)*time.Millisecond, 200)
			}

			em := m.Snapshot().Endpoints["factorial"]
			Expect(em.Requests).To(Equal(int64(1500)))
			Expect(em.AvgResponse).To(BeNumerically(">", 500*time.Millisecond))
		})
	})

	Describe("Snapshot", func() {
		It("should include uptime", func() {
			time.Sleep(10 * time.Millisecond)
			Expect(m.Snapshot().Uptime).To(BeNumerically(">", 0))
		})

		It("should handle empty metrics", func() {
			snap := m.Snapshot()
			Expect(snap.TotalRequests).To(Equal(int64(0)))
			Expect(snap.Endpoints).To(BeEmpty())
		})

		It("should return independent snapshots", func() {
			m.RecordRequest("mean", time.Millisecond, 200)
			snap1 := m.Snapshot()

			m.RecordRequest("mean", time.Millisecond, 200)
			snap2 := m.Snapshot()

			Expect(snap1.TotalRequests).To(Equal(int64(1)))
			Expect(snap1.Endpoints["mean"].StatusCodes[200]).To(Equal(int64(1)))
			Expect(snap2.TotalRequests).To(Equal(int64(2)))
		})
	})
})
