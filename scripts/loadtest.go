// Loadtest is a concurrent HTTP load generator for the math API. It cycles
// through factorial, fibonacci and mean requests and reports throughput,
// status codes and latency percentiles per endpoint.
//
// Usage:
//
//	go run ./scripts -addr http://localhost:8080 -concurrency 10 -requests 1000
//	go run ./scripts -addr http://localhost:8080 -max-n 500 -out summary.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type job struct {
	endpoint string
	url      string
	body     string
}

type endpointStats struct {
	mu          sync.Mutex
	statusCodes map[int]int
	latencies   []time.Duration
}

type endpointSummary struct {
	Total       int         `json:"total"`
	StatusCodes map[int]int `json:"status_codes"`
	P50         float64     `json:"p50_ms"`
	P90         float64     `json:"p90_ms"`
	P99         float64     `json:"p99_ms"`
}

func main() {
	var (
		addr        = flag.String("addr", "http://localhost:8080", "Base URL of the math API")
		concurrency = flag.Int("concurrency", 10, "Number of concurrent workers")
		requests    = flag.Int("requests", 300, "Total number of requests to send")
		maxN        = flag.Int("max-n", 200, "Largest n sent to factorial and fibonacci")
		timeoutSec  = flag.Int("timeout", 10, "Per-request timeout in seconds")
		outJSON     = flag.String("out", "", "Write JSON summary to this file (optional)")
	)
	flag.Parse()

	client := &http.Client{Timeout: time.Duration(*timeoutSec) * time.Second}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	jobs := make(chan job)
	stats := map[string]*endpointStats{
		"factorial": {statusCodes: map[int]int{}},
		"fibonacci": {statusCodes: map[int]int{}},
		"mean":      {statusCodes: map[int]int{}},
	}

	var failures int32
	var wg sync.WaitGroup

	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				req, err := http.NewRequest(http.MethodGet, j.url, strings.NewReader(j.body))
				if err != nil {
					atomic.AddInt32(&failures, 1)
					continue
				}

				start := time.Now()
				resp, err := client.Do(req)
				dur := time.Since(start)
				if err != nil {
					atomic.AddInt32(&failures, 1)
					continue
				}
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()

				s := stats[j.endpoint]
				s.mu.Lock()
				s.statusCodes[resp.StatusCode]++
				s.latencies = append(s.latencies, dur)
				s.mu.Unlock()
			}
		}()
	}

	testStart := time.Now()
	for i := 0; i < *requests; i++ {
		jobs <- nextJob(rng, *addr, i, *maxN)
	}
	close(jobs)
	wg.Wait()
	elapsed := time.Since(testStart)

	fmt.Println("--- Load Test Summary ---")
	fmt.Printf("Target: %s  Requests: %d  Concurrency: %d\n", *addr, *requests, *concurrency)
	fmt.Printf("Duration: %v  Throughput: %.2f req/s  Transport failures: %d\n",
		elapsed, float64(*requests)/elapsed.Seconds(), failures)

	report := map[string]endpointSummary{}
	for _, name := range []string{"factorial", "fibonacci", "mean"} {
		sum := summarize(stats[name])
		report[name] = sum

		fmt.Printf("\n%s: total=%d p50=%.2fms p90=%.2fms p99=%.2fms\n", name, sum.Total, sum.P50, sum.P90, sum.P99)
		codes := make([]int, 0, len(sum.StatusCodes))
		for code := range sum.StatusCodes {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		for _, code := range codes {
			fmt.Printf("  %d -> %d\n", code, sum.StatusCodes[code])
		}
	}

	if *outJSON != "" {
		f, err := os.Create(*outJSON)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create json file: %v\n", err)
			os.Exit(1)
		}
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		enc.Encode(report)
		f.Close()
		fmt.Printf("\nWrote JSON summary to %s\n", *outJSON)
	}

	if failures > 0 {
		os.Exit(2)
	}
}

// nextJob rotates through the endpoints, mixing in invalid input so the
// error paths are exercised as well.
func nextJob(rng *rand.Rand, addr string, i, maxN int) job {
	n := rng.Intn(maxN + 1)
	invalid := i%10 == 9

	switch i % 3 {
	case 0:
		if invalid {
			return job{endpoint: "factorial", url: addr + "/factorial?n=-1"}
		}
		return job{endpoint: "factorial", url: fmt.Sprintf("%s/factorial?n=%d", addr, n)}
	case 1:
		if invalid {
			return job{endpoint: "fibonacci", url: addr + "/fibonacci/abc"}
		}
		return job{endpoint: "fibonacci", url: fmt.Sprintf("%s/fibonacci/%d", addr, n)}
	default:
		if invalid {
			return job{endpoint: "mean", url: addr + "/mean", body: "[]"}
		}
		values := make([]string, n%50+1)
		for k := range values {
			values[k] = fmt.Sprintf("%.3f", rng.Float64()*100)
		}
		return job{endpoint: "mean", url: addr + "/mean", body: "[" + strings.Join(values, ",") + "]"}
	}
}

func summarize(s *endpointStats) endpointSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := endpointSummary{Total: len(s.latencies), StatusCodes: s.statusCodes}
	if len(s.latencies) == 0 {
		return sum
	}

	sorted := make([]time.Duration, len(s.latencies))
	copy(sorted, s.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	pick := func(p float64) float64 {
		return float64(sorted[int(float64(len(sorted)-1)*p)].Microseconds()) / 1000.0
	}
	sum.P50 = pick(0.50)
	sum.P90 = pick(0.90)
	sum.P99 = pick(0.99)

	return sum
}
