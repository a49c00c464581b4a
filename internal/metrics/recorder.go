// Package metrics holds the process-wide performance counters: summary cache
// hits and misses, and per-endpoint request timings.
//
// A Recorder is constructed once at startup and injected into every component
// that reports to it. All methods are safe for concurrent use.
package metrics

import (
	"sync"
	"sync/atomic"

	"github.com/punchamoorthee/claimops/internal/domain"
)

type endpointStats struct {
	count   atomic.Int64
	totalMs atomic.Int64
}

// Recorder accumulates cache and request-time counters.
type Recorder struct {
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64

	// endpoint key -> *endpointStats
	endpoints sync.Map
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) RecordCacheHit() {
	r.cacheHits.Add(1)
	cacheHitsTotal.Inc()
}

func (r *Recorder) RecordCacheMiss() {
	r.cacheMisses.Add(1)
	cacheMissesTotal.Inc()
}

// CacheCounts returns the current hit and miss counts.
func (r *Recorder) CacheCounts() (hits, misses int64) {
	return r.cacheHits.Load(), r.cacheMisses.Load()
}

// RecordRequestTime adds one request of durationMs to the endpoint's totals.
func (r *Recorder) RecordRequestTime(endpoint string, durationMs int64) {
	v, ok := r.endpoints.Load(endpoint)
	if !ok {
		v, _ = r.endpoints.LoadOrStore(endpoint, &endpointStats{})
	}
	s := v.(*endpointStats)
	s.count.Add(1)
	s.totalMs.Add(durationMs)

	endpointLatency.WithLabelValues(endpoint).Observe(float64(durationMs) / 1000)
}

// Metrics computes per-endpoint averages. The overall average is the
// unweighted mean of those averages, not a request-weighted one.
func (r *Recorder) Metrics() domain.PerformanceMetrics {
	out := domain.PerformanceMetrics{EndpointAverages: make(map[string]float64)}

	var sumOfAverages float64
	r.endpoints.Range(func(k, v any) bool {
		s := v.(*endpointStats)
		count := s.count.Load()
		total := s.totalMs.Load()

		avg := 0.0
		if count > 0 {
			avg = float64(total) / float64(count)
		}
		out.EndpointAverages[k.(string)] = avg
		out.TotalRequests += count
		sumOfAverages += avg
		return true
	})

	if n := len(out.EndpointAverages); n > 0 {
		out.AverageResponseTime = sumOfAverages / float64(n)
	}
	return out
}

// Reset zeroes the cache counters. Endpoint timings are kept.
func (r *Recorder) Reset() {
	r.cacheHits.Store(0)
	r.cacheMisses.Store(0)
}
