package metrics

import (
	"sync"
	"testing"
)

func TestRecordRequestTimeAverages(t *testing.T) {
	r := NewRecorder()
	for _, d := range []int64{100, 200, 300} {
		r.RecordRequestTime("POST /api/claims", d)
	}

	m := r.Metrics()
	if got := m.EndpointAverages["POST /api/claims"]; got != 200.0 {
		t.Errorf("endpoint average = %v, want 200", got)
	}
	if m.TotalRequests != 3 {
		t.Errorf("TotalRequests = %d, want 3", m.TotalRequests)
	}
	if m.AverageResponseTime != 200.0 {
		t.Errorf("AverageResponseTime = %v, want 200", m.AverageResponseTime)
	}
}

func TestOverallAverageIsUnweighted(t *testing.T) {
	r := NewRecorder()
	for _, d := range []int64{100, 200, 300} {
		r.RecordRequestTime("POST /api/claims", d)
	}
	r.RecordRequestTime("GET /api/claims/summary", 10)

	m := r.Metrics()
	// (200 + 10) / 2, not (600 + 10) / 4.
	if m.AverageResponseTime != 105.0 {
		t.Errorf("AverageResponseTime = %v, want 105", m.AverageResponseTime)
	}
	if m.TotalRequests != 4 {
		t.Errorf("TotalRequests = %d, want 4", m.TotalRequests)
	}
}

func TestMetricsEmpty(t *testing.T) {
	m := NewRecorder().Metrics()
	if m.AverageResponseTime != 0 || m.TotalRequests != 0 || len(m.EndpointAverages) != 0 {
		t.Errorf("unexpected metrics on empty recorder: %+v", m)
	}
}

func TestCacheCountersAndReset(t *testing.T) {
	r := NewRecorder()
	for i := 0; i < 5; i++ {
		r.RecordCacheHit()
	}
	for i := 0; i < 3; i++ {
		r.RecordCacheMiss()
	}
	r.RecordRequestTime("GET /api/claims/summary", 40)

	hits, misses := r.CacheCounts()
	if hits != 5 || misses != 3 {
		t.Fatalf("CacheCounts() = (%d, %d), want (5, 3)", hits, misses)
	}

	r.Reset()
	hits, misses = r.CacheCounts()
	if hits != 0 || misses != 0 {
		t.Errorf("after Reset CacheCounts() = (%d, %d), want (0, 0)", hits, misses)
	}
	if r.Metrics().TotalRequests != 1 {
		t.Error("Reset must not clear endpoint timings")
	}
}

func TestRecorderConcurrentUpdates(t *testing.T) {
	r := NewRecorder()
	endpoints := []string{"POST /api/claims", "GET /api/claims/summary"}

	const perWorker = 500
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			ep := endpoints[w%len(endpoints)]
			for i := 0; i < perWorker; i++ {
				r.RecordRequestTime(ep, 10)
				r.RecordCacheHit()
				r.RecordCacheMiss()
			}
		}(w)
	}
	wg.Wait()

	m := r.Metrics()
	if m.TotalRequests != 8*perWorker {
		t.Errorf("TotalRequests = %d, want %d", m.TotalRequests, 8*perWorker)
	}
	for _, ep := range endpoints {
		if m.EndpointAverages[ep] != 10 {
			t.Errorf("%s average = %v, want 10", ep, m.EndpointAverages[ep])
		}
	}
	hits, misses := r.CacheCounts()
	if hits != 8*perWorker || misses != 8*perWorker {
		t.Errorf("CacheCounts() = (%d, %d), want (%d, %d)", hits, misses, 8*perWorker, 8*perWorker)
	}
}
