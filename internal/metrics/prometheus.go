package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus mirrors of the in-process counters, plus pipeline collectors
// that have no JSON counterpart.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "claims_summary_cache_hits_total",
		Help: "Summary reads served from the cache",
	})

	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "claims_summary_cache_misses_total",
		Help: "Summary reads that recomputed the aggregate",
	})

	endpointLatency = Histogram(
		"claims_endpoint_request_duration_seconds",
		"Latency of timed API endpoints",
		[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		"endpoint",
	)

	// EnrichmentTotal counts finished enrichment tasks by outcome.
	EnrichmentTotal = Counter(
		"claims_enrichment_total",
		"Enrichment tasks by outcome",
		"outcome",
	)

	// WorkerQueueDepth is the number of submitted tasks not yet picked up.
	WorkerQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "claims_worker_queue_depth",
		Help: "Background tasks waiting for a worker",
	})

	// WorkerPanics counts background tasks that panicked.
	WorkerPanics = promauto.NewCounter(prometheus.CounterOpts{
		Name: "claims_worker_panics_total",
		Help: "Background tasks recovered from a panic",
	})
)

func Counter(name, help string, labelKeys ...string) *prometheus.CounterVec {
	return promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: help,
		},
		labelKeys,
	)
}

func Histogram(name, help string, buckets []float64, labelKeys ...string) *prometheus.HistogramVec {
	return promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: buckets,
		},
		labelKeys,
	)
}
