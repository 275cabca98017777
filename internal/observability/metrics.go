package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records database query latency. Fed from the GORM
	// logger so every query is observed without per-call instrumentation.
	DatabaseQueryLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pulse_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// CacheRequests counts cache lookups by outcome (hit, miss, error).
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_cache_requests_total",
		Help: "Total number of cache lookups by outcome",
	}, []string{"outcome"})
)

// ObserveQuery records the latency of a database query that started at start.
func ObserveQuery(start time.Time) {
	DatabaseQueryLatency.Observe(time.Since(start).Seconds())
}

// RecordCacheLookup increments the cache lookup counter for the outcome.
func RecordCacheLookup(outcome string) {
	CacheRequests.WithLabelValues(outcome).Inc()
}
