// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "release_dashboard"

// Cache lookup results
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

var (
	// UpstreamRequestsTotal counts GitHub API calls by operation and outcome
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "github",
			Name:      "requests_total",
			Help:      "Total number of GitHub API requests",
		},
		[]string{"operation", "outcome"},
	)

	// UpstreamRetriesTotal counts backoff retries of transient failures
	UpstreamRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "github",
			Name:      "retries_total",
			Help:      "Total number of retried GitHub API requests",
		},
		[]string{"operation"},
	)

	// RateLimitWaitSeconds observes time spent waiting for a rate limit reset
	RateLimitWaitSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "github",
			Name:      "rate_limit_wait_seconds",
			Help:      "Time spent waiting for the GitHub rate limit to reset",
			Buckets:   []float64{1, 5, 30, 60, 300, 900, 1800, 3600},
		},
	)

	// CacheLookupsTotal counts cache lookups per cache and result
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Total number of cache lookups",
		},
		[]string{"cache", "result"},
	)

	// DashboardGenerationDuration observes uncached dashboard assembly
	DashboardGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "generation_duration_seconds",
			Help:      "Dashboard generation duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)

	// ExportJobsTotal counts export jobs by terminal status
	ExportJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "jobs_total",
			Help:      "Total number of finished export jobs",
		},
		[]string{"status"},
	)

	// ExportJobsInFlight is the number of queued or running export jobs
	ExportJobsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "jobs_in_flight",
			Help:      "Number of export jobs queued or running",
		},
	)
)

// ObserveCache records one cache lookup
func ObserveCache(cache string, hit bool) {
	result := CacheMiss
	if hit {
		result = CacheHit
	}
	CacheLookupsTotal.WithLabelValues(cache, result).Inc()
}
