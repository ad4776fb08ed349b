// Package metrics provides Prometheus metrics for browsefs operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "browsefs_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "browsefs_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Backend page fetch metrics
	FetchPagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "browsefs_fetch_pages_total",
			Help: "Total number of listing page fetches",
		},
		[]string{"kind", "result"}, // result: "ok", "soft_error", "error"
	)

	FetchPageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "browsefs_fetch_page_duration_seconds",
			Help:    "Listing page fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	ContentFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "browsefs_content_fetch_duration_seconds",
			Help:    "File content preview fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	// Deep walk metrics
	WalksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "browsefs_walks_total",
			Help: "Total number of deep path walks",
		},
		[]string{"kind", "outcome"}, // outcome: "full" or "partial"
	)

	WalkDepthReached = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "browsefs_walk_depth_reached",
			Help:    "Tree depth reached by deep path walks",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"kind"},
	)

	// Listing cache metrics
	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "browsefs_cache_requests_total",
			Help: "Total number of listing cache lookups",
		},
		[]string{"result"}, // "hit" or "miss"
	)
)

// RegisterMetrics ensures all metrics are registered with Prometheus.
// This function is idempotent and safe to call multiple times.
func RegisterMetrics() {
	// All metrics are automatically registered via promauto.
	// This function exists for explicit initialization if needed.
}
