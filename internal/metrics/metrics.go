// Package metrics provides Prometheus instrumentation for FraudShield.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path pattern, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraudshield",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and path.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fraudshield",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// TransactionsScoredTotal counts scored transactions by risk level.
	TransactionsScoredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraudshield",
			Name:      "transactions_scored_total",
			Help:      "Total transactions scored by resulting risk level.",
		},
		[]string{"risk_level"},
	)

	// AlertsPublishedTotal counts high-risk alerts published to the bus.
	AlertsPublishedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fraudshield",
			Name:      "alerts_published_total",
			Help:      "Total high-risk alerts published.",
		},
	)

	// StatusUpdatesTotal counts review decisions by new status.
	StatusUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraudshield",
			Name:      "status_updates_total",
			Help:      "Total review status updates by new status.",
		},
		[]string{"status"},
	)

	// ExplanationCacheHits counts explanation cache lookups by outcome.
	ExplanationCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraudshield",
			Name:      "explanation_cache_lookups_total",
			Help:      "Explanation cache lookups by outcome (hit or miss).",
		},
		[]string{"outcome"},
	)

	// RateLimitedTotal counts requests rejected by the per-tenant rate limiter.
	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fraudshield",
			Name:      "rate_limited_total",
			Help:      "Total requests rejected by the rate limiter.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		TransactionsScoredTotal,
		AlertsPublishedTotal,
		StatusUpdatesTotal,
		ExplanationCacheHits,
		RateLimitedTotal,
	)
}

// Handler returns the Prometheus scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRequest records one completed HTTP request.
// path is the route pattern, not the raw URL, to keep cardinality bounded.
func ObserveRequest(method, path string, status int, seconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, statusBucket(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// statusBucket collapses status codes to their class (2xx, 4xx, ...).
func statusBucket(status int) string {
	return strconv.Itoa(status/100) + "xx"
}
