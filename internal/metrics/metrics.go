// Package metrics exposes the Prometheus instruments of the shortener.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultCreated  = "created"
	ResultExisting = "existing"
	ResultFound    = "found"
	ResultNotFound = "not_found"
	ResultError    = "error"
	ResultHit      = "hit"
	ResultMiss     = "miss"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortener_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shortener_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	LinksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortener_links_total",
			Help: "Total number of shorten requests by outcome",
		},
		[]string{"result"}, // "created", "existing", "error"
	)

	RedirectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortener_redirects_total",
			Help: "Total number of redirect lookups by outcome",
		},
		[]string{"result"}, // "found", "not_found", "error"
	)

	LinkCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortener_link_cache_requests_total",
			Help: "Total number of link cache lookups by outcome",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)

	AnalyticsDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shortener_analytics_duration_seconds",
			Help:    "Duration of analytics report generation in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"scope"}, // "alias", "topic", "account"
	)
)

// RecordHTTPRequest records a served HTTP request.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordLink(created bool, err error) {
	switch {
	case err != nil:
		LinksTotal.WithLabelValues(ResultError).Inc()
	case created:
		LinksTotal.WithLabelValues(ResultCreated).Inc()
	default:
		LinksTotal.WithLabelValues(ResultExisting).Inc()
	}
}

func RecordRedirect(result string) {
	RedirectsTotal.WithLabelValues(result).Inc()
}

func RecordLinkCache(result string) {
	LinkCacheTotal.WithLabelValues(result).Inc()
}

func RecordAnalytics(scope string, duration time.Duration) {
	AnalyticsDuration.WithLabelValues(scope).Observe(duration.Seconds())
}
