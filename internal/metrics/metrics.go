// Package metrics holds Prometheus instruments that are used across the
// API.  All collectors are registered with the global registry, so
// importing this package is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"})

	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ratelimit_denied_total",
			Help: "Requests rejected with 429 by the rate limiter.",
		})

	RateLimitTrackedKeys = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ratelimit_tracked_keys",
			Help: "Client keys currently held by the rate limiter.",
		})

	VisitInsertFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "visit_insert_failures_total",
			Help: "Visit records that could not be stored.",
		})

	DBErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_errors_total",
			Help: "Unexpected database errors by resource.",
		}, []string{"resource"})

	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uploads_total",
			Help: "Image upload attempts by result.",
		}, []string{"result"})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		RateLimitDeniedTotal,
		RateLimitTrackedKeys,
		VisitInsertFailuresTotal,
		DBErrorsTotal,
		UploadsTotal,
	)
}
