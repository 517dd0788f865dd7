package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maitred_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "maitred_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	assignmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maitred_assignments_total",
			Help: "Auto-assignment outcomes by mode (preview/commit) and result",
		},
		[]string{"mode", "result"},
	)
)

// Metrics records request counts and latencies per templated route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordAssignment counts one assignment engine outcome.
func RecordAssignment(mode string, assigned bool) {
	result := "unassigned"
	if assigned {
		result = "assigned"
	}
	assignmentsTotal.WithLabelValues(mode, result).Inc()
}
