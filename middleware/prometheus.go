package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "code"},
	)

	requestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "code"},
	)

	requestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
		[]string{"method", "path"},
	)

	responseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "response_size_bytes",
			Help:    "Size of HTTP responses in bytes",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		},
		[]string{"method", "path", "code"},
	)

	doctorSearches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doctor_searches_total",
			Help: "Doctor searches by kind (id, query, listing)",
		},
		[]string{"kind"},
	)

	doctorDeletions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doctor_deletions_total",
			Help: "Doctor deletions by result (ok, not_found, error)",
		},
		[]string{"result"},
	)

	doctorCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doctor_cache_requests_total",
			Help: "Doctor cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)

// RecordSearch counts one search of the given kind.
func RecordSearch(kind string) {
	doctorSearches.WithLabelValues(kind).Inc()
}

// RecordDeletion counts one delete attempt.
func RecordDeletion(result string) {
	doctorDeletions.WithLabelValues(result).Inc()
}

// RecordCacheResult counts one cache lookup.
func RecordCacheResult(result string) {
	doctorCacheRequests.WithLabelValues(result).Inc()
}

// shouldCollectMetrics skips infrastructure endpoints (health, readiness, metrics) and static assets.
func shouldCollectMetrics(path string) bool {
	infrastructurePaths := []string{
		"/health",
		"/ready",
		"/metrics",
		"/favicon.ico",
	}

	for _, skipPath := range infrastructurePaths {
		if strings.HasPrefix(path, skipPath) {
			return false
		}
	}

	return true
}

// PrometheusMiddleware records request metrics labelled by route template,
// so /doctor/:id does not explode label cardinality.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !shouldCollectMetrics(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		requestsInFlight.WithLabelValues(method, path).Inc()
		defer requestsInFlight.WithLabelValues(method, path).Dec()

		c.Next()

		statusCode := strconv.Itoa(c.Writer.Status())
		requestDuration.WithLabelValues(method, path, statusCode).Observe(time.Since(start).Seconds())
		requestTotal.WithLabelValues(method, path, statusCode).Inc()
		responseSize.WithLabelValues(method, path, statusCode).Observe(float64(c.Writer.Size()))
	}
}
