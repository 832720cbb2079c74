package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type httpMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newHTTPMetrics(registerer prometheus.Registerer) *httpMetrics {
	factory := promauto.With(registerer)
	return &httpMetrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gbp_rates",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "total quantity of http requests",
			}, []string{"code", "method", "path"}),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "gbp_rates",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "http requests duration",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.003, 0.005, 0.01, 0.05, 0.1, 1, 5},
			}, []string{"code", "method", "path"}),
	}
}

// Metrics records request counts and durations by route pattern
func Metrics(registerer prometheus.Registerer) gin.HandlerFunc {
	metrics := newHTTPMetrics(registerer)

	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		code := strconv.Itoa(c.Writer.Status())

		metrics.duration.WithLabelValues(code, c.Request.Method, path).Observe(time.Since(started).Seconds())
		metrics.requests.WithLabelValues(code, c.Request.Method, path).Inc()
	}
}
