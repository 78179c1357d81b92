package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

func initRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name: prefix + "_http_request_duration_seconds",
			Help: "HTTP request latency by path and method",
		}, []string{"path", "method"}),
		requestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "HTTP requests by path, method and status",
		}, []string{"path", "method", "status"}),
		errorTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_http_errors_total",
			Help: "HTTP error responses by path and status",
		}, []string{"path", "status"}),
	}
}

func (m *routerMetrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.requestDuration.WithLabelValues(path, c.Request.Method).
			Observe(time.Since(start).Seconds())
		m.requestTotal.WithLabelValues(path, c.Request.Method, status).Inc()
		if c.Writer.Status() >= 400 {
			m.errorTotal.WithLabelValues(path, status).Inc()
		}
	}
}
