package middleware

import (
	"strconv"
	"time"

	appmetrics "estatelist/backend/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics is a Gin middleware collecting Prometheus metrics for HTTP
// requests.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		method := c.Request.Method

		// FullPath keeps label cardinality down; fall back to the raw path
		// for unmatched routes.
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		latency := time.Since(start)

		appmetrics.HTTPRequestCounter.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		appmetrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(latency.Seconds())
	}
}
