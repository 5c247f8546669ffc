package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/examdesk/examdesk-api/internal/service"
)

// Metrics captures request counts and latency per route.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTP(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
