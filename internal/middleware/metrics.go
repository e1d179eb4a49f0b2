package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusplan/solver-api/internal/service"
)

// Metrics returns middleware that captures request metrics using the
// provided service. The metrics endpoint itself is excluded so scrapes
// do not feed back into the series they read.
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
		if path == "/metrics" {
			return
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
