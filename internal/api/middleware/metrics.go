package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Yvesthior/moncareme-agd/pkg/metrics"
)

// Metrics 请求计数与耗时中间件
// endpoint 取路由模板（如 /api/v1/entries/:id），未匹配路由归为 unmatched
func Metrics(rec metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		rec.IncRequestsTotal(endpoint, c.Request.Method, c.Writer.Status())
		rec.ObserveRequestDuration(endpoint, time.Since(start))
	}
}
