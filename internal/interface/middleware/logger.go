package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-accounts/pkg/metrics"
)

// RequestLogger logs one line per request and records request metrics.
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := normalizePath(c)
		status := c.Writer.Status()
		elapsed := time.Since(start)
		metrics.RecordHTTPRequest(c.Request.Method, route, status, elapsed)

		if logger == nil {
			return
		}
		entry := logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       route,
			"status":     status,
			"latency_ms": elapsed.Milliseconds(),
			"ip":         ipFromCtx(c),
			"request_id": c.GetString("request_id"),
		})
		switch {
		case status >= 500:
			entry.Error("http request")
		case status >= 400:
			entry.Warn("http request")
		default:
			entry.Info("http request")
		}
	}
}
