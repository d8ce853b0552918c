package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one line per request with the request_id. Probe and
// scrape traffic is logged at debug level.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := GetRequestLogger(c).WithFields(logrus.Fields{
			"status":  c.Writer.Status(),
			"method":  c.Request.Method,
			"path":    SanitizePath(c.Request.URL.Path),
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		})
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}

		switch {
		case isProbe(c.Request.URL.Path):
			entry.Debug("handled request")
		case c.Writer.Status() >= 500:
			entry.Error("handled request")
		default:
			entry.Info("handled request")
		}
	}
}

func isProbe(path string) bool {
	return path == "/metrics" || strings.HasSuffix(path, "/health")
}
