package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Wikid82/autosource/backend/internal/metrics"
)

// Recovery turns a handler panic into a 500 that carries the request id, so
// an admin can quote it when reporting the failure. verbose adds the stack
// and sanitized request headers to the log entry.
func Recovery(verbose bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			metrics.IncPanic(route)

			fields := logrus.Fields{
				"method": c.Request.Method,
				"route":  route,
				"path":   SanitizePath(c.Request.URL.Path),
			}
			if actor := Actor(c); actor != "" {
				fields["actor"] = actor
			}
			entry := GetRequestLogger(c).WithFields(fields)
			if verbose {
				entry.WithField("headers", SanitizeHeaders(c.Request.Header)).
					Errorf("panic: %v\n%s", r, debug.Stack())
			} else {
				entry.Errorf("panic: %v", r)
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":      "internal server error",
				"request_id": c.GetString(RequestIDKey),
			})
		}()
		c.Next()
	}
}
