package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Wikid82/autosource/backend/internal/api/middleware"
	"github.com/Wikid82/autosource/backend/internal/services"
)

// respondError maps service errors to status codes. Storage failures are
// logged with their cause and answered with the generic message only.
func respondError(c *gin.Context, action string, err error) {
	switch {
	case services.IsValidation(err):
		var ve *services.ValidationError
		errors.As(err, &ve)
		body := gin.H{"error": ve.Error()}
		if ve.Field != "" {
			body["field"] = ve.Field
		}
		c.JSON(http.StatusBadRequest, body)
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case services.IsUnauthorized(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		middleware.GetRequestLogger(c).WithField("action", action).WithError(errors.Unwrap(err)).Error(err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// queryParams flattens the query string to its first values, which is the
// shape the query composer accepts.
func queryParams(c *gin.Context) map[string]string {
	values := c.Request.URL.Query()
	out := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
