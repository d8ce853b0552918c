package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Wikid82/autosource/backend/internal/version"
)

type healthResponse struct {
	Status string `json:"status"`
	version.Info
}

// HealthHandler reports service metadata and whether the catalog store
// answers a ping.
func HealthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "ok", http.StatusOK
		if err := pingDB(c.Request.Context(), db); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}

		c.JSON(code, healthResponse{Status: status, Info: version.Get()})
	}
}

func pingDB(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
