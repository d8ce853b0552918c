package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/Wikid82/autosource/backend/internal/api/handlers"
	"github.com/Wikid82/autosource/backend/internal/api/middleware"
	"github.com/Wikid82/autosource/backend/internal/config"
	"github.com/Wikid82/autosource/backend/internal/database"
	"github.com/Wikid82/autosource/backend/internal/logger"
	"github.com/Wikid82/autosource/backend/internal/metrics"
	"github.com/Wikid82/autosource/backend/internal/models"
	"github.com/Wikid82/autosource/backend/internal/services"
)

// Register wires up API routes and performs automatic migrations. The
// returned stop func halts background jobs started here.
func Register(router *gin.Engine, db *gorm.DB, cfg config.Config) (func(), error) {
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(registry)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	router.GET("/api/v1/health", handlers.HealthHandler(db))

	limits := cfg.Limits()
	auditService := services.NewAuditService(db, limits)
	listingService := services.NewListingService(db, auditService, limits)
	leadService := services.NewLeadService(db, auditService, limits)
	if n := services.NewShoutrrrNotifier(cfg.NotifyURL); n != nil {
		leadService.SetNotifier(n)
		logger.Log().Info("New lead notifications enabled")
	}

	authService := services.NewAuthService(db, cfg, auditService)
	authHandler := handlers.NewAuthHandler(authService, cfg.IsProduction())
	authMiddleware := middleware.AuthMiddleware(authService)

	api := router.Group("/api/v1")

	// Public catalog and lead capture
	handlers.NewCatalogHandler(listingService).RegisterRoutes(api)
	leadHandler := handlers.NewLeadHandler(leadService)
	leadHandler.RegisterPublicRoutes(api)

	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("/")
	protected.Use(authMiddleware)
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/auth/me", authHandler.Me)

		admin := protected.Group("/admin")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		handlers.NewListingHandler(listingService).RegisterRoutes(admin)
		leadHandler.RegisterAdminRoutes(admin)
		admin.GET("/audit", handlers.NewAuditHandler(auditService).List)
	}

	stop := func() {}
	if cfg.MetricsSchedule != "" {
		gauge := services.NewPipelineGauge(leadService)
		if err := gauge.Start(cfg.MetricsSchedule); err != nil {
			return nil, fmt.Errorf("start pipeline gauge: %w", err)
		}
		stop = gauge.Stop
	}

	return stop, nil
}
