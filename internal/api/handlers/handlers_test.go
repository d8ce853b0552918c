package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Wikid82/autosource/backend/internal/api/middleware"
	"github.com/Wikid82/autosource/backend/internal/catalog"
	"github.com/Wikid82/autosource/backend/internal/config"
	"github.com/Wikid82/autosource/backend/internal/models"
	"github.com/Wikid82/autosource/backend/internal/services"
)

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	token  string
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := OpenTestDB(t)

	limits := catalog.DefaultLimits()
	audit := services.NewAuditService(db, limits)
	listings := services.NewListingService(db, audit, limits)
	leads := services.NewLeadService(db, audit, limits)
	authService := services.NewAuthService(db, config.Config{JWTSecret: "handler-secret", TokenTTL: time.Hour}, audit)

	admin, err := authService.EnsureAdmin("admin@example.com", "password123", "Admin")
	require.NoError(t, err)
	token, err := authService.GenerateToken(admin)
	require.NoError(t, err)

	router := gin.New()
	api := router.Group("/api/v1")
	NewCatalogHandler(listings).RegisterRoutes(api)
	leadHandler := NewLeadHandler(leads)
	leadHandler.RegisterPublicRoutes(api)

	authHandler := NewAuthHandler(authService, false)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(authService))
	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/auth/me", authHandler.Me)

	adminGroup := protected.Group("/admin")
	adminGroup.Use(middleware.RequireRole(models.RoleAdmin))
	NewListingHandler(listings).RegisterRoutes(adminGroup)
	leadHandler.RegisterAdminRoutes(adminGroup)
	adminGroup.GET("/audit", NewAuditHandler(audit).List)

	return &testServer{router: router, db: db, token: token}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func (s *testServer) seedListing(t *testing.T, l models.Listing) models.Listing {
	t.Helper()
	if l.Model == "" {
		l.Model = "A4"
	}
	if l.Year == 0 {
		l.Year = 2021
	}
	require.NoError(t, s.db.Create(&l).Error)
	return l
}
