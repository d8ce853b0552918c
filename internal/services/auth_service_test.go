package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wikid82/autosource/backend/internal/config"
	"github.com/Wikid82/autosource/backend/internal/models"
)

func newAuthService(t *testing.T) (*AuthService, *fixture) {
	f := newFixture(t)
	cfg := config.Config{JWTSecret: "test-secret", TokenTTL: time.Hour}
	return NewAuthService(f.db, cfg, f.audit), f
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	svc, _ := newAuthService(t)

	admin, err := svc.EnsureAdmin("Admin@Example.com", "password123", "Admin")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", admin.Email)
	assert.True(t, admin.IsAdmin())
	assert.NotEqual(t, "password123", admin.PasswordHash)

	again, err := svc.EnsureAdmin("admin@example.com", "other", "Admin")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)
}

func TestAuthService_Login(t *testing.T) {
	svc, f := newAuthService(t)
	ctx := context.Background()
	_, err := svc.EnsureAdmin("admin@example.com", "password123", "Admin")
	require.NoError(t, err)

	token, err := svc.Login(ctx, "admin@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, int64(1), f.auditCount(t, models.AuditLogin))

	user, err := svc.GetUserByUUID(claims.UserID)
	require.NoError(t, err)
	assert.NotNil(t, user.LastLogin)

	token, err = svc.Login(ctx, "admin@example.com", "wrongpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, token)

	_, err = svc.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, int64(1), f.auditCount(t, models.AuditLogin))
}

func TestAuthService_DisabledUserCannotLogin(t *testing.T) {
	svc, f := newAuthService(t)
	admin, err := svc.EnsureAdmin("admin@example.com", "password123", "Admin")
	require.NoError(t, err)
	require.NoError(t, f.db.Model(admin).Update("enabled", false).Error)

	_, err = svc.Login(context.Background(), "admin@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_ValidateToken(t *testing.T) {
	svc, _ := newAuthService(t)
	user := &models.User{UUID: "u-1", Email: "a@example.com", Role: models.RoleAdmin}

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)
	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)

	other := NewAuthService(nil, config.Config{JWTSecret: "different"}, nil)
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_Logout(t *testing.T) {
	svc, f := newAuthService(t)
	ctx := context.Background()

	assert.True(t, IsUnauthorized(svc.Logout(ctx, "", "")))
	require.NoError(t, svc.Logout(ctx, "admin@example.com", "u-1"))
	assert.Equal(t, int64(1), f.auditCount(t, models.AuditLogout))
}

func TestAuthService_EmptySecretIssuesAndAcceptsNothing(t *testing.T) {
	admin := &models.User{UUID: "u-1", Email: "intruder@example.com", Role: models.RoleAdmin}

	unkeyed := NewAuthService(nil, config.Config{}, nil)
	_, err := unkeyed.GenerateToken(admin)
	assert.ErrorIs(t, err, ErrMissingSecret)

	forged, err := NewAuthService(nil, config.Config{JWTSecret: "change-me-in-production"}, nil).GenerateToken(admin)
	require.NoError(t, err)
	_, err = unkeyed.ValidateToken(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	svc, _ := newAuthService(t)
	_, err = svc.ValidateToken(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
