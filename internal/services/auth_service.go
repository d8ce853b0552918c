package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Wikid82/autosource/backend/internal/config"
	"github.com/Wikid82/autosource/backend/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrMissingSecret      = errors.New("jwt secret is not configured")
)

// Claims identify the admin behind a session token. Email doubles as the
// actor recorded in the audit trail.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	db     *gorm.DB
	config config.Config
	audit  *AuditService
}

func NewAuthService(db *gorm.DB, cfg config.Config, audit *AuditService) *AuthService {
	return &AuthService{db: db, config: cfg, audit: audit}
}

// EnsureAdmin creates the admin account if no user with that email exists.
func (s *AuthService) EnsureAdmin(email, password, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var user models.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{
		UUID:    uuid.New().String(),
		Email:   email,
		Name:    name,
		Role:    models.RoleAdmin,
		Enabled: true,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Login checks credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		return "", ErrInvalidCredentials
	}
	if !user.Enabled || !user.CheckPassword(password) {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login", now).Error; err != nil {
		return "", operationFailed("login", err)
	}

	token, err := s.GenerateToken(&user)
	if err != nil {
		return "", err
	}
	if s.audit != nil {
		if err := s.audit.Log(ctx, user.Email, models.AuditLogin, user.UUID, map[string]interface{}{"role": user.Role}); err != nil {
			return "", err
		}
	}
	return token, nil
}

// Logout records the end of a session. Tokens are stateless so nothing is revoked.
func (s *AuthService) Logout(ctx context.Context, actor, userID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if s.audit == nil {
		return nil
	}
	return s.audit.Log(ctx, actor, models.AuditLogout, userID, nil)
}

func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	if s.config.JWTSecret == "" {
		return "", ErrMissingSecret
	}
	now := time.Now()
	claims := Claims{
		UserID: user.UUID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UUID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL())),
			Issuer:    "autosource",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	if s.config.JWTSecret == "" {
		return nil, ErrInvalidToken
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) GetUserByUUID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("uuid = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newNotFound("user", id)
		}
		return nil, err
	}
	return &user, nil
}

// TokenTTL is exposed so the handler can match the cookie lifetime.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL()
}

func (s *AuthService) tokenTTL() time.Duration {
	if s.config.TokenTTL > 0 {
		return s.config.TokenTTL
	}
	return 24 * time.Hour
}
