package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Wikid82/autosource/backend/internal/catalog"
)

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment      string
	HTTPPort         string
	DatabasePath     string
	LogDir           string
	Debug            bool
	JWTSecret        string
	TokenTTL         time.Duration
	PublicPageSize   int
	AdminPageSize    int
	AdminMaxPageSize int
	NotifyURL        string
	MetricsSchedule  string
	// ImageHosts are the CDN origins listing photos are served from.
	ImageHosts []string
}

// Load reads env vars and falls back to defaults so the server can boot with zero configuration.
func Load() (Config, error) {
	cfg := Config{
		Environment:      getEnv("AUTOSRC_ENV", "development"),
		HTTPPort:         getEnv("AUTOSRC_HTTP_PORT", "8080"),
		DatabasePath:     getEnv("AUTOSRC_DB_PATH", filepath.Join("data", "autosource.db")),
		LogDir:           getEnv("AUTOSRC_LOG_DIR", filepath.Join("data", "logs")),
		Debug:            getEnvBool("AUTOSRC_DEBUG", false),
		JWTSecret:        getEnv("AUTOSRC_JWT_SECRET", ""),
		TokenTTL:         getEnvDuration("AUTOSRC_TOKEN_TTL", 24*time.Hour),
		PublicPageSize:   getEnvInt("AUTOSRC_PUBLIC_PAGE_SIZE", 12),
		AdminPageSize:    getEnvInt("AUTOSRC_ADMIN_PAGE_SIZE", 20),
		AdminMaxPageSize: getEnvInt("AUTOSRC_ADMIN_MAX_PAGE_SIZE", 100),
		NotifyURL:        getEnv("AUTOSRC_NOTIFY_URL", ""),
		MetricsSchedule:  getEnv("AUTOSRC_METRICS_SCHEDULE", "@every 1m"),
		ImageHosts:       getEnvList("AUTOSRC_IMAGE_HOSTS"),
	}

	if cfg.PublicPageSize <= 0 || cfg.AdminPageSize <= 0 || cfg.AdminMaxPageSize <= 0 {
		return Config{}, fmt.Errorf("page sizes must be positive")
	}
	if cfg.AdminPageSize > cfg.AdminMaxPageSize {
		return Config{}, fmt.Errorf("admin page size %d exceeds maximum %d", cfg.AdminPageSize, cfg.AdminMaxPageSize)
	}

	if err := cfg.resolveJWTSecret(); err != nil {
		return Config{}, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure data directory: %w", err)
	}

	return cfg, nil
}

// MinJWTSecretLength is the shortest signing secret accepted in production.
const MinJWTSecretLength = 32

// Placeholders copied from sample env files. Never valid in production.
var weakJWTSecrets = map[string]bool{
	"change-me-in-production": true,
	"changeme":                true,
	"secret":                  true,
}

// resolveJWTSecret requires an explicit strong secret in production. Other
// environments get a random secret per process, so sessions end on restart.
func (c *Config) resolveJWTSecret() error {
	if c.IsProduction() {
		if c.JWTSecret == "" {
			return fmt.Errorf("AUTOSRC_JWT_SECRET must be set in production")
		}
		if weakJWTSecrets[strings.ToLower(c.JWTSecret)] || len(c.JWTSecret) < MinJWTSecretLength {
			return fmt.Errorf("AUTOSRC_JWT_SECRET must be at least %d characters and not a placeholder", MinJWTSecretLength)
		}
		return nil
	}
	if c.JWTSecret == "" {
		secret, err := generateSecret(MinJWTSecretLength)
		if err != nil {
			return fmt.Errorf("generate jwt secret: %w", err)
		}
		c.JWTSecret = secret
	}
	return nil
}

func generateSecret(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// IsProduction reports whether cookies should be marked Secure.
func (c Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// Limits returns the page size limits for the query engine. Zero values
// fall back to the engine defaults.
func (c Config) Limits() catalog.Limits {
	l := catalog.DefaultLimits()
	if c.PublicPageSize > 0 {
		l.PublicPageSize = c.PublicPageSize
	}
	if c.AdminPageSize > 0 {
		l.AdminDefaultPageSize = c.AdminPageSize
	}
	if c.AdminMaxPageSize > 0 {
		l.AdminMaxPageSize = c.AdminMaxPageSize
	}
	return l
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}
