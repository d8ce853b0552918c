package middleware

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityHeadersConfig holds configuration for the security headers middleware.
type SecurityHeadersConfig struct {
	// IsDevelopment skips HSTS and relaxes the CSP for local tooling
	IsDevelopment bool
	// ImageHosts are extra origins allowed in img-src, typically the listing CDN
	ImageHosts []string
	// CustomCSPDirectives overrides or adds CSP directives
	CustomCSPDirectives map[string]string
	// NoStorePrefixes are path prefixes whose responses must never be cached
	NoStorePrefixes []string
}

// DefaultSecurityHeadersConfig returns a secure default configuration.
func DefaultSecurityHeadersConfig() SecurityHeadersConfig {
	return SecurityHeadersConfig{
		NoStorePrefixes: []string{"/api/v1/admin", "/api/v1/auth"},
	}
}

// SecurityHeaders returns middleware that sets security-related HTTP headers.
func SecurityHeaders(cfg SecurityHeadersConfig) gin.HandlerFunc {
	csp := buildCSP(cfg)
	permissions := buildPermissionsPolicy()

	return func(c *gin.Context) {
		c.Header("Content-Security-Policy", csp)
		if !cfg.IsDevelopment {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		}
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", permissions)
		c.Header("Cross-Origin-Opener-Policy", "same-origin")
		c.Header("Cross-Origin-Resource-Policy", "same-origin")

		for _, prefix := range cfg.NoStorePrefixes {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				c.Header("Cache-Control", "no-store")
				break
			}
		}

		c.Next()
	}
}

// buildCSP constructs the Content-Security-Policy header value. Directives
// are emitted in a stable order.
func buildCSP(cfg SecurityHeadersConfig) string {
	imgSrc := "'self' data:"
	if len(cfg.ImageHosts) > 0 {
		imgSrc += " " + strings.Join(cfg.ImageHosts, " ")
	}

	directives := map[string]string{
		"default-src":     "'self'",
		"script-src":      "'self'",
		"style-src":       "'self' 'unsafe-inline'",
		"img-src":         imgSrc,
		"font-src":        "'self' data:",
		"connect-src":     "'self'",
		"frame-src":       "'none'",
		"frame-ancestors": "'none'",
		"object-src":      "'none'",
		"base-uri":        "'self'",
		"form-action":     "'self'",
	}

	if cfg.IsDevelopment {
		directives["script-src"] = "'self' 'unsafe-inline' 'unsafe-eval'"
		directives["connect-src"] = "'self' ws: wss:"
	}

	for key, value := range cfg.CustomCSPDirectives {
		directives[key] = value
	}

	keys := make([]string, 0, len(directives))
	for k := range directives {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", k, directives[k]))
	}
	return strings.Join(parts, "; ")
}

// buildPermissionsPolicy constructs the Permissions-Policy header value.
func buildPermissionsPolicy() string {
	policies := []string{
		"accelerometer=()",
		"camera=()",
		"geolocation=()",
		"gyroscope=()",
		"magnetometer=()",
		"microphone=()",
		"payment=()",
		"usb=()",
	}

	return strings.Join(policies, ", ")
}
