package middleware

import (
	"net/http"
	"strings"

	"github.com/Wikid82/autosource/backend/internal/util"
)

const maxLoggedValue = 200

// SanitizeHeaders returns header values that are safe to log. Credentials
// are redacted and everything else is cleaned and truncated.
func SanitizeHeaders(h http.Header) map[string][]string {
	if h == nil {
		return nil
	}
	sensitive := map[string]struct{}{
		"authorization":       {},
		"cookie":              {},
		"set-cookie":          {},
		"proxy-authorization": {},
		"x-api-key":           {},
		"x-api-token":         {},
		"x-access-token":      {},
		"x-auth-token":        {},
		"x-api-secret":        {},
		"x-forwarded-for":     {},
	}
	out := make(map[string][]string, len(h))
	for k, vals := range h {
		keyLower := strings.ToLower(k)
		if _, ok := sensitive[keyLower]; ok {
			out[k] = []string{"<redacted>"}
			continue
		}
		clean := make([]string, 0, len(vals))
		for _, v := range vals {
			clean = append(clean, util.Truncate(util.SanitizeForLog(v), maxLoggedValue))
		}
		out[k] = clean
	}
	return out
}

// SanitizePath strips the query string and control characters from a
// request path before logging.
func SanitizePath(p string) string {
	if i := strings.Index(p, "?"); i != -1 {
		p = p[:i]
	}
	return util.Truncate(util.SanitizeForLog(p), maxLoggedValue)
}
