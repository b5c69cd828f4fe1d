package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/eventboard/server/internal/config"
)

const (
	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization, X-Request-ID"
)

// CORS admits the single origin configured for the deployment mode. When no
// origin is configured every origin is reflected. Mismatched origins are
// logged and served without CORS headers so the browser blocks them.
func CORS(cfg config.CORSConfig, logger zerolog.Logger) func(http.Handler) http.Handler {
	allowed := strings.TrimSpace(cfg.AllowedOrigin)
	if allowed == "" {
		logger.Warn().Str("mode", cfg.Mode).Msg("no CORS origin configured; reflecting any origin")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				w.Header().Add("Vary", "Origin")
				if allowed == "" || isOriginAllowed(origin, allowed) {
					h := w.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Set("Access-Control-Allow-Credentials", "true")
					h.Set("Access-Control-Allow-Methods", corsAllowMethods)
					h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
					h.Set("Access-Control-Expose-Headers", "X-Request-ID")
				} else {
					logger.Warn().
						Str("origin", origin).
						Str("path", r.URL.Path).
						Str("method", r.Method).
						Msg("CORS request rejected: origin not allowed")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isOriginAllowed compares case-insensitively and ignores a trailing slash.
func isOriginAllowed(origin, allowed string) bool {
	normalize := func(v string) string {
		return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(v)), "/")
	}
	return normalize(origin) == normalize(allowed)
}
