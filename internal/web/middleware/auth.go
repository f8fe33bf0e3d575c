package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/JonMunkholm/inbound/internal/logging"
)

// APIKeyAuth returns middleware that validates the X-API-Key header against
// keys. When required is false every request passes; when it is true and
// keys is empty every request is rejected.
func APIKeyAuth(required bool, keys []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !required {
				next.ServeHTTP(w, r)
				return
			}

			apiKey := r.Header.Get("X-API-Key")
			if apiKey == "" || !isValidAPIKey(apiKey, keys) {
				status, code := http.StatusForbidden, "AUTH_INVALID_KEY"
				if apiKey == "" {
					status, code = http.StatusUnauthorized, "AUTH_MISSING_KEY"
				}
				logging.FromContext(r.Context()).Warn("auth: rejected request",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
					"code", code,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				w.Write([]byte(`{"error":"unauthorized","code":"` + code + `"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isValidAPIKey compares key against every configured key in constant time.
func isValidAPIKey(key string, validKeys []string) bool {
	valid := 0
	for _, validKey := range validKeys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(validKey))
	}
	return valid == 1
}
