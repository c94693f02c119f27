package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// DebugAuthConfig protects the profiling and cache inspection endpoints.
type DebugAuthConfig struct {
	// Token enables Bearer authentication.
	Token string
	// Fallback is used when Token is empty.
	Fallback *AuthConfig
}

// DebugAuth requires the Bearer token when one is configured, otherwise
// the main Basic Auth credentials. With neither, debug endpoints are closed.
func DebugAuth(config *DebugAuthConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.Token != "" {
				if !bearerMatches(r, config.Token) {
					writeError(w, r, http.StatusForbidden, "forbidden", "invalid debug token")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if config.Fallback != nil {
				enabled, ok := config.Fallback.check(r)
				if enabled && ok {
					next.ServeHTTP(w, r)
					return
				}
				if enabled {
					unauthorized(w, r, "pitwall-debug")
					return
				}
			}

			writeError(w, r, http.StatusForbidden, "forbidden", "debug endpoints are not available")
		})
	}
}

func bearerMatches(r *http.Request, want string) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(want)) == 1
}
