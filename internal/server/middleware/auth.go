package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"
)

// AuthConfig holds Basic Auth credentials. It is shared with the server so
// a config reload can swap them while requests are in flight.
type AuthConfig struct {
	mu       sync.RWMutex
	Enabled  bool
	User     string
	Password string
}

// Update replaces the credentials.
func (c *AuthConfig) Update(enabled bool, user, password string) {
	c.mu.Lock()
	c.Enabled = enabled
	c.User = user
	c.Password = password
	c.mu.Unlock()
}

func (c *AuthConfig) get() (enabled bool, user, password string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Enabled, c.User, c.Password
}

// check reports whether Basic Auth is enabled and whether r carries the
// configured credentials.
func (c *AuthConfig) check(r *http.Request) (enabled, ok bool) {
	enabled, wantUser, wantPass := c.get()
	if !enabled {
		return false, false
	}
	user, pass, found := r.BasicAuth()
	if !found {
		return true, false
	}
	userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(wantUser)) == 1
	passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(wantPass)) == 1
	return true, userMatch && passMatch
}

// Auth requires Basic Auth on every path except excludePaths. An entry
// ending in "*" excludes a prefix, e.g. "/debug/*".
func Auth(config *AuthConfig, excludePaths ...string) Middleware {
	exact := make(map[string]bool)
	var prefixes []string
	for _, path := range excludePaths {
		if p, ok := strings.CutSuffix(path, "*"); ok {
			prefixes = append(prefixes, p)
		} else {
			exact[path] = true
		}
	}

	excluded := func(path string) bool {
		if exact[path] {
			return true
		}
		for _, p := range prefixes {
			if strings.HasPrefix(path, p) {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if excluded(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			if enabled, ok := config.check(r); enabled && !ok {
				unauthorized(w, r, "pitwall")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, realm string) {
	w.Header().Set("WWW-Authenticate", `Basic realm="`+realm+`"`)
	writeError(w, r, http.StatusUnauthorized, "unauthorized", "authentication required")
}
