package middleware

import "net/http"

// DefaultMaxBodyBytes applies when no limit is configured. Strategy
// requests are a handful of numbers.
const DefaultMaxBodyBytes = 64 << 10

// MaxBody caps request bodies of POST, PUT and PATCH requests. A
// non-positive maxBytes uses DefaultMaxBodyBytes.
func MaxBody(maxBytes int64) Middleware {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
