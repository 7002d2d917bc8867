// internal/middleware/cors.go
//
// Per-component CORS headers.
//
// Every resource answers browser preflights itself: OPTIONS returns 204
// with the allow headers and never reaches rate limiting, auth, or the
// database.  The allowed method list is resource-specific so a preflight
// for DELETE on /api/visits fails in the browser instead of at the handler.
package middleware

import (
	"net/http"
	"strings"
)

// AllowedHeaders is sent on every CORS response.
const AllowedHeaders = "Content-Type, Authorization"

// CORS returns a wrapper setting Access-Control-* headers for origin and
// methods.  OPTIONS is always added to methods.
func CORS(origin string, methods ...string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "*"
	}
	allow := strings.Join(append(append([]string{}, methods...), http.MethodOptions), ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", allow)
			h.Set("Access-Control-Allow-Headers", AllowedHeaders)
			if origin != "*" {
				h.Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
