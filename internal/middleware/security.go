// internal/middleware/security.go
//
// Security-header middleware for JSON responses.
//
// Injects the headers that still matter for an API that never serves
// markup:
//
//   - Strict-Transport-Security  forces HTTPS (2 years)
//   - Content-Security-Policy   nothing may load, nothing may frame us
//   - X-Content-Type-Options    MIME-sniffing defence
//   - Referrer-Policy           no Referer leaves the API
//
// Notes
// -----
//   - Headers are set *before* next.ServeHTTP because handlers write the
//     status line early; a handler may still override any of them.
//   - HSTS is sent only on HTTPS requests (direct TLS or a proxy saying
//     X-Forwarded-Proto: https) so local development keeps working.
package middleware

import "net/http"

// Security sets security headers for every response.
func Security(next http.Handler) http.Handler {
	const (
		hsts  = "max-age=63072000; includeSubDomains"
		csp   = "default-src 'none'; frame-ancestors 'none'"
		nosn  = "nosniff"
		refer = "no-referrer"
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		if isHTTPS(r) {
			h.Set("Strict-Transport-Security", hsts)
		}
		h.Set("Content-Security-Policy", csp)
		h.Set("X-Content-Type-Options", nosn)
		h.Set("Referrer-Policy", refer)

		next.ServeHTTP(w, r)
	})
}
