// internal/middleware/ratelimit.go
//
// Fixed-window rate limiting per client address.
//
// Every limited response carries
//
//	X-RateLimit-Limit      capacity of the window
//	X-RateLimit-Remaining  requests left in the window
//	X-RateLimit-Reset      unix seconds when the window ends
//
// A denied request gets 429, Retry-After in whole seconds (at least 1),
// and a JSON error body.  The client address comes from requestinfo so
// the limiter and the access log agree on who the client is.
package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/ispora/ispora-api/internal/api"
	"github.com/ispora/ispora-api/internal/metrics"
	"github.com/ispora/ispora-api/internal/ratelimit"
	"github.com/ispora/ispora-api/internal/requestinfo"
)

// RateLimit wraps next with l.  A nil limiter disables limiting.
func RateLimit(l *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := l.Allow(requestinfo.FromRequest(r).Addr)
			metrics.RateLimitTrackedKeys.Set(float64(l.Len()))

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed {
				metrics.RateLimitDeniedTotal.Inc()
				wait := int(math.Ceil(res.RetryAfter.Seconds()))
				if wait < 1 {
					wait = 1
				}
				h.Set("Retry-After", strconv.Itoa(wait))
				api.WriteError(w, http.StatusTooManyRequests, api.Error{
					Error: "Too many requests, please try again later",
					Code:  "rate_limited",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
