// internal/middleware/admin.go
//
// Admin guard for dashboard-only routes.  With a nil verifier (auth not
// configured) the guard is a pass-through, matching deployments where the
// API sits behind a private network or the dashboard proxy.
package middleware

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ispora/ispora-api/internal/api"
	"github.com/ispora/ispora-api/internal/auth"
)

// RequireAdmin rejects requests without a valid admin bearer token:
// 401 for a missing or invalid token, 403 for a valid non-admin one.
func RequireAdmin(v *auth.Verifier, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if v == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := v.Verify(r.Context(), r.Header.Get("Authorization"))
			switch {
			case err == nil:
				next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), c)))
			case errors.Is(err, auth.ErrNotAdmin):
				log.Warnw("admin route denied", "subject", c.Subject, "path", r.URL.Path)
				api.WriteError(w, http.StatusForbidden, api.Error{Error: "Admin access required"})
			default:
				log.Debugw("admin token rejected", "err", err, "path", r.URL.Path)
				w.Header().Set("WWW-Authenticate", `Bearer realm="ispora"`)
				api.WriteError(w, http.StatusUnauthorized, api.Error{Error: "Authentication required"})
			}
		})
	}
}
