// internal/middleware/logging.go
//
// Access log.  One zap entry per request with method, path, status,
// duration, bytes, client address and request id.  Level follows the
// status class: info below 400, warn for 4xx, error for 5xx.
package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ispora/ispora-api/internal/requestinfo"
)

// RequestLogger returns the access-log wrapper.
func RequestLogger(log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := newStatusWriter(w)

			next.ServeHTTP(sw, r)

			fields := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration", time.Since(start),
				"bytes", sw.written,
				"client", requestinfo.FromRequest(r).Addr,
				"request_id", chimw.GetReqID(r.Context()),
			}
			switch {
			case sw.status >= 500:
				log.Errorw("http request", fields...)
			case sw.status >= 400:
				log.Warnw("http request", fields...)
			default:
				log.Infow("http request", fields...)
			}
		})
	}
}
