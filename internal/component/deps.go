// internal/component/deps.go
//
// Shared resources handed to every component during Init.
package component

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ispora/ispora-api/internal/config"
	"github.com/ispora/ispora-api/internal/database"
	"github.com/ispora/ispora-api/internal/middleware"
	"github.com/ispora/ispora-api/internal/objectstore"
	"github.com/ispora/ispora-api/internal/ratelimit"
	"github.com/ispora/ispora-api/internal/requestinfo"
)

// Deps is built once in main.  Nil Limiter, Objects, or Locator disable
// the matching feature; Admin is always a valid middleware.
type Deps struct {
	Config  config.Config
	DB      *database.Factory
	Limiter *ratelimit.Limiter
	Admin   func(http.Handler) http.Handler
	Objects objectstore.Store
	Locator *requestinfo.Locator
	Log     *zap.SugaredLogger
	Now     func() time.Time
}

// Fill sets defaults for unset optional fields and returns d.
func (d *Deps) Fill() *Deps {
	if d.Log == nil {
		d.Log = zap.NewNop().Sugar()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Admin == nil {
		d.Admin = func(h http.Handler) http.Handler { return h }
	}
	return d
}

// CORS returns the CORS middleware for a resource's method set.
func (d *Deps) CORS(methods ...string) func(http.Handler) http.Handler {
	return middleware.CORS(d.Config.HTTP.AllowOrigin, methods...)
}

// Limit applies the shared rate limiter.
func (d *Deps) Limit(next http.Handler) http.Handler {
	return middleware.RateLimit(d.Limiter)(next)
}

// QueryContext bounds ctx by the configured per-request query timeout.
func (d *Deps) QueryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if t := d.Config.Database.QueryTimeout; t > 0 {
		return context.WithTimeout(ctx, t)
	}
	return context.WithCancel(ctx)
}

// MaxBody is the JSON body cap.
func (d *Deps) MaxBody() int64 { return d.Config.HTTP.MaxBodyBytes }
