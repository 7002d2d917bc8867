// internal/requestinfo/requestinfo.go
//
// Per-request metadata attached by the Enrich middleware.
//
/*
Context
--------
Enrich runs early in the chain.  It resolves the client address once and
stores an *Info in the request context so the rate limiter, the request
logger, and the visits component read the same value.  User-agent parsing
and geolocation are deferred until first use; most routes never need them.
*/
package requestinfo

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Info is safe to read from multiple goroutines.
type Info struct {
	Addr      string
	Timestamp time.Time

	r       *http.Request
	locator *Locator

	agentOnce sync.Once
	agent     Agent
	geoOnce   sync.Once
	geo       Geo
}

// Agent parses the User-Agent header on first call.
func (i *Info) Agent() Agent {
	i.agentOnce.Do(func() { i.agent = ParseAgent(i.r.UserAgent()) })
	return i.agent
}

// Geo resolves the client location on first call.
func (i *Info) Geo() Geo {
	i.geoOnce.Do(func() { i.geo = i.locator.Lookup(i.r, i.Addr) })
	return i.geo
}

type ctxKey struct{}

// New builds an Info for r without attaching it.
func New(r *http.Request, loc *Locator) *Info {
	return &Info{
		Addr:      ClientAddr(r),
		Timestamp: time.Now().UTC(),
		r:         r,
		locator:   loc,
	}
}

// Enrich attaches *Info to every request.
func Enrich(loc *Locator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := New(r, loc)
			ctx := context.WithValue(r.Context(), ctxKey{}, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext returns the Info stored by Enrich, or nil.
func FromContext(ctx context.Context) *Info {
	v, _ := ctx.Value(ctxKey{}).(*Info)
	return v
}

// FromRequest returns the attached Info or builds a header-only one.
func FromRequest(r *http.Request) *Info {
	if info := FromContext(r.Context()); info != nil {
		return info
	}
	return New(r, nil)
}
