// internal/server/router.go
//
// Root router.
//
// Middleware order
// ----------------
//  1. RequestID        chi, id echoed in logs
//  2. Recoverer        panics become 500
//  3. Enrich           client address, agent, geo on the context
//  4. RequestLogger    access log
//  5. Metrics          route-pattern labelled counters
//  6. Security         response headers
//  7. ForceHTTPS       308 redirect when enabled
//
// JSON NotFound / MethodNotAllowed handlers are installed before any
// component is mounted; chi copies them into mounted sub-routers only at
// Mount time.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ispora/ispora-api/internal/api"
	"github.com/ispora/ispora-api/internal/component"
	"github.com/ispora/ispora-api/internal/middleware"
	"github.com/ispora/ispora-api/internal/requestinfo"
)

// APIPrefix is where components are mounted.
const APIPrefix = "/api"

const healthTimeout = 2 * time.Second

// NewRouter initialises comps with d and mounts each at /api/<Name()>.
func NewRouter(d *component.Deps, comps []component.Component) (http.Handler, error) {
	d.Fill()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(requestinfo.Enrich(d.Locator))
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.Metrics)
	r.Use(middleware.Security)
	r.Use(middleware.ForceHTTPS(d.Config.HTTP.ForceHTTPS))

	r.NotFound(api.RouteNotFound)
	r.MethodNotAllowed(api.MethodNotAllowed)

	r.Get("/health", health(d))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	for _, c := range comps {
		if err := c.Init(d); err != nil {
			return nil, fmt.Errorf("init component %s: %w", c.Name(), err)
		}
		r.Mount(APIPrefix+"/"+c.Name(), c.Routes())
		d.Log.Debugw("component mounted", "component", c.Name())
	}
	return r, nil
}

// health always answers 200; the database field reports reachability so
// load balancers keep routing while the pool recovers.
func health(d *component.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		db := "ok"
		if err := d.DB.Ping(ctx); err != nil {
			d.Log.Warnw("health: database unreachable", "err", err)
			db = "unavailable"
		}
		api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": db})
	}
}
