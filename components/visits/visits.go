// components/visits/visits.go
//
// Page-visit analytics.
//
// Public:  POST /api/visits   (rate limited)
// Admin:   GET  /api/visits   ?limit=1..100, newest first
//
// Context
// -------
// The site calls POST on every page view.  Analytics must never break a
// page, so a failed insert (or an unavailable database) answers
// 200 {"success": false} instead of an error status; the failure is only
// logged and counted in visit_insert_failures_total.  A stored visit
// answers 201 {"success": true}.
//
// The user agent comes from the body when the caller forwards one (server
// side rendering) and from the request header otherwise.  Geo comes from
// requestinfo: GeoLite2 when configured, else edge headers.
package visits

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ispora/ispora-api/internal/api"
	"github.com/ispora/ispora-api/internal/component"
	"github.com/ispora/ispora-api/internal/metrics"
	"github.com/ispora/ispora-api/internal/requestinfo"
	"github.com/ispora/ispora-api/internal/security"
	"github.com/ispora/ispora-api/internal/store"
)

var _ component.Component = (*Comp)(nil)

func init() { component.Register(&Comp{}) }

// Field limits.
const (
	pageMax     = 500
	referrerMax = 1000
	agentMax    = 500
)

// Comp implements component.Component.
type Comp struct {
	d    *component.Deps
	fail api.Failure
}

func (c *Comp) Name() string { return "visits" }

func (c *Comp) Init(d *component.Deps) error {
	c.d = d
	c.fail = api.Failure{Resource: "visits", Thing: "Visit", Log: d.Log}
	return nil
}

func (c *Comp) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(c.d.CORS(http.MethodGet, http.MethodPost))

	r.With(c.d.Limit).Post("/", c.record)
	r.With(c.d.Admin).Get("/", c.recent)
	return r
}

func (c *Comp) info(r *http.Request) *requestinfo.Info {
	if info := requestinfo.FromContext(r.Context()); info != nil {
		return info
	}
	return requestinfo.New(r, c.d.Locator)
}

func (c *Comp) record(w http.ResponseWriter, r *http.Request) {
	body, ok := api.DecodeBody(w, r, c.d.MaxBody())
	if !ok {
		return
	}

	info := c.info(r)
	agent := info.Agent()
	if raw := security.SanitizeString(body["user_agent"], agentMax); raw != "" {
		agent = requestinfo.ParseAgent(raw)
	}
	geo := info.Geo()

	page := security.SanitizeString(body["page"], pageMax)
	if page == "" {
		page = "/"
	}
	referrer := security.SanitizeString(body["referrer"], referrerMax)
	if referrer == "" {
		referrer = security.SanitizeString(r.Referer(), referrerMax)
	}

	values := map[string]any{
		"page":       page,
		"referrer":   text(referrer),
		"user_agent": text(security.SanitizeString(agent.Raw, agentMax)),
		"browser":    text(agent.Browser),
		"os":         text(agent.OS),
		"device":     text(agent.Device),
		"is_bot":     agent.IsBot,
		"country":    text(geo.Country),
		"city":       text(geo.City),
	}

	ctx, cancel := c.d.QueryContext(r.Context())
	defer cancel()

	db, err := c.d.DB.Handle(ctx)
	if err == nil {
		_, err = store.Visits(db).Insert(ctx, values)
	}
	if err != nil {
		metrics.VisitInsertFailuresTotal.Inc()
		c.d.Log.Warnw("visit not recorded", "resource", "visits", "page", page, "err", err)
		api.WriteJSON(w, http.StatusOK, map[string]any{"success": false})
		return
	}
	api.WriteJSON(w, http.StatusCreated, map[string]any{"success": true})
}

func (c *Comp) recent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.d.QueryContext(r.Context())
	defer cancel()

	db, err := c.d.DB.Handle(ctx)
	if err != nil {
		c.fail.Write(w, "Database unavailable", err)
		return
	}
	visits, err := store.Visits(db).List(ctx, store.Query{
		OrderBy: []string{`"created_at" DESC`},
		Limit:   api.ParseLimit(r),
	})
	if err != nil {
		c.fail.Write(w, "Failed to fetch visits", err)
		return
	}
	api.List(w, "visits", visits)
}

func text(s string) any {
	if s == "" {
		return nil
	}
	return s
}
