// components/events/events.go
//
// Community events.
//
// Routes
// ------
//
//	GET    /api/events        list, ?status ?limit ?upcoming=true  (rate limited)
//	POST   /api/events        create                               (rate limited, admin)
//	GET    /api/events/{id}   one event
//	PUT    /api/events/{id}   update (same as PATCH)               (admin)
//	PATCH  /api/events/{id}   update                               (admin)
//	DELETE /api/events/{id}   remove, 204                          (admin)
//
// Lifecycle
// ---------
// draft → published → archived.  On every create and update, an event
// whose effective start_at is already past is forced to archived unless
// the request itself asks for draft.
package events

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ispora/ispora-api/internal/api"
	"github.com/ispora/ispora-api/internal/component"
)

var _ component.Component = (*Comp)(nil)

func init() { component.Register(&Comp{}) }

// Comp implements component.Component.
type Comp struct {
	d    *component.Deps
	fail api.Failure
}

func (c *Comp) Name() string { return "events" }

func (c *Comp) Init(d *component.Deps) error {
	c.d = d
	c.fail = api.Failure{Resource: "events", Thing: "Event", Log: d.Log}
	return nil
}

func (c *Comp) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(c.d.CORS(http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete))

	r.With(c.d.Limit).Get("/", c.list)
	r.With(c.d.Limit, c.d.Admin).Post("/", c.create)
	r.Get("/{id}", c.get)
	r.With(c.d.Admin).Put("/{id}", c.update)
	r.With(c.d.Admin).Patch("/{id}", c.update)
	r.With(c.d.Admin).Delete("/{id}", c.remove)
	return r
}
