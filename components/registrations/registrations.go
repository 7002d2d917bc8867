// components/registrations/registrations.go
//
// Community member registrations.
//
// Public:  POST /api/registrations      (rate limited)
// Admin:   GET  /api/registrations      ?status=pending|verified|active
//                                       ?group=local|diaspora
//          GET|PATCH|DELETE /api/registrations/{id}
//
// Notes
// -----
//   - email is unique; a second registration is a 400.
//   - location is a free-form object (city, country, coordinates …) stored
//     as jsonb after recursive sanitizing.
//   - PATCH may set any status in the vocabulary; transitions are not
//     enforced.  group may also be corrected.
package registrations

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ispora/ispora-api/internal/api"
	"github.com/ispora/ispora-api/internal/component"
	"github.com/ispora/ispora-api/internal/model"
	"github.com/ispora/ispora-api/internal/security"
	"github.com/ispora/ispora-api/internal/store"
	"github.com/ispora/ispora-api/internal/submission"
)

var _ component.Component = (*Comp)(nil)

func init() { component.Register(&Comp{}) }

// Comp implements component.Component.
type Comp struct {
	d   *component.Deps
	res *submission.Resource[model.Registration]
}

func (c *Comp) Name() string { return "registrations" }

func (c *Comp) Init(d *component.Deps) error {
	c.d = d
	c.res = &submission.Resource[model.Registration]{
		Deps:     d,
		Table:    store.Registrations,
		Plural:   "registrations",
		Singular: "registration",
		Statuses: model.RegistrationStatuses,
		Filters:  map[string][]string{"group": model.RegistrationGroups},
		Patch:    map[string][]string{"group": model.RegistrationGroups},
		Fail: api.Failure{
			Resource: "registrations",
			Thing:    "Registration",
			Conflict: "A registration with this email already exists",
			Log:      d.Log,
		},
	}
	return nil
}

func (c *Comp) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(c.d.CORS(http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete))

	r.With(c.d.Limit).Post("/", c.create)
	r.With(c.d.Admin).Get("/", c.res.List)
	r.With(c.d.Admin).Get("/{id}", c.res.Get)
	r.With(c.d.Admin).Patch("/{id}", c.res.Update)
	r.With(c.d.Admin).Delete("/{id}", c.res.Delete)
	return r
}

// required fields are checked on the raw body and again after sanitizing.
var required = []string{"full_name", "email", "group"}

func (c *Comp) create(w http.ResponseWriter, r *http.Request) {
	body, ok := api.DecodeBody(w, r, c.d.MaxBody())
	if !ok {
		return
	}
	if v := security.ValidateRequired(body, required); !v.Valid {
		api.Missing(w, v.Missing)
		return
	}

	email := strings.ToLower(security.SanitizeString(body["email"], 255))
	if !security.IsValidEmail(email) {
		api.BadRequest(w, "Invalid email address", nil)
		return
	}
	group := security.SanitizeString(body["group"], 20)
	if !model.OneOf(group, model.RegistrationGroups) {
		api.BadRequest(w, "Invalid group", map[string]any{"allowed": model.RegistrationGroups})
		return
	}

	var location any
	if body.Present("location") {
		loc, ok := security.SanitizeObject(body["location"], security.DefaultMaxDepth).(map[string]any)
		if !ok {
			api.BadRequest(w, "location must be an object", nil)
			return
		}
		location = model.JSONMap(loc)
	}

	values := map[string]any{
		"full_name":  security.SanitizeString(body["full_name"], 200),
		"email":      email,
		"phone":      submission.Optional(body["phone"], 30),
		"profession": submission.Optional(body["profession"], 200),
		"group":      group,
		"location":   location,
		"status":     model.RegistrationPending,
	}
	if v := security.ValidateRequired(values, required); !v.Valid {
		api.Missing(w, v.Missing)
		return
	}
	c.res.Create(w, r, values)
}
