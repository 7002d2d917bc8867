// components/contacts/contacts.go
//
// Contact form inbox.
//
// Public:  POST /api/contacts           (rate limited)
// Admin:   GET  /api/contacts           ?status=new|read|replied|archived
//          GET|PATCH|DELETE /api/contacts/{id}
//
// PATCH accepts status and admin_notes.
package contacts

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

// compile-time assertion
var _ component.Component = (*Comp)(nil)

func init() { component.Register(&Comp{}) }

// Comp implements component.Component.
type Comp struct {
	d   *component.Deps
	res *submission.Resource[model.ContactSubmission]
}

func (c *Comp) Name() string { return "contacts" }

func (c *Comp) Init(d *component.Deps) error {
	c.d = d
	c.res = &submission.Resource[model.ContactSubmission]{
		Deps:     d,
		Table:    store.ContactSubmissions,
		Plural:   "contacts",
		Singular: "contact",
		Statuses: model.ContactStatuses,
		Patch:    map[string][]string{"admin_notes": nil},
		Fail:     api.Failure{Resource: "contacts", Thing: "Contact submission", Log: d.Log},
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
var required = []string{"name", "email", "message"}

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

	values := map[string]any{
		"name":    security.SanitizeString(body["name"], 100),
		"email":   email,
		"subject": submission.Optional(body["subject"], 200),
		"message": security.SanitizeString(body["message"], 5000),
		"status":  model.ContactNew,
	}
	if v := security.ValidateRequired(values, required); !v.Valid {
		api.Missing(w, v.Missing)
		return
	}
	c.res.Create(w, r, values)
}
