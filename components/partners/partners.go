// components/partners/partners.go
//
// Partnership enquiries.
//
// Public:  POST /api/partners           (rate limited)
// Admin:   GET  /api/partners           ?status=pending|approved|rejected
//          GET|PATCH|DELETE /api/partners/{id}
package partners

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
	res *submission.Resource[model.PartnerSubmission]
}

func (c *Comp) Name() string { return "partners" }

func (c *Comp) Init(d *component.Deps) error {
	c.d = d
	c.res = &submission.Resource[model.PartnerSubmission]{
		Deps:     d,
		Table:    store.PartnerSubmissions,
		Plural:   "partners",
		Singular: "partner",
		Statuses: model.ReviewStatuses,
		Patch:    map[string][]string{"admin_notes": nil},
		Fail:     api.Failure{Resource: "partners", Thing: "Partner submission", Log: d.Log},
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
var required = []string{"organization_name", "contact_name", "email"}

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

	var website any
	if site := security.SanitizeString(body["website"], 500); site != "" {
		if !security.IsValidURL(site) {
			api.BadRequest(w, "Invalid website URL", nil)
			return
		}
		website = site
	}

	values := map[string]any{
		"organization_name": security.SanitizeString(body["organization_name"], 200),
		"contact_name":      security.SanitizeString(body["contact_name"], 100),
		"email":             email,
		"phone":             submission.Optional(body["phone"], 30),
		"website":           website,
		"partnership_type":  submission.Optional(body["partnership_type"], 100),
		"message":           submission.Optional(body["message"], 5000),
		"status":            model.ReviewPending,
	}
	if v := security.ValidateRequired(values, required); !v.Valid {
		api.Missing(w, v.Missing)
		return
	}
	c.res.Create(w, r, values)
}
