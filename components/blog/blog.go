// components/blog/blog.go
//
// Blog posts.
//
// Routes
// ------
//
//	GET    /api/blog              list, ?status ?limit        (rate limited)
//	POST   /api/blog              create                      (rate limited, admin)
//	GET    /api/blog/slug/{slug}  one post by slug
//	GET    /api/blog/{id}         one post
//	PUT    /api/blog/{id}         update (same as PATCH)      (admin)
//	PATCH  /api/blog/{id}         update                      (admin)
//	DELETE /api/blog/{id}         remove, 204                 (admin)
//
// Rules live in rules.go; handlers.go only decodes and stores.
package blog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ispora/ispora-api/internal/api"
	"github.com/ispora/ispora-api/internal/component"
)

// compile-time assertion
var _ component.Component = (*Comp)(nil)

func init() { component.Register(&Comp{}) }

// Comp implements component.Component.
type Comp struct {
	d    *component.Deps
	fail api.Failure
}

func (c *Comp) Name() string { return "blog" }

func (c *Comp) Init(d *component.Deps) error {
	c.d = d
	c.fail = api.Failure{
		Resource: "blog",
		Thing:    "Blog post",
		Conflict: "A post with this slug already exists",
		Log:      d.Log,
	}
	return nil
}

func (c *Comp) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(c.d.CORS(http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete))

	r.With(c.d.Limit).Get("/", c.list)
	r.With(c.d.Limit, c.d.Admin).Post("/", c.create)
	r.Get("/slug/{slug}", c.getBySlug)
	r.Get("/{id}", c.get)
	r.With(c.d.Admin).Put("/{id}", c.update)
	r.With(c.d.Admin).Patch("/{id}", c.update)
	r.With(c.d.Admin).Delete("/{id}", c.remove)
	return r
}
