package blog

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ispora/ispora-api/internal/api"
	"github.com/ispora/ispora-api/internal/auth"
	"github.com/ispora/ispora-api/internal/model"
	"github.com/ispora/ispora-api/internal/slug"
	"github.com/ispora/ispora-api/internal/store"
)

func (c *Comp) open(w http.ResponseWriter, r *http.Request) (store.Table[model.BlogPost], context.Context, context.CancelFunc, bool) {
	ctx, cancel := c.d.QueryContext(r.Context())
	db, err := c.d.DB.Handle(ctx)
	if err != nil {
		cancel()
		c.fail.Write(w, "Database unavailable", err)
		return store.Table[model.BlogPost]{}, nil, nil, false
	}
	return store.BlogPosts(db), ctx, cancel, true
}

func (c *Comp) rejected(w http.ResponseWriter, err error) {
	var re *ruleError
	if errors.As(err, &re) {
		api.BadRequest(w, re.msg, re.details)
		return
	}
	c.fail.Write(w, "Failed to process blog post", err)
}

func (c *Comp) list(w http.ResponseWriter, r *http.Request) {
	status, ok := api.StatusFilter(w, r, model.PublicationStatuses)
	if !ok {
		return
	}
	q := store.Query{
		OrderBy: []string{`"published_at" DESC NULLS LAST`, `"created_at" DESC`},
		Limit:   api.ParseLimit(r),
	}
	if status != "" {
		q.Where = []store.Cond{store.Eq("status", status)}
	}

	tbl, ctx, cancel, ok := c.open(w, r)
	if !ok {
		return
	}
	defer cancel()

	posts, err := tbl.List(ctx, q)
	if err != nil {
		c.fail.Write(w, "Failed to fetch blog posts", err)
		return
	}
	api.List(w, "posts", posts)
}

func (c *Comp) get(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(w, r)
	if !ok {
		return
	}
	tbl, ctx, cancel, ok := c.open(w, r)
	if !ok {
		return
	}
	defer cancel()

	post, err := tbl.Get(ctx, id)
	if err != nil {
		c.fail.Write(w, "Failed to fetch blog post", err)
		return
	}
	api.One(w, http.StatusOK, "post", post)
}

func (c *Comp) getBySlug(w http.ResponseWriter, r *http.Request) {
	s := chi.URLParam(r, "slug")
	if !slug.Valid(s) {
		api.BadRequest(w, "Invalid slug", s)
		return
	}
	tbl, ctx, cancel, ok := c.open(w, r)
	if !ok {
		return
	}
	defer cancel()

	post, err := tbl.GetBy(ctx, "slug", s)
	if err != nil {
		c.fail.Write(w, "Failed to fetch blog post", err)
		return
	}
	api.One(w, http.StatusOK, "post", post)
}

func (c *Comp) create(w http.ResponseWriter, r *http.Request) {
	body, ok := api.DecodeBody(w, r, c.d.MaxBody())
	if !ok {
		return
	}
	values, err := createValues(body, c.d.Now().UTC())
	if err != nil {
		c.rejected(w, err)
		return
	}

	tbl, ctx, cancel, ok := c.open(w, r)
	if !ok {
		return
	}
	defer cancel()

	post, err := tbl.Insert(ctx, values)
	if err != nil {
		c.fail.Write(w, "Failed to create blog post", err)
		return
	}
	c.d.Log.Infow("blog post created", "id", post.ID, "slug", post.Slug, "status", post.Status, "by", auth.Subject(r.Context()))
	api.One(w, http.StatusCreated, "post", post)
}

func (c *Comp) update(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(w, r)
	if !ok {
		return
	}
	body, ok := api.DecodeBody(w, r, c.d.MaxBody())
	if !ok {
		return
	}

	tbl, ctx, cancel, ok := c.open(w, r)
	if !ok {
		return
	}
	defer cancel()

	cur, err := tbl.Get(ctx, id)
	if err != nil {
		c.fail.Write(w, "Failed to fetch blog post", err)
		return
	}
	set, err := updateValues(body, cur, c.d.Now().UTC())
	if err != nil {
		c.rejected(w, err)
		return
	}
	post, err := tbl.Update(ctx, id, set)
	if err != nil {
		c.fail.Write(w, "Failed to update blog post", err)
		return
	}
	c.d.Log.Infow("blog post updated", "id", post.ID, "status", post.Status, "by", auth.Subject(r.Context()))
	api.One(w, http.StatusOK, "post", post)
}

func (c *Comp) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(w, r)
	if !ok {
		return
	}
	tbl, ctx, cancel, ok := c.open(w, r)
	if !ok {
		return
	}
	defer cancel()

	if err := tbl.Delete(ctx, id); err != nil {
		c.fail.Write(w, "Failed to delete blog post", err)
		return
	}
	c.d.Log.Infow("blog post deleted", "id", id, "by", auth.Subject(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}
