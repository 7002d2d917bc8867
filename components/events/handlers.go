package events

import (
	"context"
	"errors"
	"net/http"

	"github.com/ispora/ispora-api/internal/api"
	"github.com/ispora/ispora-api/internal/auth"
	"github.com/ispora/ispora-api/internal/model"
	"github.com/ispora/ispora-api/internal/store"
)

func (c *Comp) open(w http.ResponseWriter, r *http.Request) (store.Table[model.Event], context.Context, context.CancelFunc, bool) {
	ctx, cancel := c.d.QueryContext(r.Context())
	db, err := c.d.DB.Handle(ctx)
	if err != nil {
		cancel()
		c.fail.Write(w, "Database unavailable", err)
		return store.Table[model.Event]{}, nil, nil, false
	}
	return store.Events(db), ctx, cancel, true
}

func (c *Comp) rejected(w http.ResponseWriter, err error) {
	var re *ruleError
	if errors.As(err, &re) {
		api.BadRequest(w, re.msg, re.details)
		return
	}
	c.fail.Write(w, "Failed to process event", err)
}

func (c *Comp) list(w http.ResponseWriter, r *http.Request) {
	status, ok := api.StatusFilter(w, r, model.PublicationStatuses)
	if !ok {
		return
	}
	upcoming := api.QueryBool(r, "upcoming")

	q := store.Query{Limit: api.ParseLimit(r)}
	if status != "" {
		q.Where = append(q.Where, store.Eq("status", status))
	}
	if upcoming {
		q.Where = append(q.Where, store.Cond{Column: "start_at", Op: ">=", Value: c.d.Now().UTC()})
		q.OrderBy = []string{`"start_at" ASC`}
	} else {
		q.OrderBy = []string{`"start_at" DESC`}
	}

	tbl, ctx, cancel, ok := c.open(w, r)
	if !ok {
		return
	}
	defer cancel()

	events, err := tbl.List(ctx, q)
	if err != nil {
		c.fail.Write(w, "Failed to fetch events", err)
		return
	}
	api.List(w, "events", events)
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

	ev, err := tbl.Get(ctx, id)
	if err != nil {
		c.fail.Write(w, "Failed to fetch event", err)
		return
	}
	api.One(w, http.StatusOK, "event", ev)
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

	ev, err := tbl.Insert(ctx, values)
	if err != nil {
		c.fail.Write(w, "Failed to create event", err)
		return
	}
	c.d.Log.Infow("event created", "id", ev.ID, "status", ev.Status, "start_at", ev.StartAt, "by", auth.Subject(r.Context()))
	api.One(w, http.StatusCreated, "event", ev)
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
		c.fail.Write(w, "Failed to fetch event", err)
		return
	}
	set, err := updateValues(body, cur, c.d.Now().UTC())
	if err != nil {
		c.rejected(w, err)
		return
	}
	ev, err := tbl.Update(ctx, id, set)
	if err != nil {
		c.fail.Write(w, "Failed to update event", err)
		return
	}
	c.d.Log.Infow("event updated", "id", ev.ID, "fields", len(set), "by", auth.Subject(r.Context()))
	if ev.Status == model.StatusArchived && cur.Status != model.StatusArchived {
		c.d.Log.Infow("event archived", "id", ev.ID, "start_at", ev.StartAt)
	}
	api.One(w, http.StatusOK, "event", ev)
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
		c.fail.Write(w, "Failed to delete event", err)
		return
	}
	c.d.Log.Infow("event deleted", "id", id, "by", auth.Subject(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}
