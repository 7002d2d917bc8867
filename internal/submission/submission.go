// internal/submission/submission.go
//
// Moderated inbox resources.
//
// Context
// -------
// Contact messages, partner enquiries, join requests, and registrations
// share one lifecycle: the public site creates a row, and the dashboard
// lists, reads, moves it through a status vocabulary, annotates, and
// deletes it.  Resource[T] implements the dashboard half once; each
// component owns its create handler and validation rules and finishes
// with Resource.Create.
//
// Routes served (mounted by the owning component):
//
//	GET    /        list, ?status=<enum|all> ?limit=1..100 plus Filters
//	GET    /{id}    one row
//	PATCH  /{id}    status and Patch fields
//	DELETE /{id}    remove, 204
package submission

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/ispora/ispora-api/internal/api"
	"github.com/ispora/ispora-api/internal/auth"
	"github.com/ispora/ispora-api/internal/component"
	"github.com/ispora/ispora-api/internal/model"
	"github.com/ispora/ispora-api/internal/security"
	"github.com/ispora/ispora-api/internal/store"
)

// NotesMaxLength caps admin_notes.
const NotesMaxLength = 5000

// Resource serves the dashboard routes for one table.
type Resource[T any] struct {
	Deps     *component.Deps
	Table    func(store.Queryer) store.Table[T]
	Plural   string
	Singular string
	Statuses []string

	// Filters maps extra list query parameters to their allowed values;
	// the parameter name is also the column name.
	Filters map[string][]string

	// Patch lists fields PATCH may change besides status.  A nil value
	// means free text; otherwise the value must be in the slice.
	Patch map[string][]string

	Fail api.Failure
}

// Open resolves the table for this request, writing the error response
// when the database is unavailable.
func (res *Resource[T]) Open(w http.ResponseWriter, r *http.Request) (store.Table[T], context.Context, context.CancelFunc, bool) {
	ctx, cancel := res.Deps.QueryContext(r.Context())
	db, err := res.Deps.DB.Handle(ctx)
	if err != nil {
		cancel()
		res.Fail.Write(w, "Database unavailable", err)
		return store.Table[T]{}, nil, nil, false
	}
	return res.Table(db), ctx, cancel, true
}

// List handles GET /.
func (res *Resource[T]) List(w http.ResponseWriter, r *http.Request) {
	status, ok := api.StatusFilter(w, r, res.Statuses)
	if !ok {
		return
	}
	q := store.Query{
		OrderBy: []string{`"created_at" DESC`},
		Limit:   api.ParseLimit(r),
	}
	if status != "" {
		q.Where = append(q.Where, store.Eq("status", status))
	}
	for _, name := range sortedKeys(res.Filters) {
		v, ok := api.EnumParam(w, r, name, res.Filters[name])
		if !ok {
			return
		}
		if v != "" {
			q.Where = append(q.Where, store.Eq(name, v))
		}
	}

	tbl, ctx, cancel, ok := res.Open(w, r)
	if !ok {
		return
	}
	defer cancel()

	rows, err := tbl.List(ctx, q)
	if err != nil {
		res.Fail.Write(w, "Failed to fetch "+res.Plural, err)
		return
	}
	api.List(w, res.Plural, rows)
}

// Get handles GET /{id}.
func (res *Resource[T]) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(w, r)
	if !ok {
		return
	}
	tbl, ctx, cancel, ok := res.Open(w, r)
	if !ok {
		return
	}
	defer cancel()

	row, err := tbl.Get(ctx, id)
	if err != nil {
		res.Fail.Write(w, "Failed to fetch "+res.Singular, err)
		return
	}
	api.One(w, http.StatusOK, res.Singular, row)
}

// Update handles PATCH /{id}.
func (res *Resource[T]) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(w, r)
	if !ok {
		return
	}
	body, ok := api.DecodeBody(w, r, res.Deps.MaxBody())
	if !ok {
		return
	}

	set := map[string]any{}
	if body.Present("status") {
		status := security.SanitizeString(body["status"], 50)
		if !model.OneOf(status, res.Statuses) {
			api.BadRequest(w, "Invalid status", map[string]any{"allowed": res.Statuses})
			return
		}
		set["status"] = status
	}
	for field, allowed := range res.Patch {
		if !body.Has(field) {
			continue
		}
		if allowed == nil {
			set[field] = nullable(security.SanitizeString(body[field], NotesMaxLength))
			continue
		}
		v := security.SanitizeString(body[field], 50)
		if !model.OneOf(v, allowed) {
			api.BadRequest(w, "Invalid "+field, map[string]any{"allowed": allowed})
			return
		}
		set[field] = v
	}
	if len(set) == 0 {
		api.BadRequest(w, "No updatable fields supplied", res.fields())
		return
	}

	tbl, ctx, cancel, ok := res.Open(w, r)
	if !ok {
		return
	}
	defer cancel()

	row, err := tbl.Update(ctx, id, set)
	if err != nil {
		res.Fail.Write(w, "Failed to update "+res.Singular, err)
		return
	}
	res.Deps.Log.Infow("submission updated", "resource", res.Fail.Resource, "id", id, "status", set["status"], "by", auth.Subject(r.Context()))
	api.One(w, http.StatusOK, res.Singular, row)
}

// Delete handles DELETE /{id}.
func (res *Resource[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(w, r)
	if !ok {
		return
	}
	tbl, ctx, cancel, ok := res.Open(w, r)
	if !ok {
		return
	}
	defer cancel()

	if err := tbl.Delete(ctx, id); err != nil {
		res.Fail.Write(w, "Failed to delete "+res.Singular, err)
		return
	}
	res.Deps.Log.Infow("submission deleted", "resource", res.Fail.Resource, "id", id, "by", auth.Subject(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

// Create inserts values and writes 201 {"<singular>": row}.
func (res *Resource[T]) Create(w http.ResponseWriter, r *http.Request, values map[string]any) {
	tbl, ctx, cancel, ok := res.Open(w, r)
	if !ok {
		return
	}
	defer cancel()

	row, err := tbl.Insert(ctx, values)
	if err != nil {
		res.Fail.Write(w, "Failed to create "+res.Singular, err)
		return
	}
	res.Deps.Log.Infow("submission received", "resource", res.Fail.Resource)
	api.One(w, http.StatusCreated, res.Singular, row)
}

func (res *Resource[T]) fields() []string {
	return append([]string{"status"}, sortedKeys(res.Patch)...)
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// nullable maps "" to SQL NULL for optional text columns.
func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// Optional sanitizes an optional plain-text field; absent or blank gives
// NULL.
func Optional(v any, max int) any {
	return nullable(security.SanitizeString(v, max))
}
