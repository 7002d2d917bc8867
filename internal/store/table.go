// internal/store/table.go
//
// Generic pass-through table helper.
//
// Context
// -------
// Every resource is a flat row addressed by a uuid primary key, so one
// generic helper covers list, get, insert, partial update, and delete.
// Column names always come from code, never from request data; values are
// always bound as parameters.
//
// SQL shape
// ---------
//
//	SELECT <cols> FROM <table> [WHERE c1 op $1 AND …] [ORDER BY …] LIMIT $n
//	INSERT INTO <table> (<k…>) VALUES ($1…) RETURNING <cols>
//	UPDATE <table> SET k1 = $1, …, "updated_at" = now() WHERE "id" = $n RETURNING <cols>
//	DELETE FROM <table> WHERE "id" = $1
//
// Keys of insert/update maps are emitted in sorted order so statements are
// deterministic (and sqlmock expectations stable).
//
// Notes
// -----
//   - Every identifier is double-quoted; `group` is reserved.
//   - Update on a table without updated_at must pass Touch=false.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Queryer is satisfied by *sqlx.DB and *sqlx.Tx.
type Queryer interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Cond is one AND-ed predicate.  Op is one of =, <>, <, <=, >, >=.
type Cond struct {
	Column string
	Op     string
	Value  any
}

// Eq is shorthand for an equality Cond.
func Eq(col string, v any) Cond { return Cond{Column: col, Op: "=", Value: v} }

// Query describes a list request.
type Query struct {
	Where   []Cond
	OrderBy []string // e.g. `"start_at" ASC`
	Limit   int
}

// Table issues queries for one table, scanning rows into T.
type Table[T any] struct {
	db      Queryer
	name    string
	columns string
	touch   bool
}

// NewTable binds name and its column list.  touch enables the automatic
// updated_at bump on Update.
func NewTable[T any](db Queryer, name string, touch bool, columns ...string) Table[T] {
	return Table[T]{db: db, name: quote(name), columns: quoteList(columns), touch: touch}
}

var allowedOps = map[string]bool{"=": true, "<>": true, "<": true, "<=": true, ">": true, ">=": true}

// List returns rows matching q.
func (t Table[T]) List(ctx context.Context, q Query) ([]T, error) {
	var (
		b    strings.Builder
		args []any
	)
	fmt.Fprintf(&b, "SELECT %s FROM %s", t.columns, t.name)

	for i, c := range q.Where {
		if !allowedOps[c.Op] {
			return nil, fmt.Errorf("store: unsupported operator %q", c.Op)
		}
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		args = append(args, c.Value)
		fmt.Fprintf(&b, "%s %s $%d", quote(c.Column), c.Op, len(args))
	}
	if len(q.OrderBy) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(q.OrderBy, ", "))
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		b.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}

	rows := []T{}
	if err := t.db.SelectContext(ctx, &rows, b.String(), args...); err != nil {
		return nil, classify(err)
	}
	return rows, nil
}

// Get fetches the row with primary key id.
func (t Table[T]) Get(ctx context.Context, id string) (*T, error) {
	return t.GetBy(ctx, "id", id)
}

// GetBy fetches the first row where column equals value.
func (t Table[T]) GetBy(ctx context.Context, column string, value any) (*T, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 LIMIT 1", t.columns, t.name, quote(column))
	var row T
	if err := t.db.GetContext(ctx, &row, q, value); err != nil {
		return nil, classify(err)
	}
	return &row, nil
}

// Insert writes one row and returns it as stored.
func (t Table[T]) Insert(ctx context.Context, values map[string]any) (*T, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("store: insert into %s with no values", t.name)
	}
	keys := sortedKeys(values)
	cols := make([]string, len(keys))
	marks := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		cols[i] = quote(k)
		marks[i] = "$" + strconv.Itoa(i+1)
		args[i] = values[k]
	}

	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		t.name, strings.Join(cols, ", "), strings.Join(marks, ", "), t.columns)

	var row T
	if err := t.db.GetContext(ctx, &row, q, args...); err != nil {
		return nil, classify(err)
	}
	return &row, nil
}

// Update applies set to the row with primary key id and returns the
// updated row.  An empty set only bumps updated_at.
func (t Table[T]) Update(ctx context.Context, id string, set map[string]any) (*T, error) {
	keys := sortedKeys(set)
	parts := make([]string, 0, len(keys)+1)
	args := make([]any, 0, len(keys)+1)
	for _, k := range keys {
		args = append(args, set[k])
		parts = append(parts, fmt.Sprintf("%s = $%d", quote(k), len(args)))
	}
	if t.touch {
		parts = append(parts, `"updated_at" = now()`)
	}
	if len(parts) == 0 {
		return t.Get(ctx, id)
	}
	args = append(args, id)

	q := fmt.Sprintf(`UPDATE %s SET %s WHERE "id" = $%d RETURNING %s`,
		t.name, strings.Join(parts, ", "), len(args), t.columns)

	var row T
	if err := t.db.GetContext(ctx, &row, q, args...); err != nil {
		return nil, classify(err)
	}
	return &row, nil
}

// Delete removes the row with primary key id.
func (t Table[T]) Delete(ctx context.Context, id string) error {
	res, err := t.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE "id" = $1`, t.name), id)
	if err != nil {
		return classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func quoteList(cols []string) string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = quote(c)
	}
	return strings.Join(out, ", ")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
