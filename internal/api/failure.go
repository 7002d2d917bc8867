// internal/api/failure.go
//
// Mapping of store and database errors onto HTTP responses.
//
// Context
// -------
// A handler that gets an error back from the store calls Failure.Write and
// returns.  The mapping is:
//
//	database.ErrConfig   500  "Database configuration error" + hint
//	store.ErrDuplicate   400  "<Conflict>"  (e.g. "A post with this slug already exists")
//	store.ErrNotFound    404  "<Thing> not found"
//	store.ErrInvalid     400  "Invalid value"
//	store.ErrForeignKey  400  "Referenced record does not exist"
//	anything else        500  hint "check server logs for [<resource>]"
//
// Unexpected errors are logged with the resource tag and counted in
// db_errors_total.
package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ispora/ispora-api/internal/database"
	"github.com/ispora/ispora-api/internal/metrics"
	"github.com/ispora/ispora-api/internal/store"
)

// Failure describes how one resource reports store errors.
type Failure struct {
	Resource string // log and metric tag, e.g. "blog"
	Thing    string // human noun for 404s, e.g. "Blog post"
	Conflict string // 400 message for unique violations
	Log      *zap.SugaredLogger
}

// Write maps err and writes the response.
func (f Failure) Write(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, database.ErrConfig):
		f.logger().Errorw("database configuration", "resource", f.Resource, "err", err)
		WriteError(w, http.StatusInternalServerError, Error{
			Error: "Database configuration error",
			Hint:  "set database.dsn and database.password (ISPORA_DATABASE__DSN, ISPORA_DATABASE__PASSWORD)",
		})

	case errors.Is(err, store.ErrDuplicate):
		conflict := f.Conflict
		if conflict == "" {
			conflict = f.Thing + " already exists"
		}
		WriteError(w, http.StatusBadRequest, Error{Error: conflict, Code: store.Code(err)})

	case errors.Is(err, store.ErrNotFound):
		NotFound(w, f.Thing)

	case errors.Is(err, store.ErrInvalid):
		WriteError(w, http.StatusBadRequest, Error{Error: "Invalid value", Details: detail(err), Code: store.Code(err)})

	case errors.Is(err, store.ErrForeignKey):
		WriteError(w, http.StatusBadRequest, Error{Error: "Referenced record does not exist", Code: store.Code(err)})

	default:
		metrics.DBErrorsTotal.WithLabelValues(f.Resource).Inc()
		f.logger().Errorw(msg, "resource", f.Resource, "err", err)
		WriteError(w, http.StatusInternalServerError, Error{
			Error: msg,
			Hint:  "check server logs for [" + f.Resource + "]",
			Code:  store.Code(err),
		})
	}
}

func (f Failure) logger() *zap.SugaredLogger {
	if f.Log == nil {
		return zap.S()
	}
	return f.Log
}

func detail(err error) any {
	var ce *store.ConstraintError
	if errors.As(err, &ce) && ce.Detail != "" {
		return ce.Detail
	}
	return nil
}
