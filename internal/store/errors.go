// internal/store/errors.go
//
// Driver error classification.
//
// Postgres reports constraint problems as SQLSTATE codes on *pgconn.PgError.
// classify folds the ones the API cares about into sentinel errors so
// handlers can branch with errors.Is and never import pgx themselves.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound means the addressed row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate means a unique constraint rejected the write.
	ErrDuplicate = errors.New("duplicate record")

	// ErrForeignKey means a referenced row does not exist.
	ErrForeignKey = errors.New("referenced record does not exist")

	// ErrInvalid means Postgres rejected a value's shape (bad uuid,
	// failed check constraint, bad enum literal).
	ErrInvalid = errors.New("invalid value")
)

// ConstraintError carries the Postgres details behind a sentinel.
type ConstraintError struct {
	Kind       error
	Code       string
	Constraint string
	Column     string
	Detail     string
}

func (e *ConstraintError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("%v (%s, constraint %s)", e.Kind, e.Code, e.Constraint)
	}
	return fmt.Sprintf("%v (%s)", e.Kind, e.Code)
}

func (e *ConstraintError) Unwrap() error { return e.Kind }

// classify maps driver errors onto the package sentinels.  Unknown errors
// are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	var kind error
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		kind = ErrDuplicate
	case pgerrcode.ForeignKeyViolation:
		kind = ErrForeignKey
	case pgerrcode.InvalidTextRepresentation,
		pgerrcode.CheckViolation,
		pgerrcode.NotNullViolation,
		pgerrcode.InvalidDatetimeFormat,
		pgerrcode.StringDataRightTruncationDataException:
		kind = ErrInvalid
	default:
		return err
	}
	return &ConstraintError{
		Kind:       kind,
		Code:       pgErr.Code,
		Constraint: pgErr.ConstraintName,
		Column:     pgErr.ColumnName,
		Detail:     pgErr.Detail,
	}
}

// Code returns the SQLSTATE behind err, or "".
func Code(err error) string {
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return ce.Code
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
