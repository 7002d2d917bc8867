// Package componenttest wires a component against sqlmock for handler
// tests.
package componenttest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ispora/ispora-api/internal/auth"
	"github.com/ispora/ispora-api/internal/component"
	"github.com/ispora/ispora-api/internal/config"
	"github.com/ispora/ispora-api/internal/database"
	"github.com/ispora/ispora-api/internal/ratelimit"
)

// Now is the fixed clock used by Deps.
var Now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// Deps returns deps backed by sqlmock and a fixed clock.  The limiter is
// generous so tests only see 429 when they ask for it.
func Deps(t *testing.T) (*component.Deps, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet SQL expectations: %v", err)
		}
		db.Close()
	})

	d := &component.Deps{
		Config:  config.Default(),
		DB:      database.FromDB(sqlx.NewDb(db, database.DriverName)),
		Limiter: ratelimit.New(ratelimit.Options{Limit: 1000}),
		Now:     func() time.Time { return Now },
	}
	return d.Fill(), mock
}

// AsAdmin replaces the admin guard with one that attaches claims for
// subject, as a verified service-role token would.
func AsAdmin(d *component.Deps, subject string) {
	c := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
		Role:             auth.ServiceRole,
	}
	d.Admin = func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), c)))
		})
	}
}

// ObserveLogs swaps d.Log for an in-memory info-level logger.
func ObserveLogs(d *component.Deps) *observer.ObservedLogs {
	core, logs := observer.New(zapcore.InfoLevel)
	d.Log = zap.New(core).Sugar()
	return logs
}

// Mount initialises c with d and returns its router.
func Mount(t *testing.T, c component.Component, d *component.Deps) http.Handler {
	t.Helper()
	if err := c.Init(d); err != nil {
		t.Fatalf("init %s: %v", c.Name(), err)
	}
	return c.Routes()
}

// Do serves one request.  body may be nil, a string, or a value to
// encode as JSON.
func Do(h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		buf, _ := json.Marshal(b)
		rd = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, target, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// JSON decodes the response body.
func JSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return m
}
