package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgerrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ispora/ispora-api/internal/database"
	"github.com/ispora/ispora-api/internal/store"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestListEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	List[string](rec, "posts", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	m := decode(t, rec)
	assert.Equal(t, []any{}, m["posts"])
	assert.EqualValues(t, 0, m["count"])
}

func TestFailureMapping(t *testing.T) {
	f := Failure{Resource: "blog", Thing: "Blog post", Conflict: "A post with this slug already exists", Log: zap.NewNop().Sugar()}

	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"config", fmt.Errorf("wrap: %w", database.ErrConfig), 500, "Database configuration error"},
		{"duplicate", &store.ConstraintError{Kind: store.ErrDuplicate, Code: pgerrcode.UniqueViolation}, 400, "A post with this slug already exists"},
		{"missing", store.ErrNotFound, 404, "Blog post not found"},
		{"invalid", &store.ConstraintError{Kind: store.ErrInvalid, Code: pgerrcode.CheckViolation}, 400, "Invalid value"},
		{"other", fmt.Errorf("connection reset"), 500, "Failed to load"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			f.Write(rec, "Failed to load", tc.err)
			assert.Equal(t, tc.status, rec.Code)
			m := decode(t, rec)
			assert.Equal(t, tc.msg, m["error"])
			if tc.name == "other" {
				assert.Equal(t, "check server logs for [blog]", m["hint"])
			}
		})
	}
}

func TestDecodeBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"x","n":3}`))
	rec := httptest.NewRecorder()
	b, ok := DecodeBody(rec, req, 0)
	require.True(t, ok)
	assert.Equal(t, "x", b["title"])
	assert.True(t, b.Has("n"))
	assert.False(t, b.Present("missing"))
}

func TestDecodeBodyErrors(t *testing.T) {
	cases := map[string]struct {
		body   string
		max    int64
		status int
	}{
		"empty":     {"", 0, 400},
		"not json":  {"{", 0, 400},
		"array":     {"[1]", 0, 400},
		"null":      {"null", 0, 400},
		"too large": {`{"a":"` + strings.Repeat("x", 64) + `"}`, 16, 413},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			_, ok := DecodeBody(rec, req, tc.max)
			assert.False(t, ok)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestParseLimit(t *testing.T) {
	for raw, want := range map[string]int{"": 20, "5": 5, "0": 1, "-3": 1, "1000": 100, "abc": 20} {
		req := httptest.NewRequest(http.MethodGet, "/?limit="+raw, nil)
		assert.Equal(t, want, ParseLimit(req), "limit=%q", raw)
	}
}

func TestStatusFilter(t *testing.T) {
	allowed := []string{"draft", "published"}

	rec := httptest.NewRecorder()
	v, ok := StatusFilter(rec, httptest.NewRequest(http.MethodGet, "/?status=all", nil), allowed)
	assert.True(t, ok)
	assert.Equal(t, "", v)

	v, ok = StatusFilter(rec, httptest.NewRequest(http.MethodGet, "/?status=draft", nil), allowed)
	assert.True(t, ok)
	assert.Equal(t, "draft", v)

	_, ok = StatusFilter(rec, httptest.NewRequest(http.MethodGet, "/?status=bogus", nil), allowed)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPathID(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := PathID(w, r)
		if !ok {
			return
		}
		_, _ = w.Write([]byte(id))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/6F9619FF-8B86-D011-B42D-00C04FC964FF", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "6f9619ff-8b86-d011-b42d-00c04fc964ff", rec.Body.String())
}

func TestBodyTime(t *testing.T) {
	b := Body{"at": "2025-03-01T10:00:00+02:00", "bad": "tomorrow", "num": 5, "null": nil, "blank": " "}

	got, err := b.Time("at")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01T08:00:00Z", got.Format(time.RFC3339))

	for _, k := range []string{"missing", "null", "blank"} {
		got, err = b.Time(k)
		assert.NoError(t, err, k)
		assert.Nil(t, got, k)
	}
	for _, k := range []string{"bad", "num"} {
		_, err = b.Time(k)
		assert.Error(t, err, k)
	}
}

func TestQueryBool(t *testing.T) {
	for raw, want := range map[string]bool{"true": true, "1": true, "false": false, "": false, "yes": false} {
		req := httptest.NewRequest(http.MethodGet, "/?upcoming="+raw, nil)
		assert.Equal(t, want, QueryBool(req, "upcoming"), raw)
	}
}
