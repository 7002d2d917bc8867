// internal/api/request.go
//
// Request decoding helpers.  Each helper that can fail writes the error
// response itself and reports ok=false; the handler just returns.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// DefaultMaxBody caps JSON request bodies.
const DefaultMaxBody int64 = 1 << 20

// Limit bounds for list endpoints.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Body is a decoded JSON object.  Values are whatever encoding/json
// produced; the sanitizer turns them into strings.
type Body map[string]any

// Has reports whether key was sent, even as null.
func (b Body) Has(key string) bool {
	_, ok := b[key]
	return ok
}

// Present reports whether key was sent with a non-null value.
func (b Body) Present(key string) bool {
	v, ok := b[key]
	return ok && v != nil
}

// Time parses an RFC 3339 timestamp field.  Absent or null gives
// (nil, nil).
func (b Body) Time(key string) (*time.Time, error) {
	v, ok := b[key]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%s must be an RFC 3339 timestamp", key)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("%s must be an RFC 3339 timestamp", key)
	}
	t = t.UTC()
	return &t, nil
}

// DecodeBody reads a JSON object of at most max bytes.
func DecodeBody(w http.ResponseWriter, r *http.Request, max int64) (Body, bool) {
	if max <= 0 {
		max = DefaultMaxBody
	}
	r.Body = http.MaxBytesReader(w, r.Body, max)

	var b Body
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&b); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			WriteError(w, http.StatusRequestEntityTooLarge, Error{Error: "Request body too large"})
		case errors.Is(err, io.EOF):
			BadRequest(w, "Request body is required", nil)
		default:
			BadRequest(w, "Invalid JSON body", err.Error())
		}
		return nil, false
	}
	if b == nil {
		BadRequest(w, "Request body must be a JSON object", nil)
		return nil, false
	}
	return b, true
}

// ParseLimit reads ?limit, clamped to [1, MaxLimit].  Missing or
// non-numeric values give DefaultLimit.
func ParseLimit(r *http.Request) int {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return DefaultLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultLimit
	}
	if n < 1 {
		return 1
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

// StatusFilter reads ?status.  "" and "all" mean no filter.  Values
// outside allowed produce a 400.
func StatusFilter(w http.ResponseWriter, r *http.Request, allowed []string) (string, bool) {
	return EnumParam(w, r, "status", allowed)
}

// EnumParam reads a query parameter restricted to allowed.
func EnumParam(w http.ResponseWriter, r *http.Request, name string, allowed []string) (string, bool) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" || v == "all" {
		return "", true
	}
	for _, a := range allowed {
		if v == a {
			return v, true
		}
	}
	BadRequest(w, "Invalid "+name, map[string]any{"allowed": allowed})
	return "", false
}

// QueryBool reads a boolean query parameter; anything unparsable is false.
func QueryBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get(name)))
	return err == nil && v
}

// PathID reads the {id} URL parameter and checks it is a UUID.
func PathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		BadRequest(w, "Invalid id", raw)
		return "", false
	}
	return id.String(), true
}
