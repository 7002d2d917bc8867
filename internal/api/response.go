// internal/api/response.go
//
// JSON envelopes shared by every resource.
//
//	list    {"<plural>": [...], "count": n}
//	single  {"<singular>": {...}}
//	error   {"error": "...", "details": ..., "hint": "...", "code": "..."}
//
// All handlers write through these helpers so the shapes never drift.
package api

import (
	"encoding/json"
	"net/http"
)

// Error is the body of every non-2xx response.
type Error struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
	Code    string `json:"code,omitempty"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes an Error body.
func WriteError(w http.ResponseWriter, status int, e Error) {
	WriteJSON(w, status, e)
}

// List writes {"<plural>": items, "count": len}.
func List[T any](w http.ResponseWriter, plural string, items []T) {
	if items == nil {
		items = []T{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{plural: items, "count": len(items)})
}

// One writes {"<singular>": item} with status.
func One(w http.ResponseWriter, status int, singular string, item any) {
	WriteJSON(w, status, map[string]any{singular: item})
}

// BadRequest writes a 400 with optional details.
func BadRequest(w http.ResponseWriter, msg string, details any) {
	WriteError(w, http.StatusBadRequest, Error{Error: msg, Details: details})
}

// Missing writes the 400 for failed required-field checks.
func Missing(w http.ResponseWriter, fields []string) {
	BadRequest(w, "Missing required fields", fields)
}

// NotFound writes a 404 naming what was missing.
func NotFound(w http.ResponseWriter, what string) {
	WriteError(w, http.StatusNotFound, Error{Error: what + " not found"})
}

// MethodNotAllowed writes the JSON 405 body.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusMethodNotAllowed, Error{Error: "Method " + r.Method + " not allowed"})
}

// RouteNotFound writes the JSON 404 for unknown paths.
func RouteNotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, Error{Error: "No route for " + r.URL.Path})
}
