// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each resource lives under components/<name> and calls
// component.Register() in an init() function.  The server calls Init(deps)
// on every registered component once at start-up and mounts its Routes()
// at /api/<Name()>.  cmd/web blank-imports the component packages.

package component

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Component contract.
//
// Name() is the URL segment under /api.  Routes() is called after Init
// and should declare CORS, rate limiting, and the admin guard per route,
// e.g:
//
//	r := chi.NewRouter()
//	r.Use(d.CORS(http.MethodGet, http.MethodPost))
//	r.With(d.Limit).Post("/", c.create)
//	r.With(d.Admin).Get("/", c.list)
//	return r
type Component interface {
	Name() string
	Init(*Deps) error
	Routes() chi.Router
}

var (
	mu       sync.RWMutex
	registry = map[string]Component{}
)

// Register is invoked from component init() functions.  Two components
// cannot share a URL segment, so a repeated name panics at start-up.
func Register(c Component) {
	name := c.Name()
	if name == "" || strings.Contains(name, "/") {
		panic(fmt.Sprintf("component: invalid name %q", name))
	}

	mu.Lock()
	defer mu.Unlock()
	if _, dup := registry[name]; dup {
		panic("component: duplicate registration of " + name)
	}
	registry[name] = c
}

// All returns every registered component sorted by name, so mount order
// and start-up logs are stable.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)

	out := make([]Component, len(names))
	for i, n := range names {
		out[i] = registry[n]
	}
	return out
}
