package component

import (
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

type named string

func (n named) Name() string { return string(n) }
func (n named) Init(*Deps) error { return nil }
func (n named) Routes() chi.Router { return chi.NewRouter() }

func withEmptyRegistry(t *testing.T) {
	t.Helper()
	mu.Lock()
	saved := registry
	registry = map[string]Component{}
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		registry = saved
		mu.Unlock()
	})
}

func TestAllSorted(t *testing.T) {
	withEmptyRegistry(t)
	Register(named("visits"))
	Register(named("blog"))
	Register(named("events"))

	var got []string
	for _, c := range All() {
		got = append(got, c.Name())
	}
	assert.Equal(t, []string{"blog", "events", "visits"}, got)
}

func TestRegisterRejects(t *testing.T) {
	withEmptyRegistry(t)
	Register(named("blog"))

	assert.Panics(t, func() { Register(named("blog")) })
	assert.Panics(t, func() { Register(named("")) })
	assert.Panics(t, func() { Register(named("a/b")) })
}

func TestFill(t *testing.T) {
	d := (&Deps{}).Fill()
	assert.NotNil(t, d.Log)
	assert.NotNil(t, d.Now)
	assert.NotNil(t, d.Admin)
}
