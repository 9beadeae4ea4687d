package registry

import (
	"maps"
	"slices"
	"sync"

	"github.com/kbukum/modelgate/errors"
	"github.com/kbukum/modelgate/model"
)

// Registry resolves model names to adapters. It holds non-owning references;
// adapters are constructed and closed by their creator.
type Registry struct {
	mu     sync.RWMutex
	models map[string]model.Model
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{models: make(map[string]model.Model)}
}

// Register adds m under m.Name(). It fails with DUPLICATE_MODEL when the name
// is taken, keeping the first registration.
func (r *Registry) Register(m model.Model) error {
	if m == nil {
		return errors.InvalidParameter("model", "must not be nil")
	}
	name := m.Name()
	if name == "" {
		return errors.InvalidParameter("name", "must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.models[name]; exists {
		return errors.DuplicateModel(name)
	}
	r.models[name] = m
	return nil
}

// MustRegister is Register that panics on error, for static wiring.
func (r *Registry) MustRegister(models ...model.Model) {
	for _, m := range models {
		if err := r.Register(m); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the adapter registered under the exact, case-sensitive name.
func (r *Registry) Lookup(name string) (model.Model, error) {
	r.mu.RLock()
	m, ok := r.models[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.ModelNotFound(name)
	}
	return m, nil
}

// All returns a snapshot of the name to adapter mapping. Later registrations
// are not reflected in it.
func (r *Registry) All() map[string]model.Model {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.models)
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.models))
}

// Len returns the number of registered adapters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.models)
}
