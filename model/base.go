package model

import (
	"sync"
)

// Base implements the identity and parameter storage parts of Model. Backend
// adapters embed it and add Generate.
//
// The parameter set is only ever replaced as a whole under the lock, so a
// concurrent reader observes either the old or the new value.
type Base struct {
	name        string
	description string

	mu     sync.RWMutex
	params ParameterSet
}

// NewBase creates a Base with the given identity and default parameters.
func NewBase(name, description string, params ParameterSet) *Base {
	return &Base{name: name, description: description, params: params}
}

// Name returns the model name.
func (b *Base) Name() string { return b.name }

// Description returns the model description.
func (b *Base) Description() string { return b.description }

// Parameters returns a snapshot of the stored parameters.
func (b *Base) Parameters() ParameterSet {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.params
}

// SetParameters replaces the stored parameters.
func (b *Base) SetParameters(p ParameterSet) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.params = p
}

// UpdateParameters applies fn to the current parameters and stores the result,
// holding the lock for the whole read-modify-write. If fn fails nothing is
// stored.
func (b *Base) UpdateParameters(fn func(ParameterSet) (ParameterSet, error)) (ParameterSet, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	next, err := fn(b.params)
	if err != nil {
		return b.params, err
	}
	b.params = next
	return next, nil
}

// ParameterUpdater is implemented by models that support atomic
// read-modify-write of their parameters (every model embedding Base).
type ParameterUpdater interface {
	UpdateParameters(fn func(ParameterSet) (ParameterSet, error)) (ParameterSet, error)
}

// UpdateParameters merges override into m's stored parameters. Models that
// embed Base get an atomic read-modify-write; others fall back to a
// snapshot-then-swap.
func UpdateParameters(m Model, override ParameterSet) ParameterSet {
	if u, ok := m.(ParameterUpdater); ok {
		next, _ := u.UpdateParameters(func(cur ParameterSet) (ParameterSet, error) {
			return cur.Merge(override), nil
		})
		return next
	}
	next := m.Parameters().Merge(override)
	m.SetParameters(next)
	return next
}
