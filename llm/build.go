package llm

import (
	"fmt"

	"github.com/kbukum/modelgate/model"
)

// Registrar is the subset of the model registry used by RegisterAll.
type Registrar interface {
	Register(m model.Model) error
}

// FromConfig builds one adapter per config, failing on the first bad entry.
func FromConfig(cfgs []Config) ([]*Adapter, error) {
	adapters := make([]*Adapter, 0, len(cfgs))
	for i, cfg := range cfgs {
		a, err := New(cfg)
		if err != nil {
			return nil, fmt.Errorf("llm: models[%d] %q: %w", i, cfg.Name, err)
		}
		adapters = append(adapters, a)
	}
	return adapters, nil
}

// RegisterAll registers every adapter with r.
func RegisterAll(r Registrar, adapters []*Adapter) error {
	for _, a := range adapters {
		if err := r.Register(a); err != nil {
			return err
		}
	}
	return nil
}
