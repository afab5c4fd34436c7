package chain

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cwbudde/algo-calcium/calcium"
	"github.com/cwbudde/algo-calcium/dsp/core"
)

// Factory builds one transformer for a chain step.
type Factory func(p Params, proc core.ProcessorConfig) (calcium.Transformer, error)

// Registry maps step type names to their factories.
type Registry struct {
	factories map[string]Factory
}

var errDuplicateType = errors.New("duplicate step type")

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory for the given step type.
func (r *Registry) Register(stepType string, factory Factory) error {
	if stepType == "" {
		return errors.New("empty step type")
	}

	if factory == nil {
		return errors.New("nil factory")
	}

	if _, exists := r.factories[stepType]; exists {
		return fmt.Errorf("%w: %s", errDuplicateType, stepType)
	}

	r.factories[stepType] = factory

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(stepType string, factory Factory) {
	if err := r.Register(stepType, factory); err != nil {
		panic("chain registry: " + err.Error())
	}
}

// Lookup returns the factory for the given step type, or nil.
func (r *Registry) Lookup(stepType string) Factory {
	return r.factories[stepType]
}

// Types returns the registered step types in sorted order.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// build instantiates the transformer of a step.
func (r *Registry) build(p Params, proc core.ProcessorConfig) (calcium.Transformer, error) {
	factory := r.Lookup(p.Type)
	if factory == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, p.Type)
	}
	return factory(p, proc)
}
