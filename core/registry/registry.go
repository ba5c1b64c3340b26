// Package registry provides the calculator registration and dispatch layer.
// Calculators are modular plugins registered under a string key; dispatch
// shields the caller from any panic inside a calculator's formula code so a
// single buggy module cannot take down the process.
package registry

import (
	"sync"

	"go.uber.org/zap"

	"costcalc/core/types"
	"costcalc/core/validation"
	"costcalc/internal/logging"
)

// Definition is the contract every calculator module must satisfy
type Definition interface {
	// Key returns the stable string identifier (e.g. "concrete")
	Key() string

	// Title returns a human-readable name
	Title() string

	// Schema returns the declarative input schema
	Schema() validation.Schema

	// Compute validates and computes; it returns results or field errors,
	// never both
	Compute(inputs types.RawInputs) *types.Computation

	// Explain re-derives a step-by-step breakdown from a computation.
	// It must reference only values present in the computation itself.
	Explain(comp *types.Computation) string
}

// FieldLister is an optional Definition capability declaring every input
// field the calculator consumes, so registration can flag fields that would
// silently skip validation.
type FieldLister interface {
	ConsumedFields() []string
}

// Registry holds calculator definitions keyed by calculator key.
// Construct explicit instances and pass them to the runner; there is no
// ambient global.
type Registry struct {
	mu     sync.RWMutex
	defs   map[string]Definition
	order  []string
	logger *zap.Logger
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		defs:   make(map[string]Definition),
		logger: logging.Logger,
	}
}

// Register adds a calculator definition. Registration is last-write-wins:
// re-registering a key silently replaces the previous implementation.
func (r *Registry) Register(def Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := def.Key()
	if _, exists := r.defs[key]; exists {
		r.logger.Debug("calculator re-registered", zap.String("calculator", key))
	} else {
		r.order = append(r.order, key)
	}
	r.defs[key] = def

	// A consumed field with no schema entry is never validated.
	if lister, ok := def.(FieldLister); ok {
		schema := def.Schema()
		for _, field := range lister.ConsumedFields() {
			if _, declared := schema.Find(field); !declared {
				r.logger.Warn("calculator consumes an undeclared field; it will not be validated",
					zap.String("calculator", key),
					zap.String("field", field))
			}
		}
	}
}

// Get returns a definition by key
func (r *Registry) Get(key string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[key]
	return def, ok
}

// List returns all registered definitions in registration order
func (r *Registry) List() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]Definition, 0, len(r.order))
	for _, key := range r.order {
		defs = append(defs, r.defs[key])
	}
	return defs
}

// Keys returns all registered keys in registration order
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, len(r.order))
	copy(keys, r.order)
	return keys
}

// Compute dispatches to a calculator's Compute. An unknown key logs a
// warning and returns nil. A panic inside the calculator is recovered,
// logged, and converted to nil.
func (r *Registry) Compute(key string, inputs types.RawInputs) (comp *types.Computation) {
	def, ok := r.Get(key)
	if !ok {
		r.logger.Warn("calculator not found", zap.String("calculator", key))
		return nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("calculator panicked during compute",
				zap.String("calculator", key),
				zap.Any("panic", rec))
			comp = nil
		}
	}()

	return def.Compute(inputs)
}

// Explain dispatches to a calculator's Explain with the same shielding as
// Compute. Returns "" for unknown keys, nil computations, or panics.
func (r *Registry) Explain(key string, comp *types.Computation) (text string) {
	if comp == nil {
		return ""
	}

	def, ok := r.Get(key)
	if !ok {
		r.logger.Warn("calculator not found", zap.String("calculator", key))
		return ""
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("calculator panicked during explain",
				zap.String("calculator", key),
				zap.Any("panic", rec))
			text = ""
		}
	}()

	return def.Explain(comp)
}
