// Package runner binds input fields to a calculator's contract and drives
// the validate -> compute -> explain -> publish cycle. Each panel is a
// small state machine; computation is only ever triggered by an explicit
// Calculate call, never by a field edit.
package runner

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"costcalc/core/bus"
	"costcalc/core/pricing"
	"costcalc/core/record"
	"costcalc/core/registry"
	"costcalc/core/types"
	"costcalc/core/validation"
	"costcalc/internal/errors"
	"costcalc/internal/logging"
)

// State is a panel's position in its lifecycle
type State string

const (
	// StateIdle means no validation or computation is in flight
	StateIdle State = "idle"

	// StateInvalid means the last Calculate failed validation
	StateInvalid State = "invalid"

	// StateComputed means the panel holds a successful calculation
	StateComputed State = "computed"
)

// Runner owns the shared collaborators (registry, pricing, bus, store) and
// the page-level record slots. All dependencies are injected; nothing here
// is an ambient global.
type Runner struct {
	mu         sync.Mutex
	registry   *registry.Registry
	resolver   *pricing.Resolver
	bus        *bus.Bus
	store      *record.Store
	lastByType map[string]*types.CalculationRecord
	mostRecent *types.CalculationRecord
	logger     *zap.Logger
}

// New creates a runner
func New(reg *registry.Registry, resolver *pricing.Resolver, eventBus *bus.Bus, store *record.Store) *Runner {
	return &Runner{
		registry:   reg,
		resolver:   resolver,
		bus:        eventBus,
		store:      store,
		lastByType: make(map[string]*types.CalculationRecord),
		logger:     logging.Logger,
	}
}

// Registry exposes the registry for read-only listing
func (r *Runner) Registry() *registry.Registry { return r.registry }

// Resolver exposes the pricing resolver
func (r *Runner) Resolver() *pricing.Resolver { return r.resolver }

// Store exposes the preference/history store
func (r *Runner) Store() *record.Store { return r.store }

// LastCalculation returns the most recent record for a calculator type
func (r *Runner) LastCalculation(calcType string) *types.CalculationRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastByType[calcType]
}

// MostRecent returns the most recent record of any type
func (r *Runner) MostRecent() *types.CalculationRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mostRecent
}

// NewPanel creates a panel bound to a calculator. The region field is
// seeded from the persisted preference.
func (r *Runner) NewPanel(key string) (*Panel, error) {
	def, ok := r.registry.Get(key)
	if !ok {
		return nil, errors.NotFound("calculator", key)
	}

	p := &Panel{
		runner:    r,
		def:       def,
		key:       key,
		state:     StateIdle,
		fields:    make(map[string]string),
		fieldErrs: make(map[string]string),
	}
	if region := r.store.Preferences().Region; region != "" {
		p.fields["region"] = region
	}
	return p, nil
}

// Panel is the per-calculator state machine:
// Idle -> (Invalid | Computed) -> Idle on the next edit or reset.
type Panel struct {
	mu        sync.Mutex
	runner    *Runner
	def       registry.Definition
	key       string
	state     State
	fields    map[string]string
	fieldErrs map[string]string
	summary   map[string]string
	last      *types.CalculationRecord
	explained string
}

// Key returns the bound calculator key
func (p *Panel) Key() string { return p.key }

// State returns the current lifecycle state
func (p *Panel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// SetField records a field edit and revalidates only that field.
// Any edit returns the panel to Idle; previous results stay visible to the
// caller via Record until Reset or the next Calculate.
func (p *Panel) SetField(name, value string) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.fields[name] = value
	p.state = StateIdle
	p.summary = nil

	msg := validation.ValidateField(name, value, p.def.Schema())
	if msg == "" {
		delete(p.fieldErrs, name)
	} else {
		p.fieldErrs[name] = msg
	}
	return msg
}

// FieldError returns the inline error for a field, if any
func (p *Panel) FieldError(name string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fieldErrs[name]
}

// ErrorSummary returns the error summary from the last failed Calculate
func (p *Panel) ErrorSummary() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.summary
}

// CanCalculate reports whether the Calculate action is enabled: every
// required field present and no field failing validation.
func (p *Panel) CanCalculate() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.canCalculateLocked()
}

func (p *Panel) canCalculateLocked() bool {
	if len(p.fieldErrs) > 0 {
		return false
	}
	result := validation.Validate(types.RawInputs(p.fields), p.def.Schema())
	return result.Valid
}

// Calculate runs the full cycle: gather inputs, compute through the
// registry, store the record, and publish the computed event. A disabled
// panel (missing required fields or failing validation) refuses and
// publishes nothing, even when force-invoked.
func (p *Panel) Calculate() (*types.CalculationRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.canCalculateLocked() {
		result := validation.Validate(types.RawInputs(p.fields), p.def.Schema())
		p.state = StateInvalid
		p.summary = result.Errors
		return nil, errors.Validation(result.Errors)
	}

	inputs := types.RawInputs(p.fields).Clone()
	comp := p.runner.registry.Compute(p.key, inputs)
	if comp == nil {
		// The formula code failed; the registry already logged the cause.
		p.state = StateInvalid
		return nil, errors.Compute(p.key, nil)
	}
	if comp.Failed() {
		p.state = StateInvalid
		p.summary = comp.Errors
		return nil, errors.Validation(comp.Errors)
	}

	explanation := p.runner.registry.Explain(p.key, comp)
	rec := types.NewRecord(p.def.Title(), comp, explanation)

	p.last = rec
	p.explained = explanation
	p.state = StateComputed
	p.summary = nil

	p.runner.mu.Lock()
	p.runner.lastByType[p.key] = rec
	p.runner.mostRecent = rec
	p.runner.mu.Unlock()

	p.runner.store.Append(rec)

	p.runner.bus.Publish(bus.TopicComputed, &types.ComputedEvent{
		Calculator: p.key,
		Inputs:     comp.Inputs,
		Results:    comp.Results,
		RecordID:   rec.ID,
	})

	p.runner.logger.Info("calculation completed",
		zap.String("calculator", p.key),
		zap.String("record", rec.ID))

	return rec, nil
}

// Record returns the panel's last successful calculation
func (p *Panel) Record() *types.CalculationRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Explanation returns the "show your math" text for the last calculation
func (p *Panel) Explanation() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.explained
}

// Reset clears validation state and results, returning the panel to Idle.
// The region field survives, mirroring the persisted preference.
func (p *Panel) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	region := p.fields["region"]
	p.fields = make(map[string]string)
	if region != "" {
		p.fields["region"] = region
	}
	p.fieldErrs = make(map[string]string)
	p.summary = nil
	p.last = nil
	p.explained = ""
	p.state = StateIdle
}

// SetRegion persists the chosen region and requests a fresh pricing
// snapshot. This is the only place a panel may trigger pricing I/O.
func (p *Panel) SetRegion(ctx context.Context, region string) {
	normalized := pricing.NormalizeRegion(region)

	p.mu.Lock()
	p.fields["region"] = normalized
	p.state = StateIdle
	p.mu.Unlock()

	p.runner.store.SetRegion(normalized)
	p.runner.resolver.GetPricing(ctx, p.key, normalized)
}
