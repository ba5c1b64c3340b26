// Package types defines the shared data model for the calculation pipeline.
package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RawInputs maps field names to raw form values.
// Values arrive as strings exactly as entered; booleans are "true"/"false".
// Constructed fresh per computation attempt, never persisted except inside
// a CalculationRecord after a successful compute.
type RawInputs map[string]string

// Get returns a raw value and whether it was present
func (r RawInputs) Get(name string) (string, bool) {
	v, ok := r[name]
	return v, ok
}

// Clone returns a shallow copy
func (r RawInputs) Clone() RawInputs {
	out := make(RawInputs, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ResultKind classifies a result line for formatting
type ResultKind string

const (
	// KindQuantity is a physical quantity (volume, area, count)
	KindQuantity ResultKind = "quantity"

	// KindCurrency is a monetary amount
	KindCurrency ResultKind = "currency"

	// KindFactor is a dimensionless multiplier or percentage
	KindFactor ResultKind = "factor"
)

// ResultLine is one externally visible numeric result.
// Value is already rounded to its boundary precision.
type ResultLine struct {
	Key   string          `json:"key"`
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
	Unit  string          `json:"unit,omitempty"`
	Kind  ResultKind      `json:"kind"`
}

// Results is an ordered collection of result lines
type Results []ResultLine

// Get returns the value for a key
func (rs Results) Get(key string) (decimal.Decimal, bool) {
	for _, r := range rs {
		if r.Key == key {
			return r.Value, true
		}
	}
	return decimal.Zero, false
}

// MustGet returns the value for a key or zero
func (rs Results) MustGet(key string) decimal.Decimal {
	v, _ := rs.Get(key)
	return v
}

// Computation is the outcome of one compute call.
// Exactly one of Results or Errors is populated.
type Computation struct {
	// Calculator is the calculator key that produced this computation
	Calculator string `json:"calculator"`

	// Inputs are the normalized inputs (defaults substituted, values coerced
	// back to canonical strings)
	Inputs RawInputs `json:"inputs"`

	// Pricing identifies the pricing snapshot used
	Pricing *PricingInfo `json:"pricing,omitempty"`

	// Results are the computed result lines, in display order
	Results Results `json:"results,omitempty"`

	// Errors maps field names to validation messages
	Errors map[string]string `json:"errors,omitempty"`
}

// Failed reports whether the computation produced errors instead of results
func (c *Computation) Failed() bool {
	return c == nil || len(c.Errors) > 0
}

// PricingInfo is the pricing provenance embedded in a computation
type PricingInfo struct {
	// Region is the normalized region key
	Region string `json:"region"`

	// Multiplier is the region cost multiplier applied
	Multiplier decimal.Decimal `json:"multiplier"`

	// Source indicates where the base table came from
	Source string `json:"source"`

	// Rates are the resolved per-unit rates, tagged with their source
	Rates map[string]RateInfo `json:"rates,omitempty"`
}

// RateInfo is one resolved rate with provenance
type RateInfo struct {
	// Amount is the region-adjusted rate, unrounded
	Amount decimal.Decimal `json:"amount"`

	// Unit is the billing unit (yd3, sqft, hour)
	Unit string `json:"unit,omitempty"`

	// Source is "table", "fallback", or "override"
	Source string `json:"source"`
}

// CalculationRecord is a completed calculation held for export and history.
// Mutated only by replacement, never partially updated.
type CalculationRecord struct {
	// ID uniquely identifies the record
	ID string `json:"id"`

	// Type is the calculator key
	Type string `json:"type"`

	// Title is the calculator's human-readable title
	Title string `json:"title"`

	// Inputs are the normalized inputs that produced the results
	Inputs RawInputs `json:"inputs"`

	// Results are the computed result lines
	Results Results `json:"results"`

	// Explanation is the "show your math" text
	Explanation string `json:"explanation,omitempty"`

	// Timestamp is when the computation succeeded
	Timestamp time.Time `json:"timestamp"`
}

// NewRecord creates a record from a successful computation
func NewRecord(title string, comp *Computation, explanation string) *CalculationRecord {
	return &CalculationRecord{
		ID:          uuid.NewString(),
		Type:        comp.Calculator,
		Title:       title,
		Inputs:      comp.Inputs,
		Results:     comp.Results,
		Explanation: explanation,
		Timestamp:   time.Now().UTC(),
	}
}

// ComputedEvent is the payload published on the event bus after a
// successful compute. Subscribers must not mutate it.
type ComputedEvent struct {
	Calculator string    `json:"calculator"`
	Inputs     RawInputs `json:"inputs"`
	Results    Results   `json:"results"`
	RecordID   string    `json:"record_id"`
}
