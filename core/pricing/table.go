// Package pricing provides regional pricing resolution.
// A base price table (remote JSON with an embedded fallback) and a region
// multiplier table combine into per-calculator snapshots. Prices are never
// rounded inside this package; rounding happens at the point of use.
package pricing

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

//go:embed pricing.base.json
var embeddedJSON []byte

// DefaultRegion is the fallback region key for unknown or missing regions
const DefaultRegion = "national"

// Source indicates where a price or table came from
type Source string

const (
	// SourceTable means the value came from the loaded base table
	SourceTable Source = "table"

	// SourceFallback means the caller's local fallback constant was used
	SourceFallback Source = "fallback"

	// SourceOverride means the value was explicitly overridden
	SourceOverride Source = "override"

	// SourceEmbedded means the embedded default table is in effect
	SourceEmbedded Source = "embedded"

	// SourceRemote means the remotely fetched table is in effect
	SourceRemote Source = "remote"
)

// CalculatorPricing holds the base rates for one calculator
type CalculatorPricing struct {
	Materials map[string]decimal.Decimal `json:"materials"`
	Labor     map[string]decimal.Decimal `json:"labor"`
	Equipment map[string]decimal.Decimal `json:"equipment"`
	Financial map[string]decimal.Decimal `json:"financial"`
}

// flatten merges the rate groups into one field->amount map.
// Field names are unique within a calculator across groups.
func (p CalculatorPricing) flatten() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, group := range []map[string]decimal.Decimal{p.Materials, p.Labor, p.Equipment, p.Financial} {
		for k, v := range group {
			out[k] = v
		}
	}
	return out
}

// RegionEntry is one region's pricing adjustment.
// Most regions are a bare multiplier; a region may also carry full
// replacement rates for specific calculator fields.
type RegionEntry struct {
	Multiplier decimal.Decimal
	Overrides  map[string]map[string]decimal.Decimal
}

// UnmarshalJSON accepts either a bare number or an object with
// multiplier/overrides keys.
func (e *RegionEntry) UnmarshalJSON(data []byte) error {
	var mult decimal.Decimal
	if err := json.Unmarshal(data, &mult); err == nil {
		e.Multiplier = mult
		return nil
	}

	var obj struct {
		Multiplier decimal.Decimal                       `json:"multiplier"`
		Overrides  map[string]map[string]decimal.Decimal `json:"overrides"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("region entry must be a number or an object: %w", err)
	}
	e.Multiplier = obj.Multiplier
	e.Overrides = obj.Overrides
	return nil
}

// Table is the full pricing dataset: base rates plus region adjustments
type Table struct {
	Version     string                       `json:"version"`
	Calculators map[string]CalculatorPricing `json:"calculators"`
	Regions     map[string]RegionEntry       `json:"regions"`
}

// ParseTable decodes a pricing table from JSON
func ParseTable(data []byte) (*Table, error) {
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	if len(t.Calculators) == 0 {
		return nil, fmt.Errorf("pricing table has no calculator entries")
	}
	return &t, nil
}

// EmbeddedTable returns a fresh copy of the compiled-in default table
func EmbeddedTable() *Table {
	t, err := ParseTable(embeddedJSON)
	if err != nil {
		// The embedded table is part of the build; failing to parse it is a
		// programming error.
		panic(fmt.Sprintf("embedded pricing table invalid: %v", err))
	}
	return t
}

// NormalizeRegion canonicalizes a region argument.
// Unknown handling is the resolver's job; this only normalizes the key form.
func NormalizeRegion(region string) string {
	region = strings.ToLower(strings.TrimSpace(region))
	region = strings.ReplaceAll(region, " ", "_")
	if region == "" {
		return DefaultRegion
	}
	return region
}

// Price is one resolved rate with provenance
type Price struct {
	// Amount is the region-adjusted rate, unrounded
	Amount decimal.Decimal `json:"amount"`

	// Source is where the base value came from
	Source Source `json:"source"`
}

// Snapshot is the resolved pricing for one (calculator, region) pair.
// Data holds region-adjusted rates; Multiplier is retained for explanation.
type Snapshot struct {
	// Calculator is the calculator key
	Calculator string `json:"calculator"`

	// Region is the normalized region key actually used
	Region string `json:"region"`

	// Multiplier is the region cost multiplier
	Multiplier decimal.Decimal `json:"multiplier"`

	// Data maps rate field names to base prices (region replacement rates
	// already applied). Empty when the calculator has no pricing entry;
	// callers must supply local fallback constants through Rate.
	Data map[string]Price `json:"data"`

	// TableSource is where the base table came from (embedded, remote)
	TableSource Source `json:"table_source"`
}

// Rate returns the region-adjusted price for a field: the product of the
// base value and the region multiplier, unrounded. When the table has no
// entry the caller's fallback constant is adjusted instead.
func (s *Snapshot) Rate(field string, fallback decimal.Decimal) Price {
	if p, ok := s.Data[field]; ok {
		return Price{Amount: p.Amount.Mul(s.Multiplier), Source: p.Source}
	}
	return Price{
		Amount: fallback.Mul(s.Multiplier),
		Source: SourceFallback,
	}
}

// Percent returns a rate that is not subject to the region multiplier
// (markup and tax percentages). Falls back to the caller's constant when
// absent.
func (s *Snapshot) Percent(field string, fallback decimal.Decimal) Price {
	if p, ok := s.Data[field]; ok {
		return p
	}
	return Price{Amount: fallback, Source: SourceFallback}
}
