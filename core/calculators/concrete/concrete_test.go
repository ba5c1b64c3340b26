package concrete

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"costcalc/core/pricing"
	"costcalc/core/types"
)

func newCalc() *Calculator {
	return New(pricing.NewResolver())
}

func slabInputs() types.RawInputs {
	return types.RawInputs{
		"length_ft":    "20",
		"width_ft":     "10",
		"thickness_in": "4",
		"pour_type":    "slab",
		"region":       "national",
	}
}

func TestComputeWorkedExample(t *testing.T) {
	// 20 ft x 10 ft x 4 in, national region, slab pour (5% waste):
	// 66.67 ft3 -> 2.47 yd3 -> 2.59 yd3 ordered; $145/yd3 -> ~$376 material.
	comp := newCalc().Compute(slabInputs())
	if comp.Failed() {
		t.Fatalf("unexpected errors: %v", comp.Errors)
	}

	checks := map[string]string{
		"area_sqft":    "200",
		"volume_ft3":   "66.67",
		"volume_yd3":   "2.47",
		"waste_pct":    "5",
		"adjusted_yd3": "2.59",
	}
	for key, want := range checks {
		got, ok := comp.Results.Get(key)
		if !ok {
			t.Fatalf("missing result %q", key)
		}
		if got.String() != want {
			t.Errorf("%s = %s, want %s", key, got, want)
		}
	}

	material := comp.Results.MustGet("material_cost")
	if material.String() != "375.93" {
		t.Errorf("material_cost = %s, want 375.93", material)
	}
}

func TestComputeTotalIsDocumentedSum(t *testing.T) {
	comp := newCalc().Compute(slabInputs())
	if comp.Failed() {
		t.Fatalf("unexpected errors: %v", comp.Errors)
	}

	res := comp.Results
	sum := res.MustGet("material_cost").
		Add(res.MustGet("labor_cost")).
		Add(res.MustGet("equipment_cost"))
	if !sum.Equal(res.MustGet("subtotal")) {
		t.Errorf("subtotal %s != material+labor+equipment %s", res.MustGet("subtotal"), sum)
	}

	total := res.MustGet("subtotal").
		Add(res.MustGet("markup")).
		Add(res.MustGet("tax"))
	// Components are rounded independently; totals must agree within a cent.
	diff := total.Sub(res.MustGet("total")).Abs()
	if diff.GreaterThan(decimal.NewFromFloat(0.02)) {
		t.Errorf("total %s drifts from component sum %s", res.MustGet("total"), total)
	}
}

func TestComputeIsPure(t *testing.T) {
	calc := newCalc()
	first := calc.Compute(slabInputs())
	second := calc.Compute(slabInputs())

	if len(first.Results) != len(second.Results) {
		t.Fatal("result shapes differ between identical computes")
	}
	for i := range first.Results {
		a, b := first.Results[i], second.Results[i]
		if a.Key != b.Key || !a.Value.Equal(b.Value) {
			t.Errorf("result %s: %s != %s", a.Key, a.Value, b.Value)
		}
	}
}

func TestComputeInvalidInputsNoPartialResults(t *testing.T) {
	inputs := slabInputs()
	inputs["thickness_in"] = "not a number"

	comp := newCalc().Compute(inputs)
	if !comp.Failed() {
		t.Fatal("expected failure")
	}
	if len(comp.Results) != 0 {
		t.Error("invalid input must never partially compute")
	}
	if comp.Errors["thickness_in"] == "" {
		t.Errorf("expected a thickness error, got %v", comp.Errors)
	}
}

func TestComputeDefaultsSubstituted(t *testing.T) {
	comp := newCalc().Compute(types.RawInputs{
		"length_ft":    "20",
		"width_ft":     "10",
		"thickness_in": "4",
	})
	if comp.Failed() {
		t.Fatalf("unexpected errors: %v", comp.Errors)
	}

	if comp.Inputs["pour_type"] != "slab" {
		t.Errorf("pour_type default = %q, want slab", comp.Inputs["pour_type"])
	}
	if comp.Inputs["region"] != "national" {
		t.Errorf("region default = %q, want national", comp.Inputs["region"])
	}
	if comp.Inputs["include_markup"] != "true" || comp.Inputs["include_tax"] != "true" {
		t.Error("markup and tax default on")
	}
}

func TestComputeWasteByPourType(t *testing.T) {
	calc := newCalc()

	tests := []struct {
		pourType string
		want     string
	}{
		{"slab", "5"},
		{"footing", "10"},
		{"wall", "8"},
	}
	for _, tt := range tests {
		inputs := slabInputs()
		inputs["pour_type"] = tt.pourType
		comp := calc.Compute(inputs)
		if comp.Failed() {
			t.Fatalf("%s: unexpected errors: %v", tt.pourType, comp.Errors)
		}
		if got := comp.Results.MustGet("waste_pct").String(); got != tt.want {
			t.Errorf("%s waste = %s, want %s", tt.pourType, got, tt.want)
		}
	}
}

func TestComputeTogglesExcludeComponents(t *testing.T) {
	inputs := slabInputs()
	inputs["include_markup"] = "false"
	inputs["include_tax"] = "false"

	comp := newCalc().Compute(inputs)
	if comp.Failed() {
		t.Fatalf("unexpected errors: %v", comp.Errors)
	}

	if !comp.Results.MustGet("markup").IsZero() {
		t.Error("markup toggle off must zero markup")
	}
	if !comp.Results.MustGet("tax").IsZero() {
		t.Error("tax toggle off must zero tax")
	}
	if !comp.Results.MustGet("total").Equal(comp.Results.MustGet("subtotal")) {
		t.Error("with both toggles off, total equals subtotal")
	}
}

func TestComputeOverridePriceTakesPrecedence(t *testing.T) {
	inputs := slabInputs()
	inputs["override_price"] = "200"

	comp := newCalc().Compute(inputs)
	if comp.Failed() {
		t.Fatalf("unexpected errors: %v", comp.Errors)
	}

	rate := comp.Pricing.Rates["concrete_per_yd3"]
	if !rate.Amount.Equal(decimal.NewFromInt(200)) {
		t.Errorf("override rate = %s, want 200", rate.Amount)
	}
	if rate.Source != string(pricing.SourceOverride) {
		t.Errorf("rate source = %s, want override", rate.Source)
	}

	// Zero override is ignored.
	inputs["override_price"] = "0"
	comp = newCalc().Compute(inputs)
	if comp.Pricing.Rates["concrete_per_yd3"].Source != string(pricing.SourceTable) {
		t.Error("zero override must fall back to the table value")
	}
}

func TestComputeRegionMultiplier(t *testing.T) {
	calc := newCalc()

	national := calc.Compute(slabInputs())
	inputs := slabInputs()
	inputs["region"] = "midwest"
	midwest := calc.Compute(inputs)

	nat := national.Results.MustGet("material_cost")
	mid := midwest.Results.MustGet("material_cost")
	if !mid.LessThan(nat) {
		t.Errorf("midwest (0.97x) material %s should be below national %s", mid, nat)
	}
}

func TestExplainReferencesOnlyComputedValues(t *testing.T) {
	calc := newCalc()
	comp := calc.Compute(slabInputs())
	text := calc.Explain(comp)

	if text == "" {
		t.Fatal("expected explanation text")
	}

	// Key computed figures must appear verbatim.
	for _, want := range []string{"66.67", "2.47", "2.59", "375.93", "national"} {
		if !strings.Contains(text, want) {
			t.Errorf("explanation missing %q:\n%s", want, text)
		}
	}

	// Explain is reproducible purely from the computation object.
	if again := calc.Explain(comp); again != text {
		t.Error("explain must be deterministic for the same computation")
	}
}

func TestExplainSurfacesOverrideSource(t *testing.T) {
	calc := newCalc()
	inputs := slabInputs()
	inputs["override_price"] = "199.99"

	text := calc.Explain(calc.Compute(inputs))
	if !strings.Contains(text, "override") {
		t.Error("an active override must be visible in the math output")
	}
}

func TestExplainFailedComputationEmpty(t *testing.T) {
	calc := newCalc()
	comp := calc.Compute(types.RawInputs{})
	if got := calc.Explain(comp); got != "" {
		t.Errorf("failed computation must explain to empty, got %q", got)
	}
}
