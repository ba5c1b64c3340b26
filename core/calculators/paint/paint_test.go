package paint

import (
	"strings"
	"testing"

	"costcalc/core/pricing"
	"costcalc/core/types"
)

func newCalc() *Calculator {
	return New(pricing.NewResolver())
}

func roomInputs() types.RawInputs {
	return types.RawInputs{
		"wall_area_sqft": "1000",
		"coats":          "2",
		"surface":        "smooth",
		"doors":          "2",
		"windows":        "4",
		"include_primer": "true",
		"region":         "national",
	}
}

func TestComputeWorkedExample(t *testing.T) {
	// 1000 sq ft less 2 doors (20 each) and 4 windows (15 each) = 900 sq ft.
	// Two coats at 400 sq ft/gal = 5 gal paint; one primer coat = 3 gal.
	comp := newCalc().Compute(roomInputs())
	if comp.Failed() {
		t.Fatalf("unexpected errors: %v", comp.Errors)
	}

	checks := map[string]string{
		"paintable_sqft":    "900",
		"coverage_sqft_gal": "400",
		"paint_gal":         "5",
		"primer_gal":        "3",
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

	// 5 gal x $38 + 3 gal x $24 + $45 supplies = $307
	material := comp.Results.MustGet("material_cost")
	if material.String() != "307" {
		t.Errorf("material_cost = %s, want 307", material)
	}
	// 900 sq ft x 2 coats x $1.10/sq ft = $1980
	labor := comp.Results.MustGet("labor_cost")
	if labor.String() != "1980" {
		t.Errorf("labor_cost = %s, want 1980", labor)
	}
}

func TestComputeCoverageBySurface(t *testing.T) {
	tests := []struct {
		surface      string
		wantCoverage string
	}{
		{"smooth", "400"},
		{"textured", "325"},
		{"rough", "250"},
	}
	for _, tt := range tests {
		inputs := roomInputs()
		inputs["surface"] = tt.surface

		comp := newCalc().Compute(inputs)
		if comp.Failed() {
			t.Fatalf("%s: unexpected errors: %v", tt.surface, comp.Errors)
		}
		if got := comp.Results.MustGet("coverage_sqft_gal").String(); got != tt.wantCoverage {
			t.Errorf("%s: coverage = %s, want %s", tt.surface, got, tt.wantCoverage)
		}
	}
}

func TestComputeOpeningsNeverNegative(t *testing.T) {
	inputs := roomInputs()
	inputs["wall_area_sqft"] = "50"
	inputs["doors"] = "10"

	comp := newCalc().Compute(inputs)
	if comp.Failed() {
		t.Fatalf("unexpected errors: %v", comp.Errors)
	}
	if !comp.Results.MustGet("paintable_sqft").IsZero() {
		t.Error("openings beyond the wall area must clamp paintable area to zero")
	}
}

func TestComputePrimerToggle(t *testing.T) {
	inputs := roomInputs()
	inputs["include_primer"] = "false"

	comp := newCalc().Compute(inputs)
	if comp.Failed() {
		t.Fatalf("unexpected errors: %v", comp.Errors)
	}
	if !comp.Results.MustGet("primer_gal").IsZero() {
		t.Error("primer_gal must be zero without primer")
	}
	if _, ok := comp.Pricing.Rates["primer_per_gal"]; ok {
		t.Error("primer rate must not be reported when unused")
	}
}

func TestComputeDefaultsSubstituted(t *testing.T) {
	comp := newCalc().Compute(types.RawInputs{"wall_area_sqft": "500"})
	if comp.Failed() {
		t.Fatalf("unexpected errors: %v", comp.Errors)
	}
	if comp.Inputs["coats"] != "2" {
		t.Errorf("coats default = %q, want 2", comp.Inputs["coats"])
	}
	if comp.Inputs["surface"] != "smooth" {
		t.Errorf("surface default = %q, want smooth", comp.Inputs["surface"])
	}
	if comp.Inputs["include_primer"] != "false" {
		t.Errorf("include_primer default = %q, want false", comp.Inputs["include_primer"])
	}
}

func TestComputeRegionMultiplierApplied(t *testing.T) {
	national := newCalc().Compute(roomInputs())

	inputs := roomInputs()
	inputs["region"] = "midwest"
	midwest := newCalc().Compute(inputs)

	if national.Failed() || midwest.Failed() {
		t.Fatal("unexpected validation failure")
	}

	natLabor := national.Results.MustGet("labor_cost")
	midLabor := midwest.Results.MustGet("labor_cost")
	if !midLabor.LessThan(natLabor) {
		t.Errorf("midwest labor %s should be below national %s", midLabor, natLabor)
	}
}

func TestComputeTooSmallAreaFails(t *testing.T) {
	comp := newCalc().Compute(types.RawInputs{"wall_area_sqft": "5"})
	if !comp.Failed() {
		t.Fatal("expected failure below minimum area")
	}
	if len(comp.Results) != 0 {
		t.Error("invalid input must never partially compute")
	}
}

func TestExplainShowsFigures(t *testing.T) {
	calc := newCalc()
	comp := calc.Compute(roomInputs())
	if comp.Failed() {
		t.Fatalf("unexpected errors: %v", comp.Errors)
	}

	text := calc.Explain(comp)
	for _, want := range []string{"900", "5 gal paint", "Primer coat: 3 gal", "national"} {
		if !strings.Contains(text, want) {
			t.Errorf("explanation missing %q", want)
		}
	}
}

func TestExplainFailedComputationEmpty(t *testing.T) {
	calc := newCalc()
	comp := calc.Compute(types.RawInputs{})
	if got := calc.Explain(comp); got != "" {
		t.Errorf("expected empty explanation, got %q", got)
	}
}
