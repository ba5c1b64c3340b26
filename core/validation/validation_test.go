package validation

import (
	"testing"

	"costcalc/core/types"
)

var testSchema = Schema{
	{Name: "length_ft", Type: Number, Label: "Length", Min: Float(1), Max: Float(500), Required: true},
	{Name: "width_ft", Type: Number, Label: "Width", Min: Float(1), Max: Float(500), Required: true},
	{Name: "pour_type", Type: Enum, Label: "Pour type", Options: []string{"slab", "footing", "wall"}, Required: true},
	{Name: "include_tax", Type: Boolean, Label: "Include tax"},
	{Name: "override_price", Type: Number, Label: "Override price", Min: Float(0)},
}

func TestValidateAllRulesPass(t *testing.T) {
	values := types.RawInputs{
		"length_ft":   "20",
		"width_ft":    "10",
		"pour_type":   "slab",
		"include_tax": "true",
	}

	result := Validate(values, testSchema)
	if !result.Valid {
		t.Fatalf("expected valid, got errors: %v", result.Errors)
	}
	if len(result.Errors) != 0 {
		t.Errorf("valid result must have empty errors, got %v", result.Errors)
	}
}

func TestValidateFieldRules(t *testing.T) {
	tests := []struct {
		name      string
		values    types.RawInputs
		errField  string
		wantValid bool
	}{
		{
			name:     "missing required field",
			values:   types.RawInputs{"length_ft": "20", "pour_type": "slab"},
			errField: "width_ft",
		},
		{
			name:     "non-numeric number",
			values:   types.RawInputs{"length_ft": "abc", "width_ft": "10", "pour_type": "slab"},
			errField: "length_ft",
		},
		{
			name:     "below minimum",
			values:   types.RawInputs{"length_ft": "0.5", "width_ft": "10", "pour_type": "slab"},
			errField: "length_ft",
		},
		{
			name:     "above maximum",
			values:   types.RawInputs{"length_ft": "501", "width_ft": "10", "pour_type": "slab"},
			errField: "length_ft",
		},
		{
			name:     "enum outside options",
			values:   types.RawInputs{"length_ft": "20", "width_ft": "10", "pour_type": "driveway"},
			errField: "pour_type",
		},
		{
			name:     "boolean literal required",
			values:   types.RawInputs{"length_ft": "20", "width_ft": "10", "pour_type": "slab", "include_tax": "yes"},
			errField: "include_tax",
		},
		{
			name:      "whitespace padding accepted",
			values:    types.RawInputs{"length_ft": " 20 ", "width_ft": "10", "pour_type": "slab"},
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.values, testSchema)
			if result.Valid != tt.wantValid {
				t.Fatalf("Valid = %v, want %v (errors: %v)", result.Valid, tt.wantValid, result.Errors)
			}
			if !tt.wantValid {
				if msg := result.Errors[tt.errField]; msg == "" {
					t.Errorf("expected error for %s, got %v", tt.errField, result.Errors)
				}
			}
		})
	}
}

func TestValidateOneErrorPerField(t *testing.T) {
	// A value that is non-numeric would also be out of range; only the first
	// failing rule reports.
	result := Validate(types.RawInputs{"length_ft": "abc", "width_ft": "10", "pour_type": "slab"}, testSchema)
	if result.Errors["length_ft"] != "Length must be a number" {
		t.Errorf("expected the type error, got %q", result.Errors["length_ft"])
	}
}

func TestValidateBlankOptionalSkipsTypeChecks(t *testing.T) {
	// An optional field left blank never reports "must be a number".
	values := types.RawInputs{
		"length_ft":      "20",
		"width_ft":       "10",
		"pour_type":      "slab",
		"override_price": "",
	}

	result := Validate(values, testSchema)
	if !result.Valid {
		t.Fatalf("blank optional field must not fail validation: %v", result.Errors)
	}
}

func TestValidateUnknownFieldsIgnored(t *testing.T) {
	values := types.RawInputs{
		"length_ft":    "20",
		"width_ft":     "10",
		"pour_type":    "slab",
		"mystery_knob": "not even a number",
	}

	result := Validate(values, testSchema)
	if !result.Valid {
		t.Fatalf("unknown fields must be ignored: %v", result.Errors)
	}
}

func TestValidateFieldIncremental(t *testing.T) {
	if msg := ValidateField("length_ft", "600", testSchema); msg == "" {
		t.Error("expected range error for single-field validation")
	}
	if msg := ValidateField("length_ft", "20", testSchema); msg != "" {
		t.Errorf("expected no error, got %q", msg)
	}
	if msg := ValidateField("not_declared", "whatever", testSchema); msg != "" {
		t.Errorf("undeclared field must validate clean, got %q", msg)
	}
}

func TestValidateMessagesAreActionable(t *testing.T) {
	result := Validate(types.RawInputs{"length_ft": "900", "width_ft": "10", "pour_type": "slab"}, testSchema)
	want := "Length must be between 1 and 500"
	if result.Errors["length_ft"] != want {
		t.Errorf("got %q, want %q", result.Errors["length_ft"], want)
	}
}
