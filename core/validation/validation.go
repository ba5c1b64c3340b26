// Package validation provides the declarative input validation engine.
// A schema maps field names to rule sets; validation produces field errors
// without touching anything outside its inputs. This layer never returns a
// Go error and never panics.
package validation

import (
	"fmt"
	"strconv"
	"strings"

	"costcalc/core/types"
)

// FieldType is the declared type of an input field
type FieldType string

const (
	// Number is a numeric field, optionally bounded by Min/Max
	Number FieldType = "number"

	// Enum is a field restricted to a fixed option set
	Enum FieldType = "enum"

	// Boolean is a true/false field
	Boolean FieldType = "boolean"
)

// Field declares the rules for one input field
type Field struct {
	// Name is the input field name
	Name string `json:"name"`

	// Type selects the type-specific rules
	Type FieldType `json:"type"`

	// Label is the human-readable name used in error messages
	Label string `json:"label,omitempty"`

	// Min is the inclusive lower bound for number fields
	Min *float64 `json:"min,omitempty"`

	// Max is the inclusive upper bound for number fields
	Max *float64 `json:"max,omitempty"`

	// Options is the allowed value set for enum fields
	Options []string `json:"options,omitempty"`

	// Required fails validation when the value is absent or blank
	Required bool `json:"required,omitempty"`
}

// Schema is an ordered list of field declarations.
// Declaration order is the evaluation and error-reporting order.
type Schema []Field

// Find returns the declaration for a field name
func (s Schema) Find(name string) (Field, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Names returns the declared field names in order
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Result is the outcome of a validation pass.
// Valid is true iff Errors is empty.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

// Validate applies a schema to raw input values.
// Rules are evaluated per field in declaration order; the first failing rule
// for a field short-circuits the rest, so each field carries at most one
// message. Values for names absent from the schema are ignored.
func Validate(values types.RawInputs, schema Schema) Result {
	errs := make(map[string]string)

	for _, field := range schema {
		raw, present := values[field.Name]
		blank := strings.TrimSpace(raw) == ""

		if !present || blank {
			if field.Required {
				errs[field.Name] = fmt.Sprintf("%s is required", field.displayName())
			}
			// An optional field left blank skips type checks entirely.
			continue
		}

		if msg := field.check(strings.TrimSpace(raw)); msg != "" {
			errs[field.Name] = msg
		}
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

// ValidateField applies a schema to a single field, for incremental
// revalidation on edit. Returns an empty string when the field passes or is
// not declared.
func ValidateField(name, raw string, schema Schema) string {
	field, ok := schema.Find(name)
	if !ok {
		return ""
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		if field.Required {
			return fmt.Sprintf("%s is required", field.displayName())
		}
		return ""
	}

	return field.check(trimmed)
}

// check applies the type-specific rules to a non-blank value
func (f Field) check(raw string) string {
	switch f.Type {
	case Number:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Sprintf("%s must be a number", f.displayName())
		}
		if f.Min != nil && v < *f.Min {
			if f.Max != nil {
				return fmt.Sprintf("%s must be between %s and %s", f.displayName(), trimFloat(*f.Min), trimFloat(*f.Max))
			}
			return fmt.Sprintf("%s must be at least %s", f.displayName(), trimFloat(*f.Min))
		}
		if f.Max != nil && v > *f.Max {
			if f.Min != nil {
				return fmt.Sprintf("%s must be between %s and %s", f.displayName(), trimFloat(*f.Min), trimFloat(*f.Max))
			}
			return fmt.Sprintf("%s must be at most %s", f.displayName(), trimFloat(*f.Max))
		}

	case Enum:
		for _, opt := range f.Options {
			if raw == opt {
				return ""
			}
		}
		return fmt.Sprintf("%s must be one of: %s", f.displayName(), strings.Join(f.Options, ", "))

	case Boolean:
		if raw != "true" && raw != "false" {
			return fmt.Sprintf("%s must be true or false", f.displayName())
		}
	}

	return ""
}

// displayName prefers the label for error messages
func (f Field) displayName() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// trimFloat formats a bound without trailing zeros
func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Float returns a helper pointer for schema bounds
func Float(v float64) *float64 {
	return &v
}
