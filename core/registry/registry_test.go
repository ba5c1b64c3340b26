package registry

import (
	"testing"

	"costcalc/core/types"
	"costcalc/core/validation"
)

// stubCalc is a minimal calculator for registry behavior tests
type stubCalc struct {
	key     string
	compute func(types.RawInputs) *types.Computation
	explain func(*types.Computation) string
}

func (s *stubCalc) Key() string   { return s.key }
func (s *stubCalc) Title() string { return "Stub" }
func (s *stubCalc) Schema() validation.Schema {
	return validation.Schema{{Name: "x", Type: validation.Number}}
}
func (s *stubCalc) Compute(inputs types.RawInputs) *types.Computation {
	return s.compute(inputs)
}
func (s *stubCalc) Explain(comp *types.Computation) string {
	if s.explain != nil {
		return s.explain(comp)
	}
	return "stub explanation"
}

func okCalc(key string) *stubCalc {
	return &stubCalc{
		key: key,
		compute: func(inputs types.RawInputs) *types.Computation {
			return &types.Computation{Calculator: key, Inputs: inputs}
		},
	}
}

func TestRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(okCalc("concrete"))

	if _, ok := r.Get("concrete"); !ok {
		t.Fatal("registered calculator not found")
	}
	if _, ok := r.Get("framing"); ok {
		t.Fatal("unregistered calculator should not be found")
	}
}

func TestRegisterLastWriteWins(t *testing.T) {
	r := NewRegistry()

	first := okCalc("concrete")
	second := okCalc("concrete")
	r.Register(first)
	r.Register(second)

	got, _ := r.Get("concrete")
	if got != Definition(second) {
		t.Error("re-registration must silently replace the previous implementation")
	}
	if len(r.Keys()) != 1 {
		t.Errorf("duplicate registration must not duplicate keys, got %v", r.Keys())
	}
}

func TestListPreservesRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(okCalc("concrete"))
	r.Register(okCalc("framing"))
	r.Register(okCalc("paint"))

	keys := r.Keys()
	want := []string{"concrete", "framing", "paint"}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
	}
}

func TestComputeUnknownKeyReturnsNil(t *testing.T) {
	r := NewRegistry()

	comp := r.Compute("nonexistent", types.RawInputs{})
	if comp != nil {
		t.Error("unknown calculator must return nil, not panic")
	}
}

func TestComputePanicRecovered(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubCalc{
		key: "buggy",
		compute: func(types.RawInputs) *types.Computation {
			panic("formula divided by zero")
		},
	})

	comp := r.Compute("buggy", types.RawInputs{"x": "1"})
	if comp != nil {
		t.Error("a panicking calculator must be converted to a nil result")
	}
}

func TestExplainPanicRecovered(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubCalc{
		key:     "buggy",
		compute: func(inputs types.RawInputs) *types.Computation { return &types.Computation{} },
		explain: func(*types.Computation) string { panic("bad template") },
	})

	if got := r.Explain("buggy", &types.Computation{}); got != "" {
		t.Errorf("a panicking explain must return empty, got %q", got)
	}
}

func TestExplainNilComputation(t *testing.T) {
	r := NewRegistry()
	r.Register(okCalc("concrete"))

	if got := r.Explain("concrete", nil); got != "" {
		t.Errorf("nil computation must explain to empty, got %q", got)
	}
}
