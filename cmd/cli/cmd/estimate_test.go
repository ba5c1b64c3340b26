package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"costcalc/core/bus"
	"costcalc/core/calculators"
	"costcalc/core/pricing"
	"costcalc/core/record"
	"costcalc/core/registry"
	"costcalc/core/runner"
)

func newTestRunner(t *testing.T) *runner.Runner {
	t.Helper()

	reg := registry.NewRegistry()
	resolver := pricing.NewResolver()
	calculators.RegisterAll(reg, resolver)
	return runner.New(reg, resolver, bus.New(), record.NewStore(t.TempDir()))
}

func writeProjectFile(t *testing.T, src string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "job.hcl")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("writing project file: %v", err)
	}
	return path
}

func TestEstimateProjectAppliesProjectRegion(t *testing.T) {
	estimateRegion = ""

	path := writeProjectFile(t, `
project {
  region = "midwest"
}

calculation "concrete" {
  inputs = {
    length_ft    = 20
    width_ft     = 10
    thickness_in = 4
  }
}
`)

	records, err := estimateProject(newTestRunner(t), path)
	if err != nil {
		t.Fatalf("estimateProject failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if got := records[0].Inputs["region"]; got != "midwest" {
		t.Errorf("calculation ran with region %q, want midwest", got)
	}
}

func TestEstimateProjectCalculationRegionWins(t *testing.T) {
	estimateRegion = ""

	path := writeProjectFile(t, `
project {
  region = "midwest"
}

calculation "concrete" {
  inputs = {
    length_ft    = 20
    width_ft     = 10
    thickness_in = 4
    region       = "west"
  }
}
`)

	records, err := estimateProject(newTestRunner(t), path)
	if err != nil {
		t.Fatalf("estimateProject failed: %v", err)
	}
	if got := records[0].Inputs["region"]; got != "west" {
		t.Errorf("calculation's own region lost: got %q, want west", got)
	}
}

func TestEstimateProjectRegionFlagWins(t *testing.T) {
	estimateRegion = "south"
	defer func() { estimateRegion = "" }()

	path := writeProjectFile(t, `
project {
  region = "midwest"
}

calculation "concrete" {
  inputs = {
    length_ft    = 20
    width_ft     = 10
    thickness_in = 4
  }
}
`)

	records, err := estimateProject(newTestRunner(t), path)
	if err != nil {
		t.Fatalf("estimateProject failed: %v", err)
	}
	if got := records[0].Inputs["region"]; got != "south" {
		t.Errorf("--region flag lost: got %q, want south", got)
	}
}
