package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNormalizeRegion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Midwest", "midwest"},
		{"  NATIONAL  ", "national"},
		{"", "national"},
		{"Pacific North West", "pacific_north_west"},
	}

	for _, tt := range tests {
		if got := NormalizeRegion(tt.in); got != tt.want {
			t.Errorf("NormalizeRegion(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUnknownRegionFallsBack(t *testing.T) {
	r := NewResolver()

	snap := r.GetPricingSync("concrete", "atlantis")
	if snap.Region != DefaultRegion {
		t.Errorf("unknown region should resolve to %q, got %q", DefaultRegion, snap.Region)
	}
	if !snap.Multiplier.Equal(decimal.NewFromInt(1)) {
		t.Errorf("unknown region multiplier should be 1, got %s", snap.Multiplier)
	}
}

func TestUnknownCalculatorEmptyData(t *testing.T) {
	r := NewResolver()

	snap := r.GetPricingSync("gold-plating", "national")
	if len(snap.Data) != 0 {
		t.Errorf("unknown calculator should have empty data, got %d entries", len(snap.Data))
	}

	// Callers supply local fallback constants.
	p := snap.Rate("unit_price", decimal.NewFromInt(50))
	if !p.Amount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("fallback rate = %s, want 50", p.Amount)
	}
	if p.Source != SourceFallback {
		t.Errorf("fallback rate source = %s, want %s", p.Source, SourceFallback)
	}
}

func TestSnapshotIdempotence(t *testing.T) {
	r := NewResolver()

	first := r.GetPricingSync("concrete", "midwest")
	second := r.GetPricingSync("concrete", "midwest")
	if first != second {
		t.Error("resolving twice without an override must return the cached snapshot")
	}
}

func TestRegionMultiplierApplied(t *testing.T) {
	r := NewResolver()

	national := r.GetPricingSync("concrete", "national")
	midwest := r.GetPricingSync("concrete", "midwest")

	base := national.Rate("concrete_per_yd3", decimal.Zero).Amount
	adjusted := midwest.Rate("concrete_per_yd3", decimal.Zero).Amount

	want := base.Mul(decimal.NewFromFloat(0.97))
	if !adjusted.Equal(want) {
		t.Errorf("midwest rate = %s, want %s", adjusted, want)
	}
}

func TestPercentNotMultiplied(t *testing.T) {
	r := NewResolver()

	national := r.GetPricingSync("concrete", "national")
	west := r.GetPricingSync("concrete", "west")

	if !national.Percent("tax_pct", decimal.Zero).Amount.Equal(west.Percent("tax_pct", decimal.Zero).Amount) {
		t.Error("percentages must not vary by region multiplier")
	}
}

func TestRegionReplacementRates(t *testing.T) {
	r := NewResolver()

	snap := r.GetPricingSync("concrete", "mountain")

	// mountain replaces delivery_flat with 175 before the multiplier.
	want := decimal.NewFromInt(175).Mul(decimal.NewFromFloat(1.05))
	got := snap.Rate("delivery_flat", decimal.Zero).Amount
	if !got.Equal(want) {
		t.Errorf("mountain delivery_flat = %s, want %s", got, want)
	}
}

func TestOverrideRateTaggedAndInvalidates(t *testing.T) {
	r := NewResolver()

	before := r.GetPricingSync("concrete", "national")
	if before.Rate("concrete_per_yd3", decimal.Zero).Source != SourceTable {
		t.Fatalf("expected table source before override")
	}

	r.OverrideRate("concrete", "concrete_per_yd3", decimal.NewFromInt(160))

	after := r.GetPricingSync("concrete", "national")
	if after == before {
		t.Fatal("override must invalidate the snapshot cache")
	}
	p := after.Rate("concrete_per_yd3", decimal.Zero)
	if !p.Amount.Equal(decimal.NewFromInt(160)) {
		t.Errorf("override rate = %s, want 160", p.Amount)
	}
	if p.Source != SourceOverride {
		t.Errorf("override source = %s, want %s", p.Source, SourceOverride)
	}

	r.RestoreDefaults()
	restored := r.GetPricingSync("concrete", "national")
	if restored.Rate("concrete_per_yd3", decimal.Zero).Source != SourceTable {
		t.Error("RestoreDefaults must clear overrides")
	}
}

func TestRemoteFetchSuccess(t *testing.T) {
	remote := `{
		"version": "remote-1",
		"calculators": {"concrete": {"materials": {"concrete_per_yd3": 200}}},
		"regions": {"national": 1}
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(remote))
	}))
	defer srv.Close()

	r := NewResolver(WithURL(srv.URL))
	snap := r.GetPricing(context.Background(), "concrete", "national")

	if snap.TableSource != SourceRemote {
		t.Errorf("table source = %s, want %s", snap.TableSource, SourceRemote)
	}
	got := snap.Rate("concrete_per_yd3", decimal.Zero).Amount
	if !got.Equal(decimal.NewFromInt(200)) {
		t.Errorf("remote rate = %s, want 200", got)
	}
	if r.TableVersion() != "remote-1" {
		t.Errorf("table version = %q, want remote-1", r.TableVersion())
	}
}

func TestRemoteFetchFailuresFallBack(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-200",
			handler: func(w http.ResponseWriter, req *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "malformed JSON",
			handler: func(w http.ResponseWriter, req *http.Request) {
				w.Write([]byte("{not json"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			r := NewResolver(WithURL(srv.URL))
			snap := r.GetPricing(context.Background(), "concrete", "national")

			if snap.TableSource != SourceEmbedded {
				t.Errorf("table source = %s, want embedded fallback", snap.TableSource)
			}
			if len(snap.Data) == 0 {
				t.Error("embedded defaults must still answer")
			}
		})
	}
}

func TestRemoteFetchAttemptedOnce(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewResolver(WithURL(srv.URL))
	r.GetPricing(context.Background(), "concrete", "national")
	r.GetPricing(context.Background(), "concrete", "midwest")
	r.GetPricing(context.Background(), "paint", "west")

	if calls != 1 {
		t.Errorf("remote fetch attempted %d times, want exactly 1", calls)
	}
}

func TestEmbeddedTableParses(t *testing.T) {
	table := EmbeddedTable()
	for _, key := range []string{"concrete", "framing", "paint"} {
		if _, ok := table.Calculators[key]; !ok {
			t.Errorf("embedded table missing calculator %q", key)
		}
	}
	if _, ok := table.Regions[DefaultRegion]; !ok {
		t.Errorf("embedded table missing %q region", DefaultRegion)
	}
}
