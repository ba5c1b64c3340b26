// Package paint estimates interior/exterior painting cost.
// Cost model: paintable area (walls minus openings) times coats divided by
// coverage, optional primer coat, per-square-foot labor, flat supplies fee.
package paint

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"costcalc/core/pricing"
	"costcalc/core/registry"
	"costcalc/core/types"
	"costcalc/core/units"
	"costcalc/core/validation"
)

// Key is the registry key for this calculator
const Key = "paint"

var (
	fallbackPaintPerGal  = decimal.NewFromInt(40)
	fallbackPrimerPerGal = decimal.NewFromInt(25)
	fallbackSuppliesFlat = decimal.NewFromInt(45)
	fallbackLaborPerSqft = decimal.NewFromFloat(1.20)
	fallbackMarkupPct    = decimal.NewFromInt(10)
	fallbackTaxPct       = decimal.NewFromInt(7)
)

// coverage in sq ft per gallon by surface texture
var coverageBySurface = map[string]float64{
	"smooth":   400,
	"textured": 325,
	"rough":    250,
}

const defaultCoverage = 350

// standard opening deductions in sq ft
const (
	doorAreaSqft   = 20.0
	windowAreaSqft = 15.0
)

var schema = validation.Schema{
	{Name: "wall_area_sqft", Type: validation.Number, Label: "Wall area", Min: validation.Float(10), Max: validation.Float(50000), Required: true},
	{Name: "coats", Type: validation.Number, Label: "Coats", Min: validation.Float(1), Max: validation.Float(4)},
	{Name: "surface", Type: validation.Enum, Label: "Surface texture", Options: []string{"smooth", "textured", "rough"}},
	{Name: "doors", Type: validation.Number, Label: "Doors", Min: validation.Float(0), Max: validation.Float(100)},
	{Name: "windows", Type: validation.Number, Label: "Windows", Min: validation.Float(0), Max: validation.Float(200)},
	{Name: "include_primer", Type: validation.Boolean, Label: "Include primer"},
	{Name: "region", Type: validation.Enum, Label: "Region", Options: []string{"national", "northeast", "midwest", "south", "west", "mountain"}},
	{Name: "include_markup", Type: validation.Boolean, Label: "Include markup"},
	{Name: "include_tax", Type: validation.Boolean, Label: "Include tax"},
}

// Calculator implements registry.Definition for painting
type Calculator struct {
	resolver *pricing.Resolver
}

// New creates the paint calculator
func New(resolver *pricing.Resolver) *Calculator {
	return &Calculator{resolver: resolver}
}

// Register registers the calculator
func Register(reg *registry.Registry, resolver *pricing.Resolver) {
	reg.Register(New(resolver))
}

// Key returns the registry key
func (c *Calculator) Key() string { return Key }

// Title returns the display title
func (c *Calculator) Title() string { return "Paint Cost Estimator" }

// Schema returns the input schema
func (c *Calculator) Schema() validation.Schema { return schema }

// ConsumedFields lists every input field Compute reads
func (c *Calculator) ConsumedFields() []string { return schema.Names() }

// Compute validates inputs and produces the cost breakdown
func (c *Calculator) Compute(raw types.RawInputs) *types.Computation {
	inputs := normalize(raw)

	if result := validation.Validate(inputs, schema); !result.Valid {
		return &types.Computation{Calculator: Key, Inputs: inputs, Errors: result.Errors}
	}

	wallAreaSqft, _ := strconv.ParseFloat(inputs["wall_area_sqft"], 64)
	coats, _ := strconv.ParseFloat(inputs["coats"], 64)
	doors, _ := strconv.ParseFloat(inputs["doors"], 64)
	windows, _ := strconv.ParseFloat(inputs["windows"], 64)

	paintableSqft := wallAreaSqft - doors*doorAreaSqft - windows*windowAreaSqft
	if paintableSqft < 0 {
		paintableSqft = 0
	}

	coverage, ok := coverageBySurface[inputs["surface"]]
	if !ok {
		coverage = defaultCoverage
	}

	paintGal := units.RoundUp(paintableSqft * coats / coverage)
	primerGal := 0.0
	if inputs["include_primer"] == "true" {
		primerGal = units.RoundUp(paintableSqft / coverage)
	}

	snap := c.resolver.GetPricingSync(Key, inputs["region"])
	paintRate := snap.Rate("paint_per_gal", fallbackPaintPerGal)
	primerRate := snap.Rate("primer_per_gal", fallbackPrimerPerGal)
	suppliesRate := snap.Rate("supplies_flat", fallbackSuppliesFlat)
	laborRate := snap.Rate("paint_per_sqft", fallbackLaborPerSqft)
	markupPct := snap.Percent("markup_pct", fallbackMarkupPct)
	taxPct := snap.Percent("tax_pct", fallbackTaxPct)

	material := decimal.NewFromFloat(paintGal).Mul(paintRate.Amount).
		Add(decimal.NewFromFloat(primerGal).Mul(primerRate.Amount)).
		Add(suppliesRate.Amount)
	labor := decimal.NewFromFloat(paintableSqft).Mul(decimal.NewFromFloat(coats)).Mul(laborRate.Amount)

	subtotal := material.Add(labor)
	markup := decimal.Zero
	if inputs["include_markup"] == "true" {
		markup = subtotal.Mul(units.Percent(markupPct.Amount))
	}
	tax := decimal.Zero
	if inputs["include_tax"] == "true" {
		tax = subtotal.Add(markup).Mul(units.Percent(taxPct.Amount))
	}
	total := subtotal.Add(markup).Add(tax)

	rates := map[string]types.RateInfo{
		"paint_per_gal":  {Amount: paintRate.Amount, Unit: "gal", Source: string(paintRate.Source)},
		"supplies_flat":  {Amount: suppliesRate.Amount, Source: string(suppliesRate.Source)},
		"paint_per_sqft": {Amount: laborRate.Amount, Unit: "sqft", Source: string(laborRate.Source)},
		"markup_pct":     {Amount: markupPct.Amount, Unit: "%", Source: string(markupPct.Source)},
		"tax_pct":        {Amount: taxPct.Amount, Unit: "%", Source: string(taxPct.Source)},
	}
	if primerGal > 0 {
		rates["primer_per_gal"] = types.RateInfo{Amount: primerRate.Amount, Unit: "gal", Source: string(primerRate.Source)}
	}

	results := types.Results{
		{Key: "paintable_sqft", Label: "Paintable area", Value: units.Quantity(paintableSqft, 1), Unit: "sq ft", Kind: types.KindQuantity},
		{Key: "coverage_sqft_gal", Label: "Coverage", Value: units.Quantity(coverage, 0), Unit: "sq ft/gal", Kind: types.KindFactor},
		{Key: "paint_gal", Label: "Paint", Value: units.Quantity(paintGal, 0), Unit: "gal", Kind: types.KindQuantity},
		{Key: "primer_gal", Label: "Primer", Value: units.Quantity(primerGal, 0), Unit: "gal", Kind: types.KindQuantity},
		{Key: "material_cost", Label: "Material", Value: units.Currency(material), Unit: "USD", Kind: types.KindCurrency},
		{Key: "labor_cost", Label: "Labor", Value: units.Currency(labor), Unit: "USD", Kind: types.KindCurrency},
		{Key: "subtotal", Label: "Subtotal", Value: units.Currency(subtotal), Unit: "USD", Kind: types.KindCurrency},
		{Key: "markup", Label: "Markup", Value: units.Currency(markup), Unit: "USD", Kind: types.KindCurrency},
		{Key: "tax", Label: "Tax", Value: units.Currency(tax), Unit: "USD", Kind: types.KindCurrency},
		{Key: "total", Label: "Estimated total", Value: units.Currency(total), Unit: "USD", Kind: types.KindCurrency},
	}

	return &types.Computation{
		Calculator: Key,
		Inputs:     inputs,
		Pricing: &types.PricingInfo{
			Region:     snap.Region,
			Multiplier: snap.Multiplier,
			Source:     string(snap.TableSource),
			Rates:      rates,
		},
		Results: results,
	}
}

// Explain re-derives the breakdown from a finished computation
func (c *Calculator) Explain(comp *types.Computation) string {
	if comp == nil || comp.Failed() {
		return ""
	}

	in := comp.Inputs
	res := comp.Results
	var b strings.Builder

	b.WriteString("Paint Estimate - Show Your Math\n")
	b.WriteString("===============================\n\n")

	b.WriteString("Coverage\n")
	fmt.Fprintf(&b, "  Wall area %s sq ft, less %s doors and %s windows = %s sq ft paintable\n",
		in["wall_area_sqft"], in["doors"], in["windows"], res.MustGet("paintable_sqft"))
	fmt.Fprintf(&b, "  %s coats on a %s surface at %s sq ft/gal = %s gal paint\n",
		in["coats"], in["surface"], res.MustGet("coverage_sqft_gal"), res.MustGet("paint_gal"))
	if primer := res.MustGet("primer_gal"); !primer.IsZero() {
		fmt.Fprintf(&b, "  Primer coat: %s gal\n", primer)
	}
	b.WriteString("\nCosts\n")
	paintRate := comp.Pricing.Rates["paint_per_gal"]
	fmt.Fprintf(&b, "  Material (paint at $%s/gal %s, primer, supplies): $%s\n",
		paintRate.Amount.Round(2).StringFixed(2), paintRate.Source, res.MustGet("material_cost"))
	laborRate := comp.Pricing.Rates["paint_per_sqft"]
	fmt.Fprintf(&b, "  Labor: %s sq ft x %s coats x $%s/sq ft = $%s\n",
		res.MustGet("paintable_sqft"), in["coats"],
		laborRate.Amount.Round(2).StringFixed(2), res.MustGet("labor_cost"))
	fmt.Fprintf(&b, "  Subtotal: $%s\n", res.MustGet("subtotal"))
	if in["include_markup"] == "true" {
		fmt.Fprintf(&b, "  Markup (%s%%): $%s\n",
			comp.Pricing.Rates["markup_pct"].Amount, res.MustGet("markup"))
	}
	if in["include_tax"] == "true" {
		fmt.Fprintf(&b, "  Tax (%s%%): $%s\n",
			comp.Pricing.Rates["tax_pct"].Amount, res.MustGet("tax"))
	}
	fmt.Fprintf(&b, "  Estimated total: $%s\n\n", res.MustGet("total"))

	fmt.Fprintf(&b, "Pricing region: %s (multiplier %s, %s table)\n",
		comp.Pricing.Region, comp.Pricing.Multiplier, comp.Pricing.Source)
	b.WriteString("Estimates are planning-grade (ROM), not a contractor quote.\n")

	return b.String()
}

func normalize(raw types.RawInputs) types.RawInputs {
	inputs := make(types.RawInputs, len(raw)+6)
	for k, v := range raw {
		inputs[k] = strings.TrimSpace(v)
	}
	if inputs["coats"] == "" {
		inputs["coats"] = "2"
	}
	if inputs["surface"] == "" {
		inputs["surface"] = "smooth"
	}
	if inputs["doors"] == "" {
		inputs["doors"] = "0"
	}
	if inputs["windows"] == "" {
		inputs["windows"] = "0"
	}
	if inputs["include_primer"] == "" {
		inputs["include_primer"] = "false"
	}
	if inputs["region"] == "" {
		inputs["region"] = pricing.DefaultRegion
	} else {
		inputs["region"] = pricing.NormalizeRegion(inputs["region"])
	}
	if inputs["include_markup"] == "" {
		inputs["include_markup"] = "true"
	}
	if inputs["include_tax"] == "" {
		inputs["include_tax"] = "true"
	}
	return inputs
}
