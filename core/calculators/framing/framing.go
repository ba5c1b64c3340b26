// Package framing estimates wall framing lumber cost.
// Cost model: studs at the chosen on-center spacing plus three plates,
// optional sheathing, per-square-foot labor, waste factor by complexity.
package framing

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
const Key = "framing"

var (
	fallbackStudEach      = decimal.NewFromFloat(3.50)
	fallbackPlatePerFt    = decimal.NewFromFloat(1.50)
	fallbackSheathingEach = decimal.NewFromInt(20)
	fallbackLaborPerSqft  = decimal.NewFromFloat(2.50)
	fallbackDeliveryFlat  = decimal.NewFromInt(75)
	fallbackMarkupPct     = decimal.NewFromInt(12)
	fallbackTaxPct        = decimal.NewFromInt(7)
)

// wasteFactors maps framing complexity to a waste percentage
var wasteFactors = map[string]float64{
	"simple":   10,
	"moderate": 15,
	"complex":  20,
}

const defaultWastePct = 10

// sheathing sheets are 4x8 ft
const sheetAreaSqft = 32.0

var schema = validation.Schema{
	{Name: "wall_length_ft", Type: validation.Number, Label: "Wall length", Min: validation.Float(1), Max: validation.Float(2000), Required: true},
	{Name: "wall_height_ft", Type: validation.Number, Label: "Wall height", Min: validation.Float(4), Max: validation.Float(20), Required: true},
	{Name: "stud_spacing_in", Type: validation.Enum, Label: "Stud spacing", Options: []string{"16", "24"}},
	{Name: "complexity", Type: validation.Enum, Label: "Complexity", Options: []string{"simple", "moderate", "complex"}},
	{Name: "include_sheathing", Type: validation.Boolean, Label: "Include sheathing"},
	{Name: "region", Type: validation.Enum, Label: "Region", Options: []string{"national", "northeast", "midwest", "south", "west", "mountain"}},
	{Name: "include_markup", Type: validation.Boolean, Label: "Include markup"},
	{Name: "include_tax", Type: validation.Boolean, Label: "Include tax"},
}

// Calculator implements registry.Definition for wall framing
type Calculator struct {
	resolver *pricing.Resolver
}

// New creates the framing calculator
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
func (c *Calculator) Title() string { return "Wall Framing Cost Estimator" }

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

	wallLengthFt, _ := strconv.ParseFloat(inputs["wall_length_ft"], 64)
	wallHeightFt, _ := strconv.ParseFloat(inputs["wall_height_ft"], 64)
	spacingIn, _ := strconv.ParseFloat(inputs["stud_spacing_in"], 64)

	// One stud per spacing interval plus one closer, before waste.
	studCount := units.RoundUp(wallLengthFt*units.InchesPerFoot/spacingIn) + 1
	plateLengthFt := wallLengthFt * 3 // two top plates, one bottom
	wallAreaSqft := units.SquareFeet(wallLengthFt, wallHeightFt)

	wastePct, ok := wasteFactors[inputs["complexity"]]
	if !ok {
		wastePct = defaultWastePct
	}
	wasteMult := 1 + wastePct/100
	adjustedStuds := units.RoundUp(studCount * wasteMult)

	sheetCount := 0.0
	if inputs["include_sheathing"] == "true" {
		sheetCount = units.RoundUp(wallAreaSqft / sheetAreaSqft * wasteMult)
	}

	snap := c.resolver.GetPricingSync(Key, inputs["region"])
	studRate := snap.Rate("stud_each", fallbackStudEach)
	plateRate := snap.Rate("plate_per_ft", fallbackPlatePerFt)
	sheetRate := snap.Rate("sheathing_per_sheet", fallbackSheathingEach)
	laborRate := snap.Rate("framing_per_sqft", fallbackLaborPerSqft)
	deliveryRate := snap.Rate("delivery_flat", fallbackDeliveryFlat)
	markupPct := snap.Percent("markup_pct", fallbackMarkupPct)
	taxPct := snap.Percent("tax_pct", fallbackTaxPct)

	material := decimal.NewFromFloat(adjustedStuds).Mul(studRate.Amount).
		Add(decimal.NewFromFloat(plateLengthFt).Mul(plateRate.Amount)).
		Add(decimal.NewFromFloat(sheetCount).Mul(sheetRate.Amount))
	labor := decimal.NewFromFloat(wallAreaSqft).Mul(laborRate.Amount)
	equipment := deliveryRate.Amount

	subtotal := material.Add(labor).Add(equipment)
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
		"stud_each":        {Amount: studRate.Amount, Unit: "each", Source: string(studRate.Source)},
		"plate_per_ft":     {Amount: plateRate.Amount, Unit: "ft", Source: string(plateRate.Source)},
		"framing_per_sqft": {Amount: laborRate.Amount, Unit: "sqft", Source: string(laborRate.Source)},
		"delivery_flat":    {Amount: deliveryRate.Amount, Source: string(deliveryRate.Source)},
		"markup_pct":       {Amount: markupPct.Amount, Unit: "%", Source: string(markupPct.Source)},
		"tax_pct":          {Amount: taxPct.Amount, Unit: "%", Source: string(taxPct.Source)},
	}
	if sheetCount > 0 {
		rates["sheathing_per_sheet"] = types.RateInfo{Amount: sheetRate.Amount, Unit: "sheet", Source: string(sheetRate.Source)}
	}

	results := types.Results{
		{Key: "wall_area_sqft", Label: "Wall area", Value: units.Quantity(wallAreaSqft, 1), Unit: "sq ft", Kind: types.KindQuantity},
		{Key: "stud_count", Label: "Studs (before waste)", Value: units.Quantity(studCount, 0), Kind: types.KindQuantity},
		{Key: "waste_pct", Label: "Waste allowance", Value: units.Quantity(wastePct, 1), Unit: "%", Kind: types.KindFactor},
		{Key: "adjusted_studs", Label: "Studs to order", Value: units.Quantity(adjustedStuds, 0), Kind: types.KindQuantity},
		{Key: "plate_length_ft", Label: "Plate lumber", Value: units.Quantity(plateLengthFt, 1), Unit: "ft", Kind: types.KindQuantity},
		{Key: "sheet_count", Label: "Sheathing sheets", Value: units.Quantity(sheetCount, 0), Kind: types.KindQuantity},
		{Key: "material_cost", Label: "Material", Value: units.Currency(material), Unit: "USD", Kind: types.KindCurrency},
		{Key: "labor_cost", Label: "Labor", Value: units.Currency(labor), Unit: "USD", Kind: types.KindCurrency},
		{Key: "equipment_cost", Label: "Delivery", Value: units.Currency(equipment), Unit: "USD", Kind: types.KindCurrency},
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

	b.WriteString("Wall Framing Estimate - Show Your Math\n")
	b.WriteString("======================================\n\n")

	b.WriteString("Layout\n")
	fmt.Fprintf(&b, "  Wall: %s ft long x %s ft high = %s sq ft\n",
		in["wall_length_ft"], in["wall_height_ft"], res.MustGet("wall_area_sqft"))
	fmt.Fprintf(&b, "  Studs at %s in o.c.: %s, plus %s%% waste (%s framing) = %s to order\n",
		in["stud_spacing_in"], res.MustGet("stud_count"), res.MustGet("waste_pct"),
		in["complexity"], res.MustGet("adjusted_studs"))
	fmt.Fprintf(&b, "  Plates (2 top + 1 bottom): %s ft\n", res.MustGet("plate_length_ft"))
	if sheets := res.MustGet("sheet_count"); !sheets.IsZero() {
		fmt.Fprintf(&b, "  Sheathing: %s sheets (4x8)\n", sheets)
	}
	b.WriteString("\nCosts\n")
	studRate := comp.Pricing.Rates["stud_each"]
	fmt.Fprintf(&b, "  Material (studs x $%s %s, plates, sheathing): $%s\n",
		studRate.Amount.Round(2).StringFixed(2), studRate.Source, res.MustGet("material_cost"))
	laborRate := comp.Pricing.Rates["framing_per_sqft"]
	fmt.Fprintf(&b, "  Labor: %s sq ft x $%s/sq ft = $%s\n",
		res.MustGet("wall_area_sqft"), laborRate.Amount.Round(2).StringFixed(2),
		res.MustGet("labor_cost"))
	fmt.Fprintf(&b, "  Delivery: $%s\n", res.MustGet("equipment_cost"))
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
	inputs := make(types.RawInputs, len(raw)+5)
	for k, v := range raw {
		inputs[k] = strings.TrimSpace(v)
	}
	if inputs["stud_spacing_in"] == "" {
		inputs["stud_spacing_in"] = "16"
	}
	if inputs["complexity"] == "" {
		inputs["complexity"] = "simple"
	}
	if inputs["include_sheathing"] == "" {
		inputs["include_sheathing"] = "false"
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
