// Package concrete estimates poured concrete cost from slab dimensions.
// Cost model:
// - Material: region-adjusted price per cubic yard, waste factor by pour type
// - Labor: prep and finishing per square foot
// - Equipment: delivery flat fee, optional pump
// - Financial: toggleable markup and tax percentages
package concrete

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
const Key = "concrete"

// Local fallback rates, used only when the pricing table has no entry
var (
	fallbackConcretePerYd3 = decimal.NewFromInt(150)
	fallbackPrepPerSqft    = decimal.NewFromFloat(0.90)
	fallbackFinishPerSqft  = decimal.NewFromFloat(1.80)
	fallbackDeliveryFlat   = decimal.NewFromInt(125)
	fallbackPumpFlat       = decimal.NewFromInt(250)
	fallbackMarkupPct      = decimal.NewFromInt(10)
	fallbackTaxPct         = decimal.NewFromInt(7)
)

// wasteFactors maps pour type to a waste percentage.
// Unrecognized pour types get the explicit default.
var wasteFactors = map[string]float64{
	"slab":    5,
	"footing": 10,
	"wall":    8,
}

const defaultWastePct = 5

var schema = validation.Schema{
	{Name: "length_ft", Type: validation.Number, Label: "Length", Min: validation.Float(0.5), Max: validation.Float(1000), Required: true},
	{Name: "width_ft", Type: validation.Number, Label: "Width", Min: validation.Float(0.5), Max: validation.Float(1000), Required: true},
	{Name: "thickness_in", Type: validation.Number, Label: "Thickness", Min: validation.Float(1), Max: validation.Float(24), Required: true},
	{Name: "pour_type", Type: validation.Enum, Label: "Pour type", Options: []string{"slab", "footing", "wall"}},
	{Name: "region", Type: validation.Enum, Label: "Region", Options: []string{"national", "northeast", "midwest", "south", "west", "mountain"}},
	{Name: "include_pump", Type: validation.Boolean, Label: "Include pump"},
	{Name: "include_markup", Type: validation.Boolean, Label: "Include markup"},
	{Name: "include_tax", Type: validation.Boolean, Label: "Include tax"},
	{Name: "override_price", Type: validation.Number, Label: "Override concrete price", Min: validation.Float(0)},
}

// Calculator implements registry.Definition for poured concrete
type Calculator struct {
	resolver *pricing.Resolver
}

// New creates the concrete calculator
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
func (c *Calculator) Title() string { return "Concrete Cost Estimator" }

// Schema returns the input schema
func (c *Calculator) Schema() validation.Schema { return schema }

// ConsumedFields lists every input field Compute reads
func (c *Calculator) ConsumedFields() []string {
	return schema.Names()
}

// Compute validates inputs and produces the cost breakdown.
// On validation failure it returns field errors and computes nothing.
func (c *Calculator) Compute(raw types.RawInputs) *types.Computation {
	inputs := normalize(raw)

	if result := validation.Validate(inputs, schema); !result.Valid {
		return &types.Computation{
			Calculator: Key,
			Inputs:     inputs,
			Errors:     result.Errors,
		}
	}

	lengthFt, _ := strconv.ParseFloat(inputs["length_ft"], 64)
	widthFt, _ := strconv.ParseFloat(inputs["width_ft"], 64)
	thicknessIn, _ := strconv.ParseFloat(inputs["thickness_in"], 64)

	// Geometry
	areaSqft := units.SquareFeet(lengthFt, widthFt)
	volumeFt3 := units.CubicFeet(lengthFt, widthFt, thicknessIn)
	volumeYd3 := units.CubicFeetToCubicYards(volumeFt3)

	// Waste allowance by pour type
	wastePct, ok := wasteFactors[inputs["pour_type"]]
	if !ok {
		wastePct = defaultWastePct
	}
	adjustedYd3 := volumeYd3 * (1 + wastePct/100)

	// Pricing
	snap := c.resolver.GetPricingSync(Key, inputs["region"])

	concreteRate := snap.Rate("concrete_per_yd3", fallbackConcretePerYd3)
	if ov := overridePrice(inputs); ov != nil {
		concreteRate = pricing.Price{Amount: *ov, Source: pricing.SourceOverride}
	}
	prepRate := snap.Rate("prep_per_sqft", fallbackPrepPerSqft)
	finishRate := snap.Rate("finishing_per_sqft", fallbackFinishPerSqft)
	deliveryRate := snap.Rate("delivery_flat", fallbackDeliveryFlat)
	pumpRate := snap.Rate("pump_flat", fallbackPumpFlat)
	markupPct := snap.Percent("markup_pct", fallbackMarkupPct)
	taxPct := snap.Percent("tax_pct", fallbackTaxPct)

	// Costs, kept unrounded until the boundary
	area := decimal.NewFromFloat(areaSqft)
	material := decimal.NewFromFloat(adjustedYd3).Mul(concreteRate.Amount)
	labor := area.Mul(prepRate.Amount.Add(finishRate.Amount))
	equipment := deliveryRate.Amount
	if inputs["include_pump"] == "true" {
		equipment = equipment.Add(pumpRate.Amount)
	}

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
		"concrete_per_yd3":   {Amount: concreteRate.Amount, Unit: "yd3", Source: string(concreteRate.Source)},
		"prep_per_sqft":      {Amount: prepRate.Amount, Unit: "sqft", Source: string(prepRate.Source)},
		"finishing_per_sqft": {Amount: finishRate.Amount, Unit: "sqft", Source: string(finishRate.Source)},
		"delivery_flat":      {Amount: deliveryRate.Amount, Source: string(deliveryRate.Source)},
		"markup_pct":         {Amount: markupPct.Amount, Unit: "%", Source: string(markupPct.Source)},
		"tax_pct":            {Amount: taxPct.Amount, Unit: "%", Source: string(taxPct.Source)},
	}
	if inputs["include_pump"] == "true" {
		rates["pump_flat"] = types.RateInfo{Amount: pumpRate.Amount, Source: string(pumpRate.Source)}
	}

	results := types.Results{
		{Key: "area_sqft", Label: "Slab area", Value: units.Quantity(areaSqft, 1), Unit: "sq ft", Kind: types.KindQuantity},
		{Key: "volume_ft3", Label: "Base volume", Value: units.Quantity(volumeFt3, 2), Unit: "cu ft", Kind: types.KindQuantity},
		{Key: "volume_yd3", Label: "Base volume", Value: units.Quantity(volumeYd3, 2), Unit: "cu yd", Kind: types.KindQuantity},
		{Key: "waste_pct", Label: "Waste allowance", Value: units.Quantity(wastePct, 1), Unit: "%", Kind: types.KindFactor},
		{Key: "adjusted_yd3", Label: "Order volume", Value: units.Quantity(adjustedYd3, 2), Unit: "cu yd", Kind: types.KindQuantity},
		{Key: "material_cost", Label: "Material", Value: units.Currency(material), Unit: "USD", Kind: types.KindCurrency},
		{Key: "labor_cost", Label: "Labor", Value: units.Currency(labor), Unit: "USD", Kind: types.KindCurrency},
		{Key: "equipment_cost", Label: "Equipment & delivery", Value: units.Currency(equipment), Unit: "USD", Kind: types.KindCurrency},
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

// Explain re-derives the step-by-step breakdown from a finished
// computation. It reads only the computation's inputs, results, and
// pricing info.
func (c *Calculator) Explain(comp *types.Computation) string {
	if comp == nil || comp.Failed() {
		return ""
	}

	in := comp.Inputs
	res := comp.Results
	var b strings.Builder

	b.WriteString("Concrete Estimate - Show Your Math\n")
	b.WriteString("==================================\n\n")

	b.WriteString("Dimensions\n")
	fmt.Fprintf(&b, "  Area: %s ft x %s ft = %s sq ft\n",
		in["length_ft"], in["width_ft"], res.MustGet("area_sqft"))
	fmt.Fprintf(&b, "  Thickness: %s in\n\n", in["thickness_in"])

	b.WriteString("Volume\n")
	fmt.Fprintf(&b, "  Base: %s sq ft x (%s/12) ft = %s cu ft = %s cu yd\n",
		res.MustGet("area_sqft"), in["thickness_in"],
		res.MustGet("volume_ft3"), res.MustGet("volume_yd3"))
	fmt.Fprintf(&b, "  Waste (%s pour, %s%%): %s cu yd x %s = %s cu yd to order\n\n",
		in["pour_type"], res.MustGet("waste_pct"), res.MustGet("volume_yd3"),
		onePlusPct(res.MustGet("waste_pct")), res.MustGet("adjusted_yd3"))

	b.WriteString("Materials\n")
	concreteRate := comp.Pricing.Rates["concrete_per_yd3"]
	fmt.Fprintf(&b, "  Concrete: %s cu yd x %s/cu yd (%s) = $%s\n\n",
		res.MustGet("adjusted_yd3"), money(concreteRate.Amount),
		concreteRate.Source, res.MustGet("material_cost"))

	b.WriteString("Labor\n")
	prep := comp.Pricing.Rates["prep_per_sqft"]
	finish := comp.Pricing.Rates["finishing_per_sqft"]
	fmt.Fprintf(&b, "  Prep + finishing: %s sq ft x (%s + %s)/sq ft = $%s\n\n",
		res.MustGet("area_sqft"), money(prep.Amount), money(finish.Amount),
		res.MustGet("labor_cost"))

	b.WriteString("Equipment & Delivery\n")
	delivery := comp.Pricing.Rates["delivery_flat"]
	if pump, ok := comp.Pricing.Rates["pump_flat"]; ok {
		fmt.Fprintf(&b, "  Delivery %s + pump %s = $%s\n\n",
			money(delivery.Amount), money(pump.Amount), res.MustGet("equipment_cost"))
	} else {
		fmt.Fprintf(&b, "  Delivery flat fee = $%s\n\n", res.MustGet("equipment_cost"))
	}

	b.WriteString("Totals\n")
	fmt.Fprintf(&b, "  Subtotal: $%s + $%s + $%s = $%s\n",
		res.MustGet("material_cost"), res.MustGet("labor_cost"),
		res.MustGet("equipment_cost"), res.MustGet("subtotal"))
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

// normalize substitutes declared defaults for missing optional fields and
// trims raw values
func normalize(raw types.RawInputs) types.RawInputs {
	inputs := make(types.RawInputs, len(raw)+4)
	for k, v := range raw {
		inputs[k] = strings.TrimSpace(v)
	}
	if inputs["pour_type"] == "" {
		inputs["pour_type"] = "slab"
	}
	if inputs["region"] == "" {
		inputs["region"] = pricing.DefaultRegion
	} else {
		inputs["region"] = pricing.NormalizeRegion(inputs["region"])
	}
	if inputs["include_pump"] == "" {
		inputs["include_pump"] = "false"
	}
	if inputs["include_markup"] == "" {
		inputs["include_markup"] = "true"
	}
	if inputs["include_tax"] == "" {
		inputs["include_tax"] = "true"
	}
	return inputs
}

// overridePrice returns a user-supplied concrete price when provided and
// non-zero. The override silently takes precedence; the source tag is the
// audit trail.
func overridePrice(inputs types.RawInputs) *decimal.Decimal {
	raw := inputs["override_price"]
	if raw == "" {
		return nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil || v.IsZero() {
		return nil
	}
	return &v
}

func money(d decimal.Decimal) string {
	return "$" + d.Round(2).StringFixed(2)
}

func onePlusPct(pct decimal.Decimal) string {
	one := decimal.NewFromInt(1)
	return one.Add(units.Percent(pct)).String()
}
