// Package units provides pure numeric conversion helpers.
// Geometry is carried as float64; money is carried as decimal and only
// rounded at the output boundary.
package units

import (
	"math"

	"github.com/shopspring/decimal"
)

// Conversion constants
const (
	InchesPerFoot       = 12.0
	SquareFeetPerYd2    = 9.0
	CubicFeetPerYd3     = 27.0
	SquareFeetPerSquare = 100.0 // roofing square
)

// InchesToFeet converts inches to feet
func InchesToFeet(in float64) float64 {
	return in / InchesPerFoot
}

// FeetToInches converts feet to inches
func FeetToInches(ft float64) float64 {
	return ft * InchesPerFoot
}

// SquareFeet returns the area of a rectangle in ft²
func SquareFeet(lengthFt, widthFt float64) float64 {
	return lengthFt * widthFt
}

// CubicFeet returns the volume of a slab in ft³ given plan dimensions in
// feet and thickness in inches
func CubicFeet(lengthFt, widthFt, thicknessIn float64) float64 {
	return lengthFt * widthFt * InchesToFeet(thicknessIn)
}

// CubicFeetToCubicYards converts ft³ to yd³
func CubicFeetToCubicYards(ft3 float64) float64 {
	return ft3 / CubicFeetPerYd3
}

// SquareFeetToSquares converts ft² to roofing squares
func SquareFeetToSquares(ft2 float64) float64 {
	return ft2 / SquareFeetPerSquare
}

// Round rounds a value to the given number of decimal places
func Round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}

// RoundUp rounds a value up to the nearest integer (for whole-unit
// purchases: bags, sheets, studs)
func RoundUp(v float64) float64 {
	return math.Ceil(v)
}

// Quantity converts a float quantity to a decimal rounded to the given
// number of places, for use in a result line
func Quantity(v float64, places int32) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(places)
}

// Currency rounds a monetary amount to two decimal places
func Currency(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent converts a whole-number percentage to its decimal fraction
// (7.5 -> 0.075)
func Percent(pct decimal.Decimal) decimal.Decimal {
	return pct.Div(decimal.NewFromInt(100))
}
