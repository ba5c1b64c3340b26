// Package calculators wires the concrete calculator modules into a
// registry. Each module registers itself through an explicit constructor
// call rather than an init()-time global.
package calculators

import (
	"costcalc/core/calculators/concrete"
	"costcalc/core/calculators/framing"
	"costcalc/core/calculators/paint"
	"costcalc/core/pricing"
	"costcalc/core/registry"
)

// RegisterAll registers every shipped calculator module
func RegisterAll(reg *registry.Registry, resolver *pricing.Resolver) {
	concrete.Register(reg, resolver)
	framing.Register(reg, resolver)
	paint.Register(reg, resolver)
}
