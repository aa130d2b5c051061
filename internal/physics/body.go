package physics

// Composition is the material class of an impactor. It selects a default
// bulk density when no explicit density is known.
type Composition string

const (
	CompositionRocky Composition = "rocky"
	CompositionIron  Composition = "iron"
	CompositionIcy   Composition = "icy"
	CompositionStony Composition = "stony"
)

// Bulk densities in kg/m³.
var densities = map[Composition]float64{
	CompositionRocky: 2600,
	CompositionIron:  7800,
	CompositionIcy:   1000,
	CompositionStony: 3500,
}

// DensityFor returns the default density for c, falling back to rocky for
// unrecognized classes.
func DensityFor(c Composition) float64 {
	if d, ok := densities[c]; ok {
		return d
	}
	return densities[CompositionRocky]
}

// Valid reports whether c is one of the known composition classes.
func (c Composition) Valid() bool {
	_, ok := densities[c]
	return ok
}

// Body is the physical description of an impactor. Zero values mean
// "unknown" for every optional field.
type Body struct {
	DiameterKm      float64
	Composition     Composition
	DensityKgM3     float64 // overrides the composition default when > 0
	SemiMajorAxisAU float64
	Eccentricity    float64
	VelocityKms     float64 // explicit impact velocity, wins when > 0
}

// Conditions describe the impact geometry and target.
type Conditions struct {
	AngleDeg          float64 // from horizontal, 15..90
	TargetDensityKgM3 float64 // defaults to average crustal rock when <= 0
}

const (
	DefaultAngleDeg          = 45.0
	DefaultTargetDensityKgM3 = 2700.0
	MinAngleDeg              = 15.0
	MaxAngleDeg              = 90.0

	// Accepted input ranges. Outside them mass or energy leave the range of
	// a float64.
	MinDiameterKm      = 0.001
	MaxDiameterKm      = 1000.0
	MinVelocityKms     = 1.0
	MaxVelocityKms     = 100.0
	MinDensityKgM3     = 100.0
	MaxDensityKgM3     = 25000.0
	MinSemiMajorAxisAU = 0.01
)

func (c Conditions) targetDensity() float64 {
	if c.TargetDensityKgM3 > 0 {
		return c.TargetDensityKgM3
	}
	return DefaultTargetDensityKgM3
}
