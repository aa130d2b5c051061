package physics

import "math"

const (
	JoulesPerMegaton  = 4.184e15
	DefaultDiameterKm = 1.0
)

// EffectiveDensity returns the body's density in kg/m³.
func EffectiveDensity(b Body) float64 {
	if b.DensityKgM3 > 0 {
		return b.DensityKgM3
	}
	return DensityFor(b.Composition)
}

// EffectiveDiameterKm returns the body's diameter, defaulting to 1 km when
// the estimate is missing.
func EffectiveDiameterKm(b Body) float64 {
	if b.DiameterKm > 0 {
		return b.DiameterKm
	}
	return DefaultDiameterKm
}

// ResolveMassAndEnergy treats the body as a uniform sphere and returns its
// mass in kg and its kinetic energy at velocityKms in megatons of TNT.
func ResolveMassAndEnergy(b Body, velocityKms float64) (massKg, energyMt float64) {
	r := EffectiveDiameterKm(b) * 1000 / 2
	volume := 4.0 / 3.0 * math.Pi * r * r * r
	massKg = volume * EffectiveDensity(b)

	v := velocityKms * 1000
	energyMt = 0.5 * massKg * v * v / JoulesPerMegaton
	return massKg, energyMt
}
