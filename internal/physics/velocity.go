package physics

import "math"

const (
	EarthEscapeVelocityKms = 11.2
	FallbackVelocityKms    = 20.0 // mean NEO encounter speed

	GMSun       = 1.327e20 // m³/s²
	MetersPerAU = 1.496e11
)

// ResolveVelocity picks the impact speed in km/s: an explicit override,
// then an orbit-derived speed, then the NEO population average.
func ResolveVelocity(b Body) float64 {
	if b.VelocityKms > 0 && !math.IsInf(b.VelocityKms, 1) {
		return b.VelocityKms
	}
	if b.SemiMajorAxisAU > 0 && !math.IsInf(b.SemiMajorAxisAU, 1) {
		v := OrbitalVelocity(b.SemiMajorAxisAU)
		return math.Sqrt(v*v + EarthEscapeVelocityKms*EarthEscapeVelocityKms)
	}
	return FallbackVelocityKms
}

// OrbitalVelocity approximates the heliocentric speed in km/s of a body on
// a circular orbit with semi-major axis a (AU).
func OrbitalVelocity(semiMajorAxisAU float64) float64 {
	a := semiMajorAxisAU * MetersPerAU
	return math.Sqrt(GMSun/a) / 1000
}
