package physics

import "math"

// Calculation is the full output of one engine run: the resolved
// intermediate quantities, the raw effects and their presentation.
type Calculation struct {
	VelocityKms float64
	MassKg      float64
	EnergyMt    float64
	DensityKgM3 float64
	DiameterM   float64
	Effects     Effects
	Results     ImpactResults
}

// Finite reports whether mass and energy are positive finite values and
// every raw effect is finite.
func (c Calculation) Finite() bool {
	if !positiveFinite(c.MassKg) || !positiveFinite(c.EnergyMt) {
		return false
	}
	e := c.Effects
	for _, v := range []float64{
		e.CraterDiameterM, e.FireballRadiusKm, e.PeakTemperatureC,
		e.ShockwaveRadiusKm, e.DebrisRadiusKm, e.SeismicMagnitude,
		e.AtmosphericDustTons, e.Casualties, e.InfrastructureDamageKm,
		e.EconomicLossBillionUSD, e.DisplacedPopulation,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// Calculate runs the whole pipeline for one body under the given
// conditions. Callers validate the angle and diameter first.
func Calculate(b Body, c Conditions) Calculation {
	velocity := ResolveVelocity(b)
	mass, energy := ResolveMassAndEnergy(b, velocity)

	in := EffectInputs{
		EnergyMt:          energy,
		VelocityKms:       velocity,
		DiameterM:         EffectiveDiameterKm(b) * 1000,
		DensityKgM3:       EffectiveDensity(b),
		TargetDensityKgM3: c.targetDensity(),
		AngleDeg:          c.AngleDeg,
	}
	effects := ComputeEffects(in)

	return Calculation{
		VelocityKms: velocity,
		MassKg:      mass,
		EnergyMt:    energy,
		DensityKgM3: in.DensityKgM3,
		DiameterM:   in.DiameterM,
		Effects:     effects,
		Results:     Present(effects, in),
	}
}
