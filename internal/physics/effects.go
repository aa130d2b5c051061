package physics

import "math"

// Scaling constants used by ComputeEffects.
const (
	craterScaleK           = 1.25 // complex crater coefficient
	peakTemperatureCapC    = 100000.0
	ejectaDensityKgM3      = 2600.0 // dust model ignores the real target density
	dustFraction           = 0.1
	lethalPopulationKm2    = 1000.0
	lethality              = 0.8
	displacedPopulationKm2 = 500.0
	economicLossPerMt      = 0.1 // billion USD
	shockSpeedKms          = 0.34
)

// EffectInputs are the resolved physical quantities the effect scaling laws
// work from.
type EffectInputs struct {
	EnergyMt          float64
	VelocityKms       float64
	DiameterM         float64
	DensityKgM3       float64
	TargetDensityKgM3 float64
	AngleDeg          float64
}

// Effects holds the raw, unformatted output of every scaling law.
type Effects struct {
	AngleFactor            float64
	CraterDiameterM        float64
	FireballRadiusKm       float64
	PeakTemperatureC       float64
	ShockwaveRadiusKm      float64
	DebrisRadiusKm         float64
	SeismicMagnitude       float64
	AtmosphericDustTons    float64
	Casualties             float64
	InfrastructureDamageKm float64
	EconomicLossBillionUSD float64
	DisplacedPopulation    float64
}

// ShockwaveArrivalSeconds is the time for the blast front to reach its
// maximum extent, using the speed of sound in air as the travel speed.
func (e Effects) ShockwaveArrivalSeconds() float64 {
	return e.ShockwaveRadiusKm / shockSpeedKms
}

// AngleFactor is the sine of the impact angle, 1 for a vertical strike.
func AngleFactor(angleDeg float64) float64 {
	return math.Sin(angleDeg * math.Pi / 180)
}

// ComputeEffects maps the resolved inputs onto every effect quantity.
// Negative energy is treated as zero so every result stays defined.
func ComputeEffects(in EffectInputs) Effects {
	energy := math.Max(in.EnergyMt, 0)
	targetDensity := in.TargetDensityKgM3
	if targetDensity <= 0 {
		targetDensity = DefaultTargetDensityKgM3
	}
	af := AngleFactor(in.AngleDeg)

	e := Effects{AngleFactor: af}
	e.CraterDiameterM = CraterDiameter(energy, af, targetDensity)
	e.FireballRadiusKm = 0.5 * math.Pow(energy, 0.4)
	e.PeakTemperatureC = math.Min(peakTemperatureCapC, in.VelocityKms*2000+10000)
	e.ShockwaveRadiusKm = 15 * math.Pow(energy, 0.33) * af
	e.DebrisRadiusKm = 50 * math.Pow(energy, 0.3) * af
	e.SeismicMagnitude = SeismicMagnitude(in.EnergyMt)
	e.AtmosphericDustTons = math.Pi / 6 * math.Pow(in.DiameterM, 3) * ejectaDensityKgM3 * dustFraction

	lethalAreaKm2 := math.Pi*e.FireballRadiusKm*e.FireballRadiusKm +
		0.5*math.Pi*e.ShockwaveRadiusKm*e.ShockwaveRadiusKm
	e.Casualties = lethalAreaKm2 * lethalPopulationKm2 * lethality
	e.InfrastructureDamageKm = e.ShockwaveRadiusKm * 1.5
	e.EconomicLossBillionUSD = energy * economicLossPerMt
	e.DisplacedPopulation = math.Pi * e.DebrisRadiusKm * e.DebrisRadiusKm * displacedPopulationKm2
	return e
}

// CraterDiameter returns the final crater diameter in meters.
func CraterDiameter(energyMt, angleFactor, targetDensity float64) float64 {
	joules := energyMt * JoulesPerMegaton
	return craterScaleK * math.Pow(math.Max(joules*angleFactor/targetDensity, 0), 0.25)
}

// SeismicMagnitude converts impact energy to an equivalent earthquake
// magnitude clamped to [0, 10]. Non-positive energy yields 0.
func SeismicMagnitude(energyMt float64) float64 {
	if !(energyMt > 0) {
		return 0
	}
	m := (math.Log10(energyMt*JoulesPerMegaton) - 4.8) / 1.5
	return math.Max(0, math.Min(10, m))
}
