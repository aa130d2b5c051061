package physics

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
)

// Present classifies and formats raw effects. in must be the inputs the
// effects were computed from; several descriptions quote them.
func Present(e Effects, in EffectInputs) ImpactResults {
	craterKm := e.CraterDiameterM / 1000
	dustBillionTons := e.AtmosphericDustTons / 1e9
	diameter := decimalLabel(in.DiameterM)

	return ImpactResults{
		Immediate: ImmediateEffects{
			CraterDiameter: metric(KeyCraterDiameter, craterKm, fixed1(craterKm),
				fmt.Sprintf("Impact crater formed by %sm asteroid, with rim heights reaching %.0fm above ground level.",
					diameter, e.CraterDiameterM*0.05)),
			Energy: metric(KeyEnergy, in.EnergyMt, thousands(in.EnergyMt),
				fmt.Sprintf("Total kinetic energy from %.1f km/s impact, calculated using enhanced orbital mechanics.",
					in.VelocityKms)),
			Temperature: metric(KeyTemperature, e.PeakTemperatureC, thousands(e.PeakTemperatureC),
				fmt.Sprintf("Peak temperature at impact site from %.1f km/s collision, creating superheated plasma.",
					in.VelocityKms)),
			FireballRadius: metric(KeyFireballRadius, e.FireballRadiusKm, fixed1(e.FireballRadiusKm),
				"Radius of superheated fireball causing thermal radiation burns and igniting fires."),
		},
		Environmental: EnvironmentalEffects{
			ShockwaveRadius: metric(KeyShockwaveRadius, e.ShockwaveRadiusKm, fixed1(e.ShockwaveRadiusKm),
				fmt.Sprintf("Radius of destructive shockwave from %s MT explosion, causing building collapse.",
					thousands(in.EnergyMt))),
			DebrisFieldRadius: metric(KeyDebrisFieldRadius, e.DebrisRadiusKm, fixed1(e.DebrisRadiusKm),
				fmt.Sprintf("Area covered by ejected debris and impact fragments from %.1fkm crater.", craterKm)),
			SeismicMagnitude: metric(KeySeismicMagnitude, e.SeismicMagnitude, fixed1(e.SeismicMagnitude),
				fmt.Sprintf("Earthquake magnitude from %s MT impact, generating global seismic waves.",
					thousands(in.EnergyMt))),
			AtmosphericDust: metric(KeyAtmosphericDust, dustBillionTons, fixed1(dustBillionTons),
				fmt.Sprintf("Dust and debris ejected into atmosphere from %sm asteroid impact.", diameter)),
		},
		HumanImpact: HumanImpact{
			CasualtiesImmediate: metric(KeyCasualtiesImmediate, e.Casualties, thousands(e.Casualties),
				fmt.Sprintf("Immediate casualties from thermal radiation, shockwave, and debris within %.0fkm radius.",
					e.ShockwaveRadiusKm)),
			InfrastructureDamage: metric(KeyInfrastructureDamage, e.InfrastructureDamageKm,
				fmt.Sprintf("%.0f", e.InfrastructureDamageKm),
				"Radius of severe infrastructure damage including buildings, roads, and utilities."),
			EconomicLoss: metric(KeyEconomicLoss, e.EconomicLossBillionUSD, thousands(e.EconomicLossBillionUSD),
				"Estimated economic losses from infrastructure damage and business disruption."),
			RefugeePopulation: metric(KeyRefugeePopulation, e.DisplacedPopulation, thousands(e.DisplacedPopulation),
				fmt.Sprintf("Population requiring evacuation due to impact effects across %.0fkm radius.",
					e.DebrisRadiusKm)),
		},
		Timeline: Timeline(e),
	}
}

// Timeline narrates the impact at fixed elapsed times.
func Timeline(e Effects) []TimelineEntry {
	return []TimelineEntry{
		{Key: "t0", Time: "0 seconds", Event: "Initial impact and crater excavation begins"},
		{Key: "t1", Time: "1 second", Event: fmt.Sprintf("Fireball reaches %.1fkm radius", e.FireballRadiusKm)},
		{Key: "t2", Time: "10 seconds", Event: "Thermal radiation pulse at maximum intensity"},
		{Key: "t3", Time: fmt.Sprintf("%.0f seconds", e.ShockwaveArrivalSeconds()), Event: "Shockwave reaches maximum extent"},
		{Key: "t4", Time: "5 minutes", Event: "Ballistic ejecta begins falling back to Earth"},
		{Key: "t5", Time: "30 minutes", Event: fmt.Sprintf("Seismic magnitude %.1f waves circle the globe", e.SeismicMagnitude)},
		{Key: "t6", Time: "2 hours", Event: "Atmospheric dust begins affecting regional weather"},
		{Key: "t7", Time: "24 hours", Event: "Global atmospheric effects become apparent"},
		{Key: "t8", Time: "1 week", Event: "Long-term environmental and climate impacts emerge"},
	}
}

func metric(key MetricKey, value float64, text, description string) ImpactMetric {
	spec := MetricSpecs[key]
	return ImpactMetric{
		Value:           text,
		Unit:            spec.Unit,
		Severity:        spec.Scale.Classify(value),
		Description:     description,
		Progress:        spec.Progress(value),
		ScientificBasis: spec.Basis,
	}
}

func fixed1(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// decimalLabel prints v at full precision, keeping one decimal on whole
// numbers: 1000 is "1000.0", 12.5 stays "12.5".
func decimalLabel(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e21 {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// thousands rounds half to even and groups digits with commas.
func thousands(v float64) string {
	r := math.RoundToEven(v)
	if r == 0 {
		r = 0 // drop the sign of -0
	}
	return humanize.Commaf(r)
}
