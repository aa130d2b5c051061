package physics

import "math"

// Severity is the four-band classification attached to every metric.
type Severity string

const (
	SeverityMinor        Severity = "minor"
	SeverityModerate     Severity = "moderate"
	SeveritySevere       Severity = "severe"
	SeverityCatastrophic Severity = "catastrophic"
)

// Rank orders severities from minor (0) to catastrophic (3).
func (s Severity) Rank() int {
	switch s {
	case SeverityModerate:
		return 1
	case SeveritySevere:
		return 2
	case SeverityCatastrophic:
		return 3
	default:
		return 0
	}
}

// Scale is a step function over three strictly-exceeded thresholds.
type Scale struct {
	Catastrophic float64
	Severe       float64
	Moderate     float64
}

// Classify returns the band value falls in. Values equal to a threshold
// stay in the lower band.
func (s Scale) Classify(value float64) Severity {
	switch {
	case value > s.Catastrophic:
		return SeverityCatastrophic
	case value > s.Severe:
		return SeveritySevere
	case value > s.Moderate:
		return SeverityModerate
	default:
		return SeverityMinor
	}
}

// MetricKey names one metric in ImpactResults.
type MetricKey string

const (
	KeyCraterDiameter       MetricKey = "craterDiameter"
	KeyEnergy               MetricKey = "energy"
	KeyTemperature          MetricKey = "temperature"
	KeyFireballRadius       MetricKey = "fireballRadius"
	KeyShockwaveRadius      MetricKey = "shockwaveRadius"
	KeyDebrisFieldRadius    MetricKey = "debrisFieldRadius"
	KeySeismicMagnitude     MetricKey = "seismicMagnitude"
	KeyAtmosphericDust      MetricKey = "atmosphericDust"
	KeyCasualtiesImmediate  MetricKey = "casualtiesImmediate"
	KeyInfrastructureDamage MetricKey = "infrastructureDamage"
	KeyEconomicLoss         MetricKey = "economicLoss"
	KeyRefugeePopulation    MetricKey = "refugeePopulation"
)

// MetricSpec fixes the unit, severity scale, progress ceiling and citation
// of one metric. Values are expressed in the displayed unit.
type MetricSpec struct {
	Unit    string
	Scale   Scale
	Ceiling float64
	Basis   string
}

// Progress scales value against the ceiling into [0, 100].
func (m MetricSpec) Progress(value float64) float64 {
	p := value / m.Ceiling * 100
	switch {
	case p > 100:
		return 100
	case p < 0 || math.IsNaN(p):
		return 0
	}
	return p
}

// MetricSpecs is the fixed classification table. It is never written after
// package initialization.
var MetricSpecs = map[MetricKey]MetricSpec{
	KeyCraterDiameter: {
		Unit:    "km",
		Scale:   Scale{Catastrophic: 20, Severe: 10, Moderate: 2},
		Ceiling: 50,
		Basis:   "Melosh-Ivanov scaling laws for complex craters",
	},
	KeyEnergy: {
		Unit:    "megatons TNT",
		Scale:   Scale{Catastrophic: 100000, Severe: 10000, Moderate: 1000},
		Ceiling: 1000000,
		Basis:   "Real orbital velocity + Earth escape velocity",
	},
	KeyTemperature: {
		Unit:    "°C",
		Scale:   Scale{Catastrophic: 50000, Severe: 20000, Moderate: 5000},
		Ceiling: 100000,
		Basis:   "Shock physics and equation of state calculations",
	},
	KeyFireballRadius: {
		Unit:    "km",
		Scale:   Scale{Catastrophic: 100, Severe: 50, Moderate: 10},
		Ceiling: 200,
		Basis:   "Sedov-Taylor blast wave solution",
	},
	KeyShockwaveRadius: {
		Unit:    "km",
		Scale:   Scale{Catastrophic: 2000, Severe: 1000, Moderate: 200},
		Ceiling: 3000,
		Basis:   "Atmospheric blast wave propagation models",
	},
	KeyDebrisFieldRadius: {
		Unit:    "km",
		Scale:   Scale{Catastrophic: 5000, Severe: 2500, Moderate: 1000},
		Ceiling: 8000,
		Basis:   "Ballistic trajectory modeling of ejecta",
	},
	KeySeismicMagnitude: {
		Unit:    "magnitude",
		Scale:   Scale{Catastrophic: 8, Severe: 7, Moderate: 5},
		Ceiling: 10,
		Basis:   "Energy-magnitude scaling relationships",
	},
	KeyAtmosphericDust: {
		Unit:    "billion tons",
		Scale:   Scale{Catastrophic: 50, Severe: 10, Moderate: 1},
		Ceiling: 100,
		Basis:   "Impact ejecta scaling and atmospheric modeling",
	},
	KeyCasualtiesImmediate: {
		Unit:    "estimated casualties",
		Scale:   Scale{Catastrophic: 5000000, Severe: 1000000, Moderate: 100000},
		Ceiling: 10000000,
		Basis:   "Population density models and lethality curves",
	},
	KeyInfrastructureDamage: {
		Unit:    "km radius affected",
		Scale:   Scale{Catastrophic: 1000, Severe: 500, Moderate: 100},
		Ceiling: 2000,
		Basis:   "Engineering failure analysis and overpressure thresholds",
	},
	KeyEconomicLoss: {
		Unit:    "billion USD",
		Scale:   Scale{Catastrophic: 5000, Severe: 1000, Moderate: 100},
		Ceiling: 10000,
		Basis:   "Disaster economics and regional GDP impact models",
	},
	KeyRefugeePopulation: {
		Unit:    "displaced persons",
		Scale:   Scale{Catastrophic: 20000000, Severe: 5000000, Moderate: 1000000},
		Ceiling: 50000000,
		Basis:   "Evacuation zone modeling and population displacement studies",
	},
}
