package physics

// ImpactMetric is one presented effect.
type ImpactMetric struct {
	Value           string   `json:"value"`
	Unit            string   `json:"unit"`
	Severity        Severity `json:"severity"`
	Description     string   `json:"description"`
	Progress        float64  `json:"progress"`
	ScientificBasis string   `json:"scientific_basis,omitempty"`
}

type ImmediateEffects struct {
	CraterDiameter ImpactMetric `json:"craterDiameter"`
	Energy         ImpactMetric `json:"energy"`
	Temperature    ImpactMetric `json:"temperature"`
	FireballRadius ImpactMetric `json:"fireballRadius"`
}

type EnvironmentalEffects struct {
	ShockwaveRadius   ImpactMetric `json:"shockwaveRadius"`
	DebrisFieldRadius ImpactMetric `json:"debrisFieldRadius"`
	SeismicMagnitude  ImpactMetric `json:"seismicMagnitude"`
	AtmosphericDust   ImpactMetric `json:"atmosphericDust"`
}

type HumanImpact struct {
	CasualtiesImmediate  ImpactMetric `json:"casualtiesImmediate"`
	InfrastructureDamage ImpactMetric `json:"infrastructureDamage"`
	EconomicLoss         ImpactMetric `json:"economicLoss"`
	RefugeePopulation    ImpactMetric `json:"refugeePopulation"`
}

// TimelineEntry is a narrative step; it carries no severity.
type TimelineEntry struct {
	Key   string `json:"key"`
	Time  string `json:"time"`
	Event string `json:"event"`
}

// ImpactResults groups the presented effects. The metadata fields are left
// empty by the engine and filled in by the caller.
type ImpactResults struct {
	Immediate     ImmediateEffects     `json:"immediate"`
	Environmental EnvironmentalEffects `json:"environmental"`
	HumanImpact   HumanImpact          `json:"human_impact"`
	Timeline      []TimelineEntry      `json:"timeline"`

	AsteroidSource    string  `json:"asteroid_source"`
	CalculationMethod string  `json:"calculation_method"`
	ConfidenceLevel   float64 `json:"confidence_level"`
}

// Metric looks a metric up by key across all groups.
func (r *ImpactResults) Metric(key MetricKey) (ImpactMetric, bool) {
	switch key {
	case KeyCraterDiameter:
		return r.Immediate.CraterDiameter, true
	case KeyEnergy:
		return r.Immediate.Energy, true
	case KeyTemperature:
		return r.Immediate.Temperature, true
	case KeyFireballRadius:
		return r.Immediate.FireballRadius, true
	case KeyShockwaveRadius:
		return r.Environmental.ShockwaveRadius, true
	case KeyDebrisFieldRadius:
		return r.Environmental.DebrisFieldRadius, true
	case KeySeismicMagnitude:
		return r.Environmental.SeismicMagnitude, true
	case KeyAtmosphericDust:
		return r.Environmental.AtmosphericDust, true
	case KeyCasualtiesImmediate:
		return r.HumanImpact.CasualtiesImmediate, true
	case KeyInfrastructureDamage:
		return r.HumanImpact.InfrastructureDamage, true
	case KeyEconomicLoss:
		return r.HumanImpact.EconomicLoss, true
	case KeyRefugeePopulation:
		return r.HumanImpact.RefugeePopulation, true
	}
	return ImpactMetric{}, false
}
