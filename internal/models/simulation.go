package models

import (
	"time"

	"github.com/mr1hm/go-impact-sim/internal/physics"
)

const (
	SourceNASANEO = "nasa_neo"
	SourceCustom  = "custom"

	MethodEnhancedPhysics = "enhanced_physics"

	ConfidenceNASA    = 0.85
	ConfidenceDefault = 0.95
)

type ImpactLocation struct {
	Lat        float64 `json:"lat" binding:"gte=-90,lte=90"`
	Lng        float64 `json:"lng" binding:"gte=-180,lte=180"`
	Name       string  `json:"name" binding:"required"`
	Population int64   `json:"population" binding:"gte=0"`
	Country    string  `json:"country,omitempty"`
}

// CustomAsteroid describes a hypothetical impactor that is not in the NEO
// catalogue.
type CustomAsteroid struct {
	Name            string              `json:"name" binding:"required"`
	DiameterKm      float64             `json:"diameter_km" binding:"gte=0.001,lte=1000"`
	Composition     physics.Composition `json:"composition" binding:"omitempty,oneof=rocky iron icy stony"`
	DensityKgM3     *float64            `json:"density_kg_m3,omitempty" binding:"omitempty,gte=100,lte=25000"`
	SemiMajorAxisAU *float64            `json:"semi_major_axis_au,omitempty" binding:"omitempty,gte=0.01"`
	Eccentricity    *float64            `json:"eccentricity,omitempty" binding:"omitempty,gte=0,lt=1"`
}

// Asteroid renders the custom body in the cached-asteroid shape so both
// sources flow through the same calculation path.
func (c *CustomAsteroid) Asteroid(now time.Time) *Asteroid {
	composition := c.Composition
	if composition == "" {
		composition = physics.CompositionRocky
	}
	a := &Asteroid{
		Name:                c.Name,
		Diameter:            DiameterEstimate{AverageKm: Float(c.DiameterKm)},
		EstimatedDiameterKm: Float(c.DiameterKm),
		CompositionType:     composition,
		DensityKgM3:         c.DensityKgM3,
		CloseApproaches:     []CloseApproach{},
		LastUpdated:         now,
		IsActive:            true,
	}
	if a.DensityKgM3 == nil {
		a.DensityKgM3 = Float(physics.DensityFor(composition))
	}
	if c.SemiMajorAxisAU != nil {
		a.OrbitalElements = &OrbitalElements{
			SemiMajorAxisAU: c.SemiMajorAxisAU,
			Eccentricity:    c.Eccentricity,
		}
	}
	return a
}

type ImpactParameters struct {
	AsteroidNASAID string          `json:"asteroid_nasa_id,omitempty"`
	CustomAsteroid *CustomAsteroid `json:"custom_asteroid,omitempty"`
	ImpactLocation ImpactLocation  `json:"impact_location"`

	ImpactVelocityKms *float64 `json:"impact_velocity_kms,omitempty" binding:"omitempty,gte=1,lte=100"`
	ImpactAngleDeg    float64  `json:"impact_angle_deg" binding:"gte=15,lte=90"`

	TargetDensityKgM3       float64  `json:"target_density_kg_m3" binding:"gte=100,lte=25000"`
	AtmosphericEntry        bool     `json:"atmospheric_entry"`
	FragmentationAltitudeKm *float64 `json:"fragmentation_altitude_km,omitempty" binding:"omitempty,gte=0"`
}

// DefaultImpactParameters returns the parameter defaults a request is
// decoded over.
func DefaultImpactParameters() ImpactParameters {
	return ImpactParameters{
		ImpactAngleDeg:    physics.DefaultAngleDeg,
		TargetDensityKgM3: physics.DefaultTargetDensityKgM3,
		AtmosphericEntry:  true,
	}
}

// Conditions extracts the engine's impact conditions.
func (p *ImpactParameters) Conditions() physics.Conditions {
	return physics.Conditions{
		AngleDeg:          p.ImpactAngleDeg,
		TargetDensityKgM3: p.TargetDensityKgM3,
	}
}

// VelocityOverride returns the requested impact speed, or 0 when the engine
// should resolve it.
func (p *ImpactParameters) VelocityOverride() float64 {
	if p.ImpactVelocityKms == nil {
		return 0
	}
	return *p.ImpactVelocityKms
}

// CalculationSummary keeps the resolved intermediate quantities of a run.
type CalculationSummary struct {
	VelocityKms      float64 `json:"velocity_kms"`
	MassKg           float64 `json:"mass_kg"`
	EnergyMt         float64 `json:"energy_mt"`
	CraterDiameterKm float64 `json:"crater_diameter_km"`
}

type Simulation struct {
	ID           string                 `json:"id"`
	Parameters   ImpactParameters       `json:"parameters"`
	Results      *physics.ImpactResults `json:"results,omitempty"`
	Calculation  *CalculationSummary    `json:"calculation,omitempty"`
	AsteroidData *Asteroid              `json:"asteroid_data,omitempty"`

	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	CreatedBy    string   `json:"created_by,omitempty"`
	IsPublic     bool     `json:"is_public"`
	Tags         []string `json:"tags"`
	NASAEnhanced bool     `json:"nasa_enhanced"`
	PeerReviewed bool     `json:"peer_reviewed"`
}

// Composition returns the impactor class the simulation ran with.
func (s *Simulation) Composition() physics.Composition {
	if s.AsteroidData == nil {
		return ""
	}
	return s.AsteroidData.CompositionType
}

type SimulationCreate struct {
	Parameters  ImpactParameters `json:"parameters"`
	Name        string           `json:"name,omitempty"`
	Description string           `json:"description,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	CreatedBy   string           `json:"created_by,omitempty"`
}

// SimulationUpdate patches metadata; nil fields are left untouched.
type SimulationUpdate struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	IsPublic    *bool     `json:"is_public,omitempty"`
}

// SimulationSummary is the compact form pushed to live subscribers.
type SimulationSummary struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	AsteroidName     string           `json:"asteroid_name"`
	Location         ImpactLocation   `json:"location"`
	EnergyMt         float64          `json:"energy_mt"`
	CraterDiameterKm float64          `json:"crater_diameter_km"`
	Severity         physics.Severity `json:"severity"`
	CreatedAt        time.Time        `json:"created_at"`
}
