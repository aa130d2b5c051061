package models

import (
	"encoding/json"
	"time"

	"github.com/mr1hm/go-impact-sim/internal/physics"
)

type CloseApproach struct {
	Date         string  `json:"date"`
	VelocityKms  float64 `json:"velocity_kms"`
	DistanceKm   float64 `json:"distance_km"`
	OrbitingBody string  `json:"orbiting_body"`
}

type OrbitalElements struct {
	SemiMajorAxisAU      *float64 `json:"semi_major_axis_au,omitempty"`
	Eccentricity         *float64 `json:"eccentricity,omitempty"`
	InclinationDeg       *float64 `json:"inclination_deg,omitempty"`
	OrbitalPeriodDays    *float64 `json:"orbital_period_days,omitempty"`
	PerihelionDistanceAU *float64 `json:"perihelion_distance_au,omitempty"`
	AphelionDistanceAU   *float64 `json:"aphelion_distance_au,omitempty"`
}

type DiameterEstimate struct {
	MinKm     *float64 `json:"min_km,omitempty"`
	MaxKm     *float64 `json:"max_km,omitempty"`
	AverageKm *float64 `json:"average_km,omitempty"`
}

// Asteroid is a cached near-Earth object as reported by NASA NeoWs.
type Asteroid struct {
	NASAID      string `json:"nasa_id"`
	Name        string `json:"name"`
	Designation string `json:"designation,omitempty"`

	Diameter            DiameterEstimate `json:"diameter"`
	AbsoluteMagnitude   *float64         `json:"absolute_magnitude,omitempty"`
	EstimatedDiameterKm *float64         `json:"estimated_diameter_km,omitempty"`

	PotentiallyHazardous bool   `json:"potentially_hazardous"`
	NEOType              string `json:"neo_type,omitempty"` // Apollo, Aten, Amor, Other

	OrbitalElements *OrbitalElements `json:"orbital_elements,omitempty"`
	CloseApproaches []CloseApproach  `json:"close_approaches"`

	CompositionType physics.Composition `json:"composition_type"`
	DensityKgM3     *float64            `json:"density_kg_m3,omitempty"`

	NASAData    json.RawMessage `json:"nasa_data,omitempty"`
	LastUpdated time.Time       `json:"last_updated"`
	IsActive    bool            `json:"is_active"`
}

// ImpactBody converts the cached record into engine input. A positive
// velocityOverride replaces the orbit-derived speed.
func (a *Asteroid) ImpactBody(velocityOverride float64) physics.Body {
	b := physics.Body{
		Composition: a.CompositionType,
		VelocityKms: velocityOverride,
	}
	if a.EstimatedDiameterKm != nil {
		b.DiameterKm = *a.EstimatedDiameterKm
	}
	if a.DensityKgM3 != nil {
		b.DensityKgM3 = *a.DensityKgM3
	}
	if oe := a.OrbitalElements; oe != nil {
		if oe.SemiMajorAxisAU != nil {
			b.SemiMajorAxisAU = *oe.SemiMajorAxisAU
		}
		if oe.Eccentricity != nil {
			b.Eccentricity = *oe.Eccentricity
		}
	}
	return b
}

// Float returns a pointer to v, for the optional fields above.
func Float(v float64) *float64 {
	return &v
}
