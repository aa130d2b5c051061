package models

import "time"

type CompositionCount struct {
	Composition string `json:"composition"`
	Count       int64  `json:"count"`
}

type SizeStatistics struct {
	AvgDiameterKm *float64 `json:"avg_diameter"`
	MaxDiameterKm *float64 `json:"max_diameter"`
	MinDiameterKm *float64 `json:"min_diameter"`
}

type AsteroidStats struct {
	TotalAsteroids          int64              `json:"total_asteroids"`
	PotentiallyHazardous    int64              `json:"potentially_hazardous"`
	SizeStatistics          SizeStatistics     `json:"size_statistics"`
	CompositionDistribution []CompositionCount `json:"composition_distribution"`
	LastUpdated             *time.Time         `json:"last_updated"`
}

type AsteroidCount struct {
	NASAID string `json:"nasa_id"`
	Name   string `json:"name"`
	Count  int64  `json:"count"`
}

type LocationCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type AverageMetrics struct {
	AvgEnergyMt *float64 `json:"avg_energy_mt,omitempty"`
	AvgCraterKm *float64 `json:"avg_crater_km,omitempty"`
}

type SimulationStats struct {
	TotalSimulations  int64           `json:"total_simulations"`
	NASAEnhancedCount int64           `json:"nasa_enhanced_count"`
	EnhancementRate   float64         `json:"enhancement_rate"`
	PopularAsteroids  []AsteroidCount `json:"popular_asteroids"`
	PopularLocations  []LocationCount `json:"popular_locations"`
	AverageMetrics    AverageMetrics  `json:"average_metrics"`
	LastSimulation    *time.Time      `json:"last_simulation"`
}

type ComparisonValue struct {
	SimulationID string `json:"simulation_id"`
	Name         string `json:"name"`
	Value        string `json:"value"`
}

type ComparisonMatrix struct {
	CraterDiameters []ComparisonValue `json:"crater_diameters"`
	Energies        []ComparisonValue `json:"energies"`
	Casualties      []ComparisonValue `json:"casualties"`
	ShockwaveRadii  []ComparisonValue `json:"shockwave_radii"`
}

type ComparisonSummary struct {
	TotalCompared int      `json:"total_compared"`
	NASAEnhanced  int      `json:"nasa_enhanced"`
	Locations     []string `json:"locations"`
	AsteroidTypes []string `json:"asteroid_types"`
}

type Comparison struct {
	Simulations      []Simulation      `json:"simulations"`
	ComparisonMatrix ComparisonMatrix  `json:"comparison_matrix"`
	Summary          ComparisonSummary `json:"summary"`
}

// FeaturedAsteroid pairs a well-known body with a short blurb.
type FeaturedAsteroid struct {
	Asteroid     Asteroid `json:"asteroid"`
	Description  string   `json:"description"`
	Significance string   `json:"significance"`
}

type ApproachInfo struct {
	Asteroid            Asteroid `json:"asteroid"`
	ApproachDate        string   `json:"approach_date"`
	ClosestApproachKm   float64  `json:"closest_approach_km"`
	RelativeVelocityKms float64  `json:"relative_velocity_kms"`
}

type CloseApproachReport struct {
	ApproachingAsteroids []ApproachInfo `json:"approaching_asteroids"`
	TotalFound           int            `json:"total_found"`
	Returned             int            `json:"returned"`
	DaysAhead            int            `json:"days_ahead"`
}

type AsteroidSearchResult struct {
	Asteroids []Asteroid `json:"asteroids"`
	Total     int        `json:"total"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	HasMore   bool       `json:"has_more"`
}
