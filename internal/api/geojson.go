package api

import (
	"github.com/mr1hm/go-impact-sim/internal/models"
	"github.com/mr1hm/go-impact-sim/internal/service"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// toGeoJSON places each simulation at its impact point.
func toGeoJSON(sims []models.Simulation) FeatureCollection {
	features := make([]Feature, 0, len(sims))

	for _, s := range sims {
		loc := s.Parameters.ImpactLocation
		summary := service.Summarize(&s)
		f := Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{loc.Lng, loc.Lat},
			},
			Properties: map[string]any{
				"id":                 s.ID,
				"name":               s.Name,
				"asteroid_name":      summary.AsteroidName,
				"composition":        s.Composition(),
				"location":           loc.Name,
				"population":         loc.Population,
				"energy_mt":          summary.EnergyMt,
				"crater_diameter_km": summary.CraterDiameterKm,
				"severity":           summary.Severity,
				"nasa_enhanced":      s.NASAEnhanced,
				"created_at":         s.CreatedAt,
			},
		}
		features = append(features, f)
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
