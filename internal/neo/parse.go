package neo

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mr1hm/go-impact-sim/internal/models"
	"github.com/mr1hm/go-impact-sim/internal/physics"
)

// Bodies brighter than this absolute magnitude are assumed metallic.
const ironMagnitudeCutoff = 15.0

// Parse converts one raw NeoWs object into the cached asteroid shape. The
// raw payload is kept on the result.
func Parse(raw json.RawMessage, now time.Time) (*models.Asteroid, error) {
	var obj neoObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("decode neo object: %w", err)
	}
	if obj.ID == "" {
		obj.ID = obj.NeoReferenceID
	}
	if obj.ID == "" {
		return nil, fmt.Errorf("neo object %q has no id", obj.Name)
	}

	km := obj.EstimatedDiameter.Kilometers
	diameter := models.DiameterEstimate{
		MinKm:     km.Min.ptr(),
		MaxKm:     km.Max.ptr(),
		AverageKm: averageDiameter(&obj),
	}

	var elements *models.OrbitalElements
	if od := obj.OrbitalData; od != nil {
		elements = &models.OrbitalElements{
			SemiMajorAxisAU:      od.SemiMajorAxis.ptr(),
			Eccentricity:         od.Eccentricity.ptr(),
			InclinationDeg:       od.Inclination.ptr(),
			OrbitalPeriodDays:    od.OrbitalPeriod.ptr(),
			PerihelionDistanceAU: od.PerihelionDistance.ptr(),
			AphelionDistanceAU:   od.AphelionDistance.ptr(),
		}
	}

	approaches := make([]models.CloseApproach, 0, len(obj.CloseApproachData))
	for _, ca := range obj.CloseApproachData {
		body := ca.OrbitingBody
		if body == "" {
			body = "Earth"
		}
		approaches = append(approaches, models.CloseApproach{
			Date:         ca.Date,
			VelocityKms:  float64(ca.RelativeVelocity.KilometersPerSecond),
			DistanceKm:   float64(ca.MissDistance.Kilometers),
			OrbitingBody: body,
		})
	}

	composition := EstimateComposition(obj.AbsoluteMagnitude.ptr())

	return &models.Asteroid{
		NASAID:               obj.ID,
		Name:                 obj.Name,
		Designation:          obj.Designation,
		Diameter:             diameter,
		AbsoluteMagnitude:    obj.AbsoluteMagnitude.ptr(),
		EstimatedDiameterKm:  diameter.AverageKm,
		PotentiallyHazardous: obj.PotentiallyHazardous,
		NEOType:              ClassifyOrbit(elements),
		OrbitalElements:      elements,
		CloseApproaches:      approaches,
		CompositionType:      composition,
		DensityKgM3:          models.Float(physics.DensityFor(composition)),
		NASAData:             raw,
		LastUpdated:          now.UTC(),
		IsActive:             true,
	}, nil
}

func averageDiameter(obj *neoObject) *float64 {
	km := obj.EstimatedDiameter.Kilometers
	if km.Min == nil || km.Max == nil {
		return nil
	}
	avg := (float64(*km.Min) + float64(*km.Max)) / 2
	return &avg
}

// EstimateComposition guesses the material class from brightness alone.
func EstimateComposition(absoluteMagnitude *float64) physics.Composition {
	if absoluteMagnitude != nil && *absoluteMagnitude != 0 && *absoluteMagnitude < ironMagnitudeCutoff {
		return physics.CompositionIron
	}
	return physics.CompositionRocky
}

// ClassifyOrbit names the NEO group from semi-major axis and perihelion.
// It returns "" when the orbit is unknown.
func ClassifyOrbit(oe *models.OrbitalElements) string {
	if oe == nil || oe.SemiMajorAxisAU == nil || *oe.SemiMajorAxisAU == 0 {
		return ""
	}
	a := *oe.SemiMajorAxisAU
	e := 0.0
	if oe.Eccentricity != nil {
		e = *oe.Eccentricity
	}
	q := a * (1 - e)

	switch {
	case a > 1.0 && q < 1.017:
		return "Apollo"
	case a < 1.0:
		return "Aten"
	case a > 1.0 && q > 1.017 && q < 1.3:
		return "Amor"
	default:
		return "Other"
	}
}
