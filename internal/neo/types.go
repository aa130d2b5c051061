package neo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// number accepts NeoWs numerics, which arrive either as JSON numbers or as
// quoted strings depending on the endpoint.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		b = []byte(s)
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("parse number %q: %w", b, err)
	}
	*n = number(f)
	return nil
}

func (n *number) ptr() *float64 {
	if n == nil {
		return nil
	}
	f := float64(*n)
	return &f
}

type neoObject struct {
	ID                string  `json:"id"`
	NeoReferenceID    string  `json:"neo_reference_id"`
	Name              string  `json:"name"`
	Designation       string  `json:"designation"`
	AbsoluteMagnitude *number `json:"absolute_magnitude_h"`
	EstimatedDiameter struct {
		Kilometers struct {
			Min *number `json:"estimated_diameter_min"`
			Max *number `json:"estimated_diameter_max"`
		} `json:"kilometers"`
	} `json:"estimated_diameter"`
	PotentiallyHazardous bool            `json:"is_potentially_hazardous_asteroid"`
	CloseApproachData    []closeApproach `json:"close_approach_data"`
	OrbitalData          *orbitalData    `json:"orbital_data"`
}

type closeApproach struct {
	Date             string `json:"close_approach_date"`
	RelativeVelocity struct {
		KilometersPerSecond number `json:"kilometers_per_second"`
	} `json:"relative_velocity"`
	MissDistance struct {
		Kilometers number `json:"kilometers"`
	} `json:"miss_distance"`
	OrbitingBody string `json:"orbiting_body"`
}

type orbitalData struct {
	SemiMajorAxis      *number `json:"semi_major_axis"`
	Eccentricity       *number `json:"eccentricity"`
	Inclination        *number `json:"inclination"`
	OrbitalPeriod      *number `json:"orbital_period"`
	PerihelionDistance *number `json:"perihelion_distance"`
	AphelionDistance   *number `json:"aphelion_distance"`
}

type browseResponse struct {
	Page struct {
		Size          int `json:"size"`
		TotalElements int `json:"total_elements"`
		TotalPages    int `json:"total_pages"`
		Number        int `json:"number"`
	} `json:"page"`
	NearEarthObjects []json.RawMessage `json:"near_earth_objects"`
}

type feedResponse struct {
	ElementCount     int                          `json:"element_count"`
	NearEarthObjects map[string][]json.RawMessage `json:"near_earth_objects"`
}
