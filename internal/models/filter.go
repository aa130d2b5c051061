package models

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// AsteroidFilter narrows asteroid listings. Nil fields are not applied.
type AsteroidFilter struct {
	DiameterMinKm        *float64 `form:"diameter_min_km" binding:"omitempty,gte=0"`
	DiameterMaxKm        *float64 `form:"diameter_max_km" binding:"omitempty,gte=0"`
	PotentiallyHazardous *bool    `form:"potentially_hazardous"`
	NEOType              string   `form:"neo_type" binding:"omitempty,oneof=Apollo Aten Amor Other"`
	HasCloseApproaches   *bool    `form:"has_close_approaches"`
	Limit                int      `form:"limit" binding:"omitempty,gte=1,lte=100"`
	Offset               int      `form:"offset" binding:"omitempty,gte=0"`
}

// Matches reports whether a passes every set criterion. Bodies without a
// diameter estimate are not excluded by the diameter bounds.
func (f *AsteroidFilter) Matches(a *Asteroid) bool {
	if d := a.EstimatedDiameterKm; d != nil {
		if f.DiameterMinKm != nil && *d < *f.DiameterMinKm {
			return false
		}
		if f.DiameterMaxKm != nil && *d > *f.DiameterMaxKm {
			return false
		}
	}
	if f.PotentiallyHazardous != nil && a.PotentiallyHazardous != *f.PotentiallyHazardous {
		return false
	}
	if f.NEOType != "" && a.NEOType != f.NEOType {
		return false
	}
	if f.HasCloseApproaches != nil && *f.HasCloseApproaches && len(a.CloseApproaches) == 0 {
		return false
	}
	return true
}

// SimulationFilter narrows simulation listings.
type SimulationFilter struct {
	NASAEnhancedOnly bool   `form:"nasa_enhanced_only"`
	Tag              string `form:"tag"`
	Limit            int    `form:"limit" binding:"omitempty,gte=1,lte=100"`
	Offset           int    `form:"offset" binding:"omitempty,gte=0"`
}

// ClampLimit applies the default and upper bound to a page size.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
