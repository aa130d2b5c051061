package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mr1hm/go-impact-sim/internal/models"
	"github.com/mr1hm/go-impact-sim/internal/observability"
	"github.com/mr1hm/go-impact-sim/internal/physics"
	"github.com/mr1hm/go-impact-sim/internal/repository"
)

const (
	MinCompare = 2
	MaxCompare = 5
)

// AsteroidLookup resolves catalogue bodies for simulations.
type AsteroidLookup interface {
	Get(ctx context.Context, nasaID string) (*models.Asteroid, error)
}

// Publisher receives a summary of every completed simulation.
type Publisher interface {
	Broadcast(s *models.SimulationSummary)
}

type SimulationService struct {
	asteroids AsteroidLookup
	repo      repository.SimulationRepository
	publisher Publisher
	metrics   *observability.Metrics
	clock     clockwork.Clock
}

// NewSimulationService wires the simulation use cases. publisher and
// metrics may be nil.
func NewSimulationService(asteroids AsteroidLookup, repo repository.SimulationRepository, publisher Publisher, metrics *observability.Metrics, clock clockwork.Clock) *SimulationService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SimulationService{
		asteroids: asteroids,
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		clock:     clock,
	}
}

// Run validates the request, resolves the impactor, runs the physics
// engine and stores the result.
func (s *SimulationService) Run(ctx context.Context, req models.SimulationCreate) (*models.Simulation, error) {
	start := s.clock.Now()
	params := req.Parameters
	if err := validateParameters(&params); err != nil {
		return nil, err
	}

	asteroid, source, err := s.resolveBody(ctx, &params)
	if err != nil {
		return nil, err
	}
	if d := asteroid.EstimatedDiameterKm; d != nil && !(*d > 0) {
		return nil, models.Invalid("diameter_km", "must be positive")
	}

	calc := physics.Calculate(asteroid.ImpactBody(params.VelocityOverride()), params.Conditions())
	if !calc.Finite() {
		slog.Warn("impact calculation out of range", "asteroid", asteroid.Name, "mass_kg", calc.MassKg, "energy_mt", calc.EnergyMt)
		return nil, models.Invalid("parameters", "body produces a mass or energy outside the representable range")
	}
	results := calc.Results
	results.AsteroidSource = source
	results.CalculationMethod = models.MethodEnhancedPhysics
	results.ConfidenceLevel = models.ConfidenceDefault
	if source == models.SourceNASANEO {
		results.ConfidenceLevel = models.ConfidenceNASA
	}

	now := s.clock.Now().UTC()
	nasaEnhanced := source == models.SourceNASANEO
	sim := &models.Simulation{
		ID:         uuid.NewString(),
		Parameters: params,
		Results:    &results,
		Calculation: &models.CalculationSummary{
			VelocityKms:      calc.VelocityKms,
			MassKg:           calc.MassKg,
			EnergyMt:         calc.EnergyMt,
			CraterDiameterKm: calc.Effects.CraterDiameterM / 1000,
		},
		AsteroidData: asteroid,
		Name:         req.Name,
		Description:  req.Description,
		CreatedAt:    now,
		UpdatedAt:    now,
		CreatedBy:    req.CreatedBy,
		Tags:         req.Tags,
		NASAEnhanced: nasaEnhanced,
	}
	if sim.Name == "" {
		sim.Name = fmt.Sprintf("Impact: %s → %s", asteroid.Name, params.ImpactLocation.Name)
	}
	if sim.Description == "" {
		if nasaEnhanced {
			sim.Description = fmt.Sprintf("Enhanced simulation using NASA data for %s", asteroid.Name)
		} else {
			sim.Description = fmt.Sprintf("Simulation of custom asteroid %s", asteroid.Name)
		}
	}
	if len(sim.Tags) == 0 {
		first := models.SourceCustom
		if nasaEnhanced {
			first = "nasa-enhanced"
		}
		sim.Tags = []string{first, string(asteroid.CompositionType)}
	}

	if err := s.repo.AddSimulation(ctx, sim); err != nil {
		return nil, fmt.Errorf("store simulation: %w", err)
	}

	if s.metrics != nil {
		s.metrics.SimulationsRun.WithLabelValues(source).Inc()
		s.metrics.SimulationDuration.Observe(s.clock.Since(start).Seconds())
	}
	if s.publisher != nil {
		s.publisher.Broadcast(Summarize(sim))
	}

	slog.Info("simulation completed",
		"id", sim.ID,
		"asteroid", asteroid.Name,
		"source", source,
		"energy_mt", calc.EnergyMt,
		"location", params.ImpactLocation.Name,
	)
	return sim, nil
}

func (s *SimulationService) resolveBody(ctx context.Context, params *models.ImpactParameters) (*models.Asteroid, string, error) {
	if params.CustomAsteroid != nil {
		return params.CustomAsteroid.Asteroid(s.clock.Now().UTC()), models.SourceCustom, nil
	}

	a, err := s.asteroids.Get(ctx, params.AsteroidNASAID)
	switch {
	case err == nil:
		return a, models.SourceNASANEO, nil
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrSourceUnavailable):
		slog.Warn("asteroid unavailable for simulation", "nasa_id", params.AsteroidNASAID, "error", err)
		return nil, "", fmt.Errorf("asteroid with NASA ID %s: %w", params.AsteroidNASAID, models.ErrNotFound)
	default:
		return nil, "", err
	}
}

func validateParameters(p *models.ImpactParameters) error {
	p.AsteroidNASAID = strings.TrimSpace(p.AsteroidNASAID)
	hasID := p.AsteroidNASAID != ""
	hasCustom := p.CustomAsteroid != nil
	if hasID == hasCustom {
		return models.Invalid("parameters", "provide exactly one of asteroid_nasa_id or custom_asteroid")
	}

	if math.IsNaN(p.ImpactAngleDeg) || p.ImpactAngleDeg < physics.MinAngleDeg || p.ImpactAngleDeg > physics.MaxAngleDeg {
		return models.Invalid("impact_angle_deg", fmt.Sprintf("must be between %.0f and %.0f degrees", physics.MinAngleDeg, physics.MaxAngleDeg))
	}
	if !inRange(p.TargetDensityKgM3, physics.MinDensityKgM3, physics.MaxDensityKgM3) {
		return models.Invalid("target_density_kg_m3", rangeReason(physics.MinDensityKgM3, physics.MaxDensityKgM3))
	}
	if v := p.ImpactVelocityKms; v != nil && !inRange(*v, physics.MinVelocityKms, physics.MaxVelocityKms) {
		return models.Invalid("impact_velocity_kms", rangeReason(physics.MinVelocityKms, physics.MaxVelocityKms))
	}

	loc := p.ImpactLocation
	if strings.TrimSpace(loc.Name) == "" {
		return models.Invalid("impact_location.name", "is required")
	}
	if loc.Lat < -90 || loc.Lat > 90 {
		return models.Invalid("impact_location.lat", "must be between -90 and 90")
	}
	if loc.Lng < -180 || loc.Lng > 180 {
		return models.Invalid("impact_location.lng", "must be between -180 and 180")
	}
	if loc.Population < 0 {
		return models.Invalid("impact_location.population", "must not be negative")
	}

	if c := p.CustomAsteroid; c != nil {
		if strings.TrimSpace(c.Name) == "" {
			return models.Invalid("custom_asteroid.name", "is required")
		}
		if !inRange(c.DiameterKm, physics.MinDiameterKm, physics.MaxDiameterKm) {
			return models.Invalid("custom_asteroid.diameter_km", rangeReason(physics.MinDiameterKm, physics.MaxDiameterKm))
		}
		if c.Composition != "" && !c.Composition.Valid() {
			return models.Invalid("custom_asteroid.composition", "must be one of rocky, iron, icy, stony")
		}
		if d := c.DensityKgM3; d != nil && !inRange(*d, physics.MinDensityKgM3, physics.MaxDensityKgM3) {
			return models.Invalid("custom_asteroid.density_kg_m3", rangeReason(physics.MinDensityKgM3, physics.MaxDensityKgM3))
		}
		if a := c.SemiMajorAxisAU; a != nil && !(*a >= physics.MinSemiMajorAxisAU && !math.IsInf(*a, 1)) {
			return models.Invalid("custom_asteroid.semi_major_axis_au", fmt.Sprintf("must be at least %g", physics.MinSemiMajorAxisAU))
		}
	}
	return nil
}

// inRange is false for NaN.
func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

func rangeReason(lo, hi float64) string {
	return fmt.Sprintf("must be between %g and %g", lo, hi)
}

func (s *SimulationService) Get(ctx context.Context, id string) (*models.Simulation, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	sim, err := s.repo.GetSimulation(ctx, id)
	if err != nil {
		return nil, err
	}
	if sim == nil {
		return nil, fmt.Errorf("simulation %s: %w", id, models.ErrNotFound)
	}
	return sim, nil
}

func (s *SimulationService) List(ctx context.Context, f models.SimulationFilter) ([]models.Simulation, error) {
	f.Limit = models.ClampLimit(f.Limit)
	return s.repo.ListSimulations(ctx, f)
}

// Update patches simulation metadata and bumps updated_at.
func (s *SimulationService) Update(ctx context.Context, id string, upd models.SimulationUpdate) (*models.Simulation, error) {
	sim, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		sim.Name = *upd.Name
	}
	if upd.Description != nil {
		sim.Description = *upd.Description
	}
	if upd.Tags != nil {
		sim.Tags = *upd.Tags
		if sim.Tags == nil {
			sim.Tags = []string{}
		}
	}
	if upd.IsPublic != nil {
		sim.IsPublic = *upd.IsPublic
	}
	sim.UpdatedAt = s.clock.Now().UTC()

	ok, err := s.repo.UpdateSimulation(ctx, sim)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("simulation %s: %w", id, models.ErrNotFound)
	}
	return sim, nil
}

func (s *SimulationService) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	ok, err := s.repo.DeleteSimulation(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("simulation %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// Compare lines up two to five stored simulations.
func (s *SimulationService) Compare(ctx context.Context, ids []string) (*models.Comparison, error) {
	if len(ids) < MinCompare || len(ids) > MaxCompare {
		return nil, models.Invalid("simulation_ids", fmt.Sprintf("must compare between %d and %d simulations", MinCompare, MaxCompare))
	}

	sims := make([]models.Simulation, 0, len(ids))
	for _, id := range ids {
		sim, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		sims = append(sims, *sim)
	}

	return &models.Comparison{
		Simulations:      sims,
		ComparisonMatrix: comparisonMatrix(sims),
		Summary:          comparisonSummary(sims),
	}, nil
}

func (s *SimulationService) Statistics(ctx context.Context) (*models.SimulationStats, error) {
	return s.repo.SimulationStats(ctx)
}

func comparisonMatrix(sims []models.Simulation) models.ComparisonMatrix {
	m := models.ComparisonMatrix{
		CraterDiameters: make([]models.ComparisonValue, 0, len(sims)),
		Energies:        make([]models.ComparisonValue, 0, len(sims)),
		Casualties:      make([]models.ComparisonValue, 0, len(sims)),
		ShockwaveRadii:  make([]models.ComparisonValue, 0, len(sims)),
	}
	for _, sim := range sims {
		if sim.Results == nil {
			continue
		}
		value := func(metric physics.ImpactMetric) models.ComparisonValue {
			v := metric.Value
			if v == "" {
				v = "0"
			}
			return models.ComparisonValue{SimulationID: sim.ID, Name: sim.Name, Value: v}
		}
		m.CraterDiameters = append(m.CraterDiameters, value(sim.Results.Immediate.CraterDiameter))
		m.Energies = append(m.Energies, value(sim.Results.Immediate.Energy))
		m.Casualties = append(m.Casualties, value(sim.Results.HumanImpact.CasualtiesImmediate))
		m.ShockwaveRadii = append(m.ShockwaveRadii, value(sim.Results.Environmental.ShockwaveRadius))
	}
	return m
}

func comparisonSummary(sims []models.Simulation) models.ComparisonSummary {
	locations := make(map[string]struct{})
	types := make(map[string]struct{})
	summary := models.ComparisonSummary{TotalCompared: len(sims)}

	for i := range sims {
		sim := &sims[i]
		if sim.NASAEnhanced {
			summary.NASAEnhanced++
		}
		locations[sim.Parameters.ImpactLocation.Name] = struct{}{}
		if c := sim.Composition(); c != "" {
			types[string(c)] = struct{}{}
		}
	}

	summary.Locations = sortedKeys(locations)
	summary.AsteroidTypes = sortedKeys(types)
	return summary
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Summarize builds the compact form sent to live subscribers.
func Summarize(sim *models.Simulation) *models.SimulationSummary {
	summary := &models.SimulationSummary{
		ID:        sim.ID,
		Name:      sim.Name,
		Location:  sim.Parameters.ImpactLocation,
		CreatedAt: sim.CreatedAt,
	}
	if sim.AsteroidData != nil {
		summary.AsteroidName = sim.AsteroidData.Name
	}
	if sim.Calculation != nil {
		summary.EnergyMt = sim.Calculation.EnergyMt
		summary.CraterDiameterKm = sim.Calculation.CraterDiameterKm
	}
	if sim.Results != nil {
		summary.Severity = sim.Results.Immediate.CraterDiameter.Severity
	}
	return summary
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return models.Invalid("id", "invalid simulation ID format")
	}
	return nil
}
