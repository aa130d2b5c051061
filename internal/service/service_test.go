package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/mr1hm/go-impact-sim/internal/models"
	"github.com/mr1hm/go-impact-sim/internal/neo"
	"github.com/mr1hm/go-impact-sim/internal/observability"
	"github.com/mr1hm/go-impact-sim/internal/physics"
	"github.com/mr1hm/go-impact-sim/internal/repository"
)

var testNow = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

// fakeSource implements AsteroidSource over a fixed catalogue.
type fakeSource struct {
	mu         sync.Mutex
	catalogue  map[string]*models.Asteroid
	approaches []models.ApproachInfo
	err        error
	disabled   bool
	release    chan struct{}

	fetches  atomic.Int64
	searches atomic.Int64
}

func newFakeSource(asteroids ...*models.Asteroid) *fakeSource {
	s := &fakeSource{catalogue: make(map[string]*models.Asteroid)}
	for _, a := range asteroids {
		s.catalogue[a.NASAID] = a
	}
	return s
}

func (s *fakeSource) Configured() bool { return !s.disabled }

func (s *fakeSource) FetchAsteroid(ctx context.Context, id string) (*models.Asteroid, error) {
	s.fetches.Add(1)
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.catalogue[id]
	if !ok {
		return nil, neo.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *fakeSource) Search(ctx context.Context, f models.AsteroidFilter) ([]*models.Asteroid, error) {
	s.searches.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Asteroid
	for _, a := range s.catalogue {
		if f.Matches(a) && len(out) < models.ClampLimit(f.Limit) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeSource) CloseApproaches(ctx context.Context, daysAhead int) ([]models.ApproachInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.approaches, nil
}

// recordingPublisher captures broadcast summaries.
type recordingPublisher struct {
	mu        sync.Mutex
	summaries []*models.SimulationSummary
}

func (p *recordingPublisher) Broadcast(s *models.SimulationSummary) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.summaries = append(p.summaries, s)
}

func (p *recordingPublisher) all() []*models.SimulationSummary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*models.SimulationSummary(nil), p.summaries...)
}

func catalogueAsteroid(id, name string, diameterKm float64, hazardous bool) *models.Asteroid {
	return &models.Asteroid{
		NASAID:               id,
		Name:                 name,
		EstimatedDiameterKm:  models.Float(diameterKm),
		Diameter:             models.DiameterEstimate{AverageKm: models.Float(diameterKm)},
		PotentiallyHazardous: hazardous,
		CompositionType:      physics.CompositionRocky,
		DensityKgM3:          models.Float(physics.DensityFor(physics.CompositionRocky)),
		OrbitalElements: &models.OrbitalElements{
			SemiMajorAxisAU: models.Float(1.458),
			Eccentricity:    models.Float(0.223),
		},
		CloseApproaches: []models.CloseApproach{},
		LastUpdated:     testNow,
		IsActive:        true,
	}
}

type testEnv struct {
	db         *repository.SQLiteDB
	source     *fakeSource
	publisher  *recordingPublisher
	clock      *clockwork.FakeClock
	asteroids  *AsteroidService
	simulation *SimulationService
}

func newTestEnv(t *testing.T, source *fakeSource) *testEnv {
	t.Helper()
	db, err := repository.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	metrics := observability.NewMetricsForTesting()
	clock := clockwork.NewFakeClockAt(testNow)
	publisher := &recordingPublisher{}
	asteroids := NewAsteroidService(db, source, metrics)

	return &testEnv{
		db:         db,
		source:     source,
		publisher:  publisher,
		clock:      clock,
		asteroids:  asteroids,
		simulation: NewSimulationService(asteroids, db, publisher, metrics, clock),
	}
}

var errUpstream = errors.New("connection reset by peer")
