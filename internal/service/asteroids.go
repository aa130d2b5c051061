// Package service holds the simulator's use cases on top of the store, the
// NEO data source and the physics engine.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/mr1hm/go-impact-sim/internal/models"
	"github.com/mr1hm/go-impact-sim/internal/neo"
	"github.com/mr1hm/go-impact-sim/internal/observability"
	"github.com/mr1hm/go-impact-sim/internal/repository"
)

const (
	MaxDaysAhead     = 365
	MaxApproachLimit = 50
	featuredFetchers = 3

	// fetchTimeout bounds a shared upstream lookup, which outlives the
	// request that started it.
	fetchTimeout = 30 * time.Second
)

// AsteroidSource is the reference data source behind the local cache.
type AsteroidSource interface {
	FetchAsteroid(ctx context.Context, id string) (*models.Asteroid, error)
	Search(ctx context.Context, f models.AsteroidFilter) ([]*models.Asteroid, error)
	CloseApproaches(ctx context.Context, daysAhead int) ([]models.ApproachInfo, error)
	Configured() bool
}

type featured struct {
	id           string
	description  string
	significance string
}

var featuredAsteroids = []featured{
	{"2000433", "433 Eros - First asteroid landed on by spacecraft (NEAR Shoemaker)", "Space exploration milestone"},
	{"3554375", "101955 Bennu - Target of OSIRIS-REx sample return mission", "Active sample return target"},
	{"99942", "99942 Apophis - Will make close approach to Earth in 2029", "2029 close approach - no impact risk"},
	{"1566", "1566 Icarus - High-velocity Apollo asteroid, first radar-detected", "High-velocity impact scenario"},
	{"4179", "4179 Toutatis - Tumbling asteroid studied by radar", "Complex rotation dynamics"},
	{"25143", "25143 Itokawa - Target of Japan's Hayabusa mission", "Sample return success"},
}

type AsteroidService struct {
	repo    repository.AsteroidRepository
	source  AsteroidSource
	metrics *observability.Metrics
	group   singleflight.Group
}

func NewAsteroidService(repo repository.AsteroidRepository, source AsteroidSource, metrics *observability.Metrics) *AsteroidService {
	return &AsteroidService{
		repo:    repo,
		source:  source,
		metrics: metrics,
	}
}

// SourceConfigured reports whether the NEO data source can be queried.
func (s *AsteroidService) SourceConfigured() bool {
	return s.source != nil && s.source.Configured()
}

// Get returns the cached asteroid or fetches and caches it. Concurrent
// misses for the same id share one upstream request.
func (s *AsteroidService) Get(ctx context.Context, nasaID string) (*models.Asteroid, error) {
	if nasaID == "" {
		return nil, models.Invalid("nasa_id", "must not be empty")
	}

	cached, err := s.repo.GetAsteroid(ctx, nasaID)
	if err != nil {
		return nil, fmt.Errorf("asteroid cache lookup: %w", err)
	}
	if cached != nil {
		s.observeCache("hit")
		return cached, nil
	}
	s.observeCache("miss")

	v, err, _ := s.group.Do(nasaID, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		a, err := s.fetch(fetchCtx, nasaID)
		if err != nil {
			return nil, err
		}
		if err := s.repo.UpsertAsteroid(fetchCtx, a); err != nil {
			slog.Warn("failed to cache asteroid", "nasa_id", a.NASAID, "error", err)
		}
		return a, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Asteroid), nil
}

func (s *AsteroidService) fetch(ctx context.Context, nasaID string) (*models.Asteroid, error) {
	if s.source == nil {
		return nil, fmt.Errorf("asteroid %s: %w", nasaID, models.ErrSourceUnavailable)
	}
	a, err := s.source.FetchAsteroid(ctx, nasaID)
	if err != nil {
		return nil, sourceError(fmt.Sprintf("asteroid %s", nasaID), err)
	}
	return a, nil
}

// List serves asteroids from the cache, falling back to a catalogue search
// when refresh is set or the cache holds nothing for the first page.
// Searched bodies are cached.
func (s *AsteroidService) List(ctx context.Context, f models.AsteroidFilter, refresh bool) (*models.AsteroidSearchResult, error) {
	f.Limit = models.ClampLimit(f.Limit)
	if f.Offset < 0 {
		f.Offset = 0
	}

	if !refresh {
		cached, err := s.repo.ListAsteroids(ctx, f)
		if err != nil {
			return nil, err
		}
		if len(cached) > 0 || f.Offset > 0 || !s.SourceConfigured() {
			total, err := s.repo.CountAsteroids(ctx, f)
			if err != nil {
				return nil, err
			}
			return &models.AsteroidSearchResult{
				Asteroids: cached,
				Total:     total,
				Limit:     f.Limit,
				Offset:    f.Offset,
				HasMore:   f.Offset+len(cached) < total,
			}, nil
		}
	}

	if !s.SourceConfigured() {
		return nil, fmt.Errorf("refresh asteroids: %w", models.ErrSourceUnavailable)
	}
	found, err := s.source.Search(ctx, f)
	if err != nil {
		return nil, sourceError("search asteroids", err)
	}

	asteroids := make([]models.Asteroid, 0, len(found))
	for _, a := range found {
		if err := s.repo.UpsertAsteroid(ctx, a); err != nil {
			slog.Warn("failed to cache asteroid", "nasa_id", a.NASAID, "error", err)
		}
		asteroids = append(asteroids, *a)
	}
	return &models.AsteroidSearchResult{
		Asteroids: asteroids,
		Total:     len(asteroids),
		Limit:     f.Limit,
		Offset:    0,
		HasMore:   len(asteroids) == f.Limit,
	}, nil
}

// Featured returns the curated list of well-known bodies in a fixed order.
// Bodies that cannot be loaded are left out.
func (s *AsteroidService) Featured(ctx context.Context) []models.FeaturedAsteroid {
	slots := make([]*models.FeaturedAsteroid, len(featuredAsteroids))

	var g errgroup.Group
	g.SetLimit(featuredFetchers)
	for i, f := range featuredAsteroids {
		g.Go(func() error {
			a, err := s.Get(ctx, f.id)
			if err != nil {
				slog.Warn("failed to fetch featured asteroid", "nasa_id", f.id, "error", err)
				return nil
			}
			slots[i] = &models.FeaturedAsteroid{
				Asteroid:     *a,
				Description:  f.description,
				Significance: f.significance,
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]models.FeaturedAsteroid, 0, len(slots))
	for _, f := range slots {
		if f != nil {
			out = append(out, *f)
		}
	}
	return out
}

// CloseApproaches reports bodies approaching within daysAhead days,
// nearest first, truncated to limit.
func (s *AsteroidService) CloseApproaches(ctx context.Context, daysAhead, limit int) (*models.CloseApproachReport, error) {
	if daysAhead < 1 || daysAhead > MaxDaysAhead {
		return nil, models.Invalid("days_ahead", fmt.Sprintf("must be between 1 and %d", MaxDaysAhead))
	}
	if limit < 1 || limit > MaxApproachLimit {
		return nil, models.Invalid("limit", fmt.Sprintf("must be between 1 and %d", MaxApproachLimit))
	}
	if !s.SourceConfigured() {
		return nil, fmt.Errorf("close approaches: %w", models.ErrSourceUnavailable)
	}

	all, err := s.source.CloseApproaches(ctx, daysAhead)
	if err != nil {
		if errors.Is(err, models.ErrInvalidInput) {
			return nil, err
		}
		return nil, sourceError("close approaches", err)
	}

	returned := all[:min(limit, len(all))]
	return &models.CloseApproachReport{
		ApproachingAsteroids: returned,
		TotalFound:           len(all),
		Returned:             len(returned),
		DaysAhead:            daysAhead,
	}, nil
}

func (s *AsteroidService) Stats(ctx context.Context) (*models.AsteroidStats, error) {
	return s.repo.AsteroidStats(ctx)
}

func (s *AsteroidService) observeCache(result string) {
	if s.metrics != nil {
		s.metrics.AsteroidCache.WithLabelValues(result).Inc()
	}
}

// sourceError maps NEO client failures onto the domain errors.
func sourceError(op string, err error) error {
	switch {
	case errors.Is(err, neo.ErrNotFound):
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, models.ErrSourceUnavailable, err)
	}
}
