package repository

import (
	"context"

	"github.com/mr1hm/go-impact-sim/internal/models"
)

// Lookups return (nil, nil) when the row does not exist.

type AsteroidRepository interface {
	UpsertAsteroid(ctx context.Context, a *models.Asteroid) error
	GetAsteroid(ctx context.Context, nasaID string) (*models.Asteroid, error)
	ListAsteroids(ctx context.Context, f models.AsteroidFilter) ([]models.Asteroid, error)
	CountAsteroids(ctx context.Context, f models.AsteroidFilter) (int, error)
	AsteroidStats(ctx context.Context) (*models.AsteroidStats, error)
}

type SimulationRepository interface {
	AddSimulation(ctx context.Context, s *models.Simulation) error
	GetSimulation(ctx context.Context, id string) (*models.Simulation, error)
	ListSimulations(ctx context.Context, f models.SimulationFilter) ([]models.Simulation, error)
	UpdateSimulation(ctx context.Context, s *models.Simulation) (bool, error)
	DeleteSimulation(ctx context.Context, id string) (bool, error)
	SimulationStats(ctx context.Context) (*models.SimulationStats, error)
}
