package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mr1hm/go-impact-sim/internal/models"
)

const popularLimit = 10

func (s *SQLiteDB) AddSimulation(ctx context.Context, sim *models.Simulation) error {
	args, err := simulationColumns(sim)
	if err != nil {
		return err
	}

	const q = `INSERT INTO simulations (name, asteroid_nasa_id, asteroid_name, composition, location_name, nasa_enhanced, is_public, tags, energy_mt, crater_km, data, updated_at, id, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, append(args, sim.ID, sim.CreatedAt.UTC())...); err != nil {
		return fmt.Errorf("add simulation %s: %w", sim.ID, err)
	}
	return nil
}

func (s *SQLiteDB) GetSimulation(ctx context.Context, id string) (*models.Simulation, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM simulations WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get simulation %s: %w", id, err)
	}
	return decodeSimulation(data)
}

// ListSimulations returns simulations newest first.
func (s *SQLiteDB) ListSimulations(ctx context.Context, f models.SimulationFilter) ([]models.Simulation, error) {
	var (
		conds []string
		args  []any
	)
	if f.NASAEnhancedOnly {
		conds = append(conds, "nasa_enhanced = 1")
	}
	if f.Tag != "" {
		conds = append(conds, "EXISTS (SELECT 1 FROM json_each(simulations.tags) WHERE json_each.value = ?)")
		args = append(args, f.Tag)
	}

	q := `SELECT data FROM simulations`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, models.ClampLimit(f.Limit), max(f.Offset, 0))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list simulations: %w", err)
	}
	defer rows.Close()

	sims := make([]models.Simulation, 0)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan simulation: %w", err)
		}
		sim, err := decodeSimulation(data)
		if err != nil {
			return nil, err
		}
		sims = append(sims, *sim)
	}
	return sims, rows.Err()
}

// UpdateSimulation rewrites a stored simulation. It reports false when no
// row has sim.ID.
func (s *SQLiteDB) UpdateSimulation(ctx context.Context, sim *models.Simulation) (bool, error) {
	args, err := simulationColumns(sim)
	if err != nil {
		return false, err
	}

	const q = `UPDATE simulations SET
		name = ?,
		asteroid_nasa_id = ?,
		asteroid_name = ?,
		composition = ?,
		location_name = ?,
		nasa_enhanced = ?,
		is_public = ?,
		tags = ?,
		energy_mt = ?,
		crater_km = ?,
		data = ?,
		updated_at = ?
	WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, append(args, sim.ID)...)
	if err != nil {
		return false, fmt.Errorf("update simulation %s: %w", sim.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteDB) DeleteSimulation(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM simulations WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete simulation %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteDB) SimulationStats(ctx context.Context) (*models.SimulationStats, error) {
	stats := &models.SimulationStats{
		PopularAsteroids: make([]models.AsteroidCount, 0),
		PopularLocations: make([]models.LocationCount, 0),
	}

	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(nasa_enhanced), 0) FROM simulations`).
		Scan(&stats.TotalSimulations, &stats.NASAEnhancedCount)
	if err != nil {
		return nil, fmt.Errorf("simulation totals: %w", err)
	}
	if stats.TotalSimulations > 0 {
		stats.EnhancementRate = float64(stats.NASAEnhancedCount) / float64(stats.TotalSimulations) * 100
	}

	rows, err := s.db.QueryContext(ctx, `SELECT asteroid_nasa_id, MAX(asteroid_name), COUNT(*) AS n FROM simulations
WHERE nasa_enhanced = 1 AND asteroid_nasa_id IS NOT NULL
GROUP BY asteroid_nasa_id ORDER BY n DESC, asteroid_nasa_id LIMIT ?`, popularLimit)
	if err != nil {
		return nil, fmt.Errorf("popular asteroids: %w", err)
	}
	for rows.Next() {
		var (
			c    models.AsteroidCount
			name sql.NullString
		)
		if err := rows.Scan(&c.NASAID, &name, &c.Count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan popular asteroid: %w", err)
		}
		c.Name = name.String
		stats.PopularAsteroids = append(stats.PopularAsteroids, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT COALESCE(location_name, ''), COUNT(*) AS n FROM simulations
GROUP BY location_name ORDER BY n DESC, location_name LIMIT ?`, popularLimit)
	if err != nil {
		return nil, fmt.Errorf("popular locations: %w", err)
	}
	for rows.Next() {
		var c models.LocationCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan popular location: %w", err)
		}
		stats.PopularLocations = append(stats.PopularLocations, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var avgEnergy, avgCrater sql.NullFloat64
	err = s.db.QueryRowContext(ctx, `SELECT AVG(energy_mt), AVG(crater_km) FROM simulations WHERE nasa_enhanced = 1`).
		Scan(&avgEnergy, &avgCrater)
	if err != nil {
		return nil, fmt.Errorf("average metrics: %w", err)
	}
	stats.AverageMetrics = models.AverageMetrics{
		AvgEnergyMt: floatPtr(avgEnergy),
		AvgCraterKm: floatPtr(avgCrater),
	}

	var last time.Time
	err = s.db.QueryRowContext(ctx, `SELECT created_at FROM simulations ORDER BY created_at DESC LIMIT 1`).Scan(&last)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("last simulation: %w", err)
	default:
		stats.LastSimulation = &last
	}

	return stats, nil
}

// simulationColumns returns the mutable column values in the order shared
// by AddSimulation and UpdateSimulation.
func simulationColumns(sim *models.Simulation) ([]any, error) {
	data, err := json.Marshal(sim)
	if err != nil {
		return nil, fmt.Errorf("marshal simulation %s: %w", sim.ID, err)
	}
	tags := sim.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("marshal simulation tags: %w", err)
	}

	var nasaID, asteroidName sql.NullString
	if a := sim.AsteroidData; a != nil {
		asteroidName = sql.NullString{String: a.Name, Valid: true}
		if sim.NASAEnhanced && a.NASAID != "" {
			nasaID = sql.NullString{String: a.NASAID, Valid: true}
		}
	}
	var energy, crater sql.NullFloat64
	if c := sim.Calculation; c != nil {
		energy = sql.NullFloat64{Float64: c.EnergyMt, Valid: true}
		crater = sql.NullFloat64{Float64: c.CraterDiameterKm, Valid: true}
	}

	return []any{
		sim.Name,
		nasaID,
		asteroidName,
		string(sim.Composition()),
		sim.Parameters.ImpactLocation.Name,
		boolInt(sim.NASAEnhanced),
		boolInt(sim.IsPublic),
		string(tagsJSON),
		energy,
		crater,
		data,
		sim.UpdatedAt.UTC(),
	}, nil
}

func decodeSimulation(data []byte) (*models.Simulation, error) {
	var sim models.Simulation
	if err := json.Unmarshal(data, &sim); err != nil {
		return nil, fmt.Errorf("decode simulation: %w", err)
	}
	if sim.Tags == nil {
		sim.Tags = []string{}
	}
	return &sim, nil
}
