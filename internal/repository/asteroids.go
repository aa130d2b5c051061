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

// UpsertAsteroid inserts or replaces the cached record for a.NASAID.
func (s *SQLiteDB) UpsertAsteroid(ctx context.Context, a *models.Asteroid) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal asteroid %s: %w", a.NASAID, err)
	}

	const q = `INSERT INTO asteroids (nasa_id, name, diameter_km, potentially_hazardous, neo_type, composition, has_close_approaches, is_active, data, last_updated)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(nasa_id) DO UPDATE SET
	name = excluded.name,
	diameter_km = excluded.diameter_km,
	potentially_hazardous = excluded.potentially_hazardous,
	neo_type = excluded.neo_type,
	composition = excluded.composition,
	has_close_approaches = excluded.has_close_approaches,
	is_active = excluded.is_active,
	data = excluded.data,
	last_updated = excluded.last_updated`

	_, err = s.db.ExecContext(ctx, q,
		a.NASAID,
		a.Name,
		nullFloat(a.EstimatedDiameterKm),
		boolInt(a.PotentiallyHazardous),
		a.NEOType,
		string(a.CompositionType),
		boolInt(len(a.CloseApproaches) > 0),
		boolInt(a.IsActive),
		data,
		a.LastUpdated.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert asteroid %s: %w", a.NASAID, err)
	}
	return nil
}

func (s *SQLiteDB) GetAsteroid(ctx context.Context, nasaID string) (*models.Asteroid, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM asteroids WHERE nasa_id = ?`, nasaID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get asteroid %s: %w", nasaID, err)
	}

	var a models.Asteroid
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode asteroid %s: %w", nasaID, err)
	}
	return &a, nil
}

// ListAsteroids returns active cached asteroids matching f, largest first.
func (s *SQLiteDB) ListAsteroids(ctx context.Context, f models.AsteroidFilter) ([]models.Asteroid, error) {
	where, args := asteroidWhere(f)
	q := `SELECT data FROM asteroids` + where + ` ORDER BY diameter_km DESC, nasa_id LIMIT ? OFFSET ?`
	args = append(args, models.ClampLimit(f.Limit), max(f.Offset, 0))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list asteroids: %w", err)
	}
	defer rows.Close()

	asteroids := make([]models.Asteroid, 0)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan asteroid: %w", err)
		}
		var a models.Asteroid
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("decode asteroid: %w", err)
		}
		asteroids = append(asteroids, a)
	}
	return asteroids, rows.Err()
}

// CountAsteroids counts active cached asteroids matching f, ignoring paging.
func (s *SQLiteDB) CountAsteroids(ctx context.Context, f models.AsteroidFilter) (int, error) {
	where, args := asteroidWhere(f)
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM asteroids`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count asteroids: %w", err)
	}
	return n, nil
}

func asteroidWhere(f models.AsteroidFilter) (string, []any) {
	conds := []string{"is_active = 1"}
	var args []any

	if f.DiameterMinKm != nil {
		conds = append(conds, "(diameter_km IS NULL OR diameter_km >= ?)")
		args = append(args, *f.DiameterMinKm)
	}
	if f.DiameterMaxKm != nil {
		conds = append(conds, "(diameter_km IS NULL OR diameter_km <= ?)")
		args = append(args, *f.DiameterMaxKm)
	}
	if f.PotentiallyHazardous != nil {
		conds = append(conds, "potentially_hazardous = ?")
		args = append(args, boolInt(*f.PotentiallyHazardous))
	}
	if f.NEOType != "" {
		conds = append(conds, "neo_type = ?")
		args = append(args, f.NEOType)
	}
	if f.HasCloseApproaches != nil && *f.HasCloseApproaches {
		conds = append(conds, "has_close_approaches = 1")
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *SQLiteDB) AsteroidStats(ctx context.Context) (*models.AsteroidStats, error) {
	stats := &models.AsteroidStats{
		CompositionDistribution: make([]models.CompositionCount, 0),
	}

	var avg, maxD, minD sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(potentially_hazardous), 0), AVG(diameter_km), MAX(diameter_km), MIN(diameter_km) FROM asteroids WHERE is_active = 1`).
		Scan(&stats.TotalAsteroids, &stats.PotentiallyHazardous, &avg, &maxD, &minD)
	if err != nil {
		return nil, fmt.Errorf("asteroid totals: %w", err)
	}
	stats.SizeStatistics = models.SizeStatistics{
		AvgDiameterKm: floatPtr(avg),
		MaxDiameterKm: floatPtr(maxD),
		MinDiameterKm: floatPtr(minD),
	}

	rows, err := s.db.QueryContext(ctx, `SELECT composition, COUNT(*) AS n FROM asteroids WHERE is_active = 1 GROUP BY composition ORDER BY n DESC, composition`)
	if err != nil {
		return nil, fmt.Errorf("composition distribution: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c models.CompositionCount
		if err := rows.Scan(&c.Composition, &c.Count); err != nil {
			return nil, fmt.Errorf("scan composition: %w", err)
		}
		stats.CompositionDistribution = append(stats.CompositionDistribution, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var last time.Time
	err = s.db.QueryRowContext(ctx, `SELECT last_updated FROM asteroids WHERE is_active = 1 ORDER BY last_updated DESC LIMIT 1`).Scan(&last)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("asteroid last updated: %w", err)
	default:
		stats.LastUpdated = &last
	}

	return stats, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	return &f.Float64
}
