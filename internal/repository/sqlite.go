package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// :memory: databases are per connection.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS asteroids (
			nasa_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			diameter_km REAL,
			potentially_hazardous INTEGER NOT NULL DEFAULT 0,
			neo_type TEXT,
			composition TEXT NOT NULL,
			has_close_approaches INTEGER NOT NULL DEFAULT 0,
			is_active INTEGER NOT NULL DEFAULT 1,
			data BLOB NOT NULL,
			last_updated DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS simulations (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			asteroid_nasa_id TEXT,
			asteroid_name TEXT,
			composition TEXT,
			location_name TEXT,
			nasa_enhanced INTEGER NOT NULL DEFAULT 0,
			is_public INTEGER NOT NULL DEFAULT 0,
			tags TEXT NOT NULL DEFAULT '[]',
			energy_mt REAL,
			crater_km REAL,
			data BLOB NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_asteroids_diameter ON asteroids(diameter_km);
		CREATE INDEX IF NOT EXISTS idx_asteroids_hazardous ON asteroids(potentially_hazardous);
		CREATE INDEX IF NOT EXISTS idx_simulations_created_at ON simulations(created_at);
		CREATE INDEX IF NOT EXISTS idx_simulations_asteroid ON simulations(asteroid_nasa_id);
  	`

	_, err := s.db.Exec(schema)
	return err
}

// Ping checks the database connection.
func (s *SQLiteDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
