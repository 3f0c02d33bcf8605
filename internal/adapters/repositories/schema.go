package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the region catalog and routing settings schema.
// The DDL is accepted by both SQLite and Postgres.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRegionsQuery := `
	CREATE TABLE IF NOT EXISTS regions (
		region_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		min_lat DOUBLE PRECISION NOT NULL,
		min_lon DOUBLE PRECISION NOT NULL,
		max_lat DOUBLE PRECISION NOT NULL,
		max_lon DOUBLE PRECISION NOT NULL,
		status TEXT NOT NULL DEFAULT 'absent'
	);
	`

	createRoutingParametersQuery := `
	CREATE TABLE IF NOT EXISTS routing_parameters (
        app_mode TEXT NOT NULL,
        param_id TEXT NOT NULL,
        param_type TEXT NOT NULL,
        default_bool BOOLEAN NOT NULL DEFAULT FALSE,
        position INTEGER NOT NULL,
        PRIMARY KEY (app_mode, param_id)
    );
	`

	createRoutingPreferencesQuery := `
	CREATE TABLE IF NOT EXISTS routing_preferences (
        app_mode TEXT NOT NULL,
        param_id TEXT NOT NULL,
        value BOOLEAN NOT NULL,
        PRIMARY KEY (app_mode, param_id)
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_routing_parameters_mode_position
    ON routing_parameters(app_mode, position);
	`

	statements := []string{
		createRegionsQuery,
		createRoutingParametersQuery,
		createRoutingPreferencesQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
