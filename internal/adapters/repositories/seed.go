package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"missing-maps-service/internal/domain"
	"missing-maps-service/internal/ports"
	"os"
	"strings"
)

type RegionSeed struct {
	RegionID string  `json:"region_id"`
	Name     string  `json:"name"`
	MinLat   float64 `json:"min_lat"`
	MinLon   float64 `json:"min_lon"`
	MaxLat   float64 `json:"max_lat"`
	MaxLon   float64 `json:"max_lon"`
	Status   string  `json:"status"`
}

type RoutingParameterSeed struct {
	AppMode     string `json:"app_mode"`
	ParamID     string `json:"param_id"`
	ParamType   string `json:"param_type"`
	DefaultBool bool   `json:"default_bool"`
}

type RoutingPreferenceSeed struct {
	AppMode string `json:"app_mode"`
	ParamID string `json:"param_id"`
	Value   bool   `json:"value"`
}

type Seed struct {
	Regions            []RegionSeed            `json:"regions"`
	RoutingParameters  []RoutingParameterSeed  `json:"routing_parameters"`
	RoutingPreferences []RoutingPreferenceSeed `json:"routing_preferences"`
}

// Populate the database with the region catalog and routing settings from a JSON file.
// Routing parameters keep their file order per app mode.
func SeedFromJSON(db *sql.DB, dialect Dialect, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed: read %q: %w", jsonPath, err)
	}

	var data Seed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed: parse json: %w", err)
	}

	if err := validateSeed(&data); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := seedRegions(tx, dialect, data.Regions); err != nil {
		return err
	}
	if err := seedRoutingParameters(tx, dialect, data.RoutingParameters); err != nil {
		return err
	}
	if err := seedRoutingPreferences(tx, dialect, data.RoutingPreferences); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}

func validateSeed(data *Seed) error {
	for i := range data.Regions {
		r := &data.Regions[i]
		r.RegionID = strings.TrimSpace(r.RegionID)
		if r.RegionID == "" {
			return fmt.Errorf("seed regions: item at index %d: region_id cannot be empty", i+1)
		}
		if r.MinLat > r.MaxLat || r.MinLon > r.MaxLon {
			return fmt.Errorf("seed regions: region_id=%s: min corner exceeds max corner", r.RegionID)
		}
		if r.Status == "" {
			r.Status = string(ports.RegionAbsent)
		}
		if _, err := ports.ParseRegionStatus(r.Status); err != nil {
			return fmt.Errorf("seed regions: region_id=%s: %w", r.RegionID, err)
		}
	}

	for i := range data.RoutingParameters {
		p := &data.RoutingParameters[i]
		p.AppMode = strings.TrimSpace(p.AppMode)
		p.ParamID = strings.TrimSpace(p.ParamID)
		if p.AppMode == "" || p.ParamID == "" {
			return fmt.Errorf("seed routing parameters: item at index %d: app_mode and param_id are required", i+1)
		}
		if p.ParamType == "" {
			p.ParamType = string(domain.ParameterBoolean)
		}
	}

	for i, p := range data.RoutingPreferences {
		if strings.TrimSpace(p.AppMode) == "" || strings.TrimSpace(p.ParamID) == "" {
			return fmt.Errorf("seed routing preferences: item at index %d: app_mode and param_id are required", i+1)
		}
	}

	return nil
}

// seedRegions refreshes names and boxes. status is only written for new
// regions; afterwards it belongs to the status endpoint.
func seedRegions(tx *sql.Tx, dialect Dialect, rows []RegionSeed) error {
	stmt, err := tx.Prepare(dialect.rebind(`
	INSERT INTO regions (
		region_id,
		name,
		min_lat,
		min_lon,
		max_lat,
		max_lon,
		status
	)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (region_id)
	DO UPDATE SET
		name = excluded.name,
		min_lat = excluded.min_lat,
		min_lon = excluded.min_lon,
		max_lat = excluded.max_lat,
		max_lon = excluded.max_lon;
	`))
	if err != nil {
		return fmt.Errorf("seed regions: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(r.RegionID, r.Name, r.MinLat, r.MinLon, r.MaxLat, r.MaxLon, r.Status); err != nil {
			return fmt.Errorf("seed regions: insert region_id=%s: %w", r.RegionID, err)
		}
	}
	return nil
}

func seedRoutingParameters(tx *sql.Tx, dialect Dialect, rows []RoutingParameterSeed) error {
	stmt, err := tx.Prepare(dialect.rebind(`
	INSERT INTO routing_parameters (
		app_mode,
		param_id,
		param_type,
		default_bool,
		position
	)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (app_mode, param_id)
	DO UPDATE SET
		param_type = excluded.param_type,
		default_bool = excluded.default_bool,
		position = excluded.position;
	`))
	if err != nil {
		return fmt.Errorf("seed routing parameters: prepare insert: %w", err)
	}
	defer stmt.Close()

	positions := map[string]int{}
	for _, p := range rows {
		pos := positions[p.AppMode]
		positions[p.AppMode] = pos + 1

		if _, err := stmt.Exec(p.AppMode, p.ParamID, p.ParamType, p.DefaultBool, pos); err != nil {
			return fmt.Errorf("seed routing parameters: insert %s/%s: %w", p.AppMode, p.ParamID, err)
		}
	}
	return nil
}

// seedRoutingPreferences inserts defaults only; stored preferences win.
func seedRoutingPreferences(tx *sql.Tx, dialect Dialect, rows []RoutingPreferenceSeed) error {
	stmt, err := tx.Prepare(dialect.rebind(`
	INSERT INTO routing_preferences (
		app_mode,
		param_id,
		value
	)
	VALUES (?, ?, ?)
	ON CONFLICT (app_mode, param_id) DO NOTHING;
	`))
	if err != nil {
		return fmt.Errorf("seed routing preferences: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range rows {
		if _, err := stmt.Exec(p.AppMode, p.ParamID, p.Value); err != nil {
			return fmt.Errorf("seed routing preferences: insert %s/%s: %w", p.AppMode, p.ParamID, err)
		}
	}
	return nil
}
