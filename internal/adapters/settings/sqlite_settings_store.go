package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"missing-maps-service/internal/domain"
)

// SQLite backed routing preference store.
type SqliteSettingsStore struct {
	DB          *sql.DB
	routingType domain.RoutingType
}

func NewSqliteSettingsStore(db *sql.DB, routingType domain.RoutingType) *SqliteSettingsStore {
	return &SqliteSettingsStore{DB: db, routingType: routingType}
}

// Fetch the parameters of mode in their configured order.
func (s *SqliteSettingsStore) RoutingParameters(ctx context.Context, mode domain.ApplicationMode) ([]domain.RoutingParameter, error) {
	if s.DB == nil {
		return nil, errors.New("settings store: db is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT
        param_id,
        param_type,
        default_bool
    FROM routing_parameters
    WHERE app_mode = ?
    ORDER BY position, param_id;
	`, string(mode))
	if err != nil {
		return nil, fmt.Errorf("routing parameters: query routing_parameters table: %w", err)
	}
	defer rows.Close()

	return scanParameters(rows)
}

func (s *SqliteSettingsStore) BooleanPreference(
	ctx context.Context,
	mode domain.ApplicationMode,
	param domain.RoutingParameter,
) (bool, error) {
	if s.DB == nil {
		return false, errors.New("settings store: db is nil")
	}

	var v bool
	err := s.DB.QueryRowContext(ctx, `
	SELECT value
    FROM routing_preferences
    WHERE app_mode = ? AND param_id = ?;
	`, string(mode), param.ID).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return param.DefaultBoolean, nil
	}
	if err != nil {
		return false, fmt.Errorf("boolean preference %s/%s: %w", mode, param.ID, err)
	}
	return v, nil
}

// Store a boolean preference, replacing any previous value.
func (s *SqliteSettingsStore) SetBooleanPreference(
	ctx context.Context,
	mode domain.ApplicationMode,
	paramID string,
	value bool,
) error {
	if s.DB == nil {
		return errors.New("settings store: db is nil")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO routing_preferences (
        app_mode,
        param_id,
        value
    )
    VALUES (?, ?, ?);
	`, string(mode), paramID, value)
	if err != nil {
		return fmt.Errorf("set boolean preference %s/%s: %w", mode, paramID, err)
	}
	return nil
}

func (s *SqliteSettingsStore) RoutingType(ctx context.Context) (domain.RoutingType, error) {
	return s.routingType, nil
}
