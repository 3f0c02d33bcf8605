package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"missing-maps-service/internal/domain"
	"missing-maps-service/internal/platform/obs"
)

// SQLSettingsStore serves routing preferences from Postgres.
// The routing type is process configuration and is fixed at construction.
type SQLSettingsStore struct {
	DB          *sql.DB
	routingType domain.RoutingType
}

func NewSQLSettingsStore(db *sql.DB, routingType domain.RoutingType) *SQLSettingsStore {
	return &SQLSettingsStore{DB: db, routingType: routingType}
}

func (s *SQLSettingsStore) RoutingParameters(
	ctx context.Context,
	mode domain.ApplicationMode,
) (_ []domain.RoutingParameter, err error) {
	defer obs.Time(ctx, "settings.RoutingParameters")(&err)

	if s.DB == nil {
		return nil, errors.New("settings store: db is nil")
	}

	q := `
	SELECT param_id, param_type, default_bool
    FROM routing_parameters
    WHERE app_mode = $1
    ORDER BY position, param_id;
	`

	rows, err := s.DB.QueryContext(ctx, q, string(mode))
	if err != nil {
		return nil, fmt.Errorf("routing parameters: query routing_parameters table: %w", err)
	}
	defer rows.Close()

	return scanParameters(rows)
}

func (s *SQLSettingsStore) BooleanPreference(
	ctx context.Context,
	mode domain.ApplicationMode,
	param domain.RoutingParameter,
) (bool, error) {
	if s.DB == nil {
		return false, errors.New("settings store: db is nil")
	}

	q := `
	SELECT value
    FROM routing_preferences
    WHERE app_mode = $1 AND param_id = $2;
	`

	var v bool
	err := s.DB.QueryRowContext(ctx, q, string(mode), param.ID).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return param.DefaultBoolean, nil
	}
	if err != nil {
		return false, fmt.Errorf("boolean preference %s/%s: %w", mode, param.ID, err)
	}
	return v, nil
}

func (s *SQLSettingsStore) SetBooleanPreference(
	ctx context.Context,
	mode domain.ApplicationMode,
	paramID string,
	value bool,
) (err error) {
	defer obs.Time(ctx, "settings.SetBooleanPreference")(&err)

	if s.DB == nil {
		return errors.New("settings store: db is nil")
	}

	q := `
	INSERT INTO routing_preferences (app_mode, param_id, value)
    VALUES ($1, $2, $3)
    ON CONFLICT (app_mode, param_id)
    DO UPDATE SET value = EXCLUDED.value;
	`

	if _, err := s.DB.ExecContext(ctx, q, string(mode), paramID, value); err != nil {
		return fmt.Errorf("set boolean preference %s/%s: %w", mode, paramID, err)
	}
	return nil
}

func (s *SQLSettingsStore) RoutingType(ctx context.Context) (domain.RoutingType, error) {
	return s.routingType, nil
}

func scanParameters(rows *sql.Rows) ([]domain.RoutingParameter, error) {
	var out []domain.RoutingParameter
	for rows.Next() {
		var p domain.RoutingParameter
		var typ string
		if err := rows.Scan(&p.ID, &typ, &p.DefaultBoolean); err != nil {
			return nil, fmt.Errorf("routing parameters: scan rows: %w", err)
		}
		p.Type = domain.ParameterType(typ)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("routing parameters: row iteration: %w", err)
	}
	return out, nil
}
