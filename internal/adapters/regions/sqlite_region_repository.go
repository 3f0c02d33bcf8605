package regions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"missing-maps-service/internal/ports"
)

// SQLite backed region catalog.
type SqliteRegionRepository struct {
	DB *sql.DB
}

func NewSqliteRegionRepository(db *sql.DB) *SqliteRegionRepository {
	return &SqliteRegionRepository{DB: db}
}

func (s *SqliteRegionRepository) ListRegions(ctx context.Context) ([]ports.Region, error) {
	if s.DB == nil {
		return nil, errors.New("region repository: db is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT
        region_id,
        name,
        min_lat,
        min_lon,
        max_lat,
        max_lon,
        status
    FROM regions
    ORDER BY region_id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list regions: query regions table: %w", err)
	}
	defer rows.Close()

	return scanRegions(rows)
}

func (s *SqliteRegionRepository) SetStatus(ctx context.Context, id string, status ports.RegionStatus) error {
	if s.DB == nil {
		return errors.New("region repository: db is nil")
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE regions SET status = ? WHERE region_id = ?;`, string(status), id)
	if err != nil {
		return fmt.Errorf("set region status id=%s: %w", id, err)
	}
	return requireOneRow(res, id)
}
