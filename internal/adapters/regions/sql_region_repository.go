package regions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"missing-maps-service/internal/platform/obs"
	"missing-maps-service/internal/ports"
)

// SQLRegionRepository reads the region catalog from Postgres.
type SQLRegionRepository struct {
	DB *sql.DB
}

func NewSQLRegionRepository(db *sql.DB) *SQLRegionRepository {
	return &SQLRegionRepository{DB: db}
}

func (s *SQLRegionRepository) ListRegions(ctx context.Context) (_ []ports.Region, err error) {
	defer obs.Time(ctx, "regions.ListRegions")(&err)

	if s.DB == nil {
		return nil, errors.New("region repository: db is nil")
	}

	q := `
	SELECT region_id, name, min_lat, min_lon, max_lat, max_lon, status
    FROM regions
    ORDER BY region_id;
	`

	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list regions: query regions table: %w", err)
	}
	defer rows.Close()

	return scanRegions(rows)
}

// Update the download state of a region.
func (s *SQLRegionRepository) SetStatus(ctx context.Context, id string, status ports.RegionStatus) (err error) {
	defer obs.Time(ctx, "regions.SetStatus")(&err)

	if s.DB == nil {
		return errors.New("region repository: db is nil")
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE regions SET status = $1 WHERE region_id = $2;`, string(status), id)
	if err != nil {
		return fmt.Errorf("set region status id=%s: %w", id, err)
	}
	return requireOneRow(res, id)
}

func scanRegions(rows *sql.Rows) ([]ports.Region, error) {
	var out []ports.Region
	for rows.Next() {
		var r ports.Region
		var status string
		if err := rows.Scan(&r.ID, &r.Name, &r.MinLat, &r.MinLon, &r.MaxLat, &r.MaxLon, &status); err != nil {
			return nil, fmt.Errorf("list regions: scan rows: %w", err)
		}
		r.Status = ports.RegionStatus(status)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list regions: row iteration: %w", err)
	}
	return out, nil
}

func requireOneRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set region status id=%s: rows affected: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("set region status id=%s: %w", id, ports.ErrRegionNotFound)
	}
	return nil
}
