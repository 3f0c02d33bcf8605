package ports

import (
	"context"
	"errors"
	"fmt"
)

// ErrRegionNotFound is returned by status writers for unknown region IDs.
var ErrRegionNotFound = errors.New("region not found")

type RegionStatus string

const (
	RegionInstalled RegionStatus = "installed"
	RegionOutdated  RegionStatus = "outdated"
	RegionAbsent    RegionStatus = "absent"
)

// Map region with its bounding box and local download state.
type Region struct {
	ID     string
	Name   string
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
	Status RegionStatus
}

// Contains reports whether (lat, lon) falls inside the region's box, edges included.
func (r Region) Contains(lat, lon float64) bool {
	return lat >= r.MinLat && lat <= r.MaxLat && lon >= r.MinLon && lon <= r.MaxLon
}

// Port: a boundary for reading the map region catalog.
type RegionRepository interface {
	ListRegions(ctx context.Context) ([]Region, error)
}

// Port: updating the local download state of catalog regions.
type RegionStatusWriter interface {
	SetStatus(ctx context.Context, id string, status RegionStatus) error
}

// ParseRegionStatus validates s as a RegionStatus.
func ParseRegionStatus(s string) (RegionStatus, error) {
	switch st := RegionStatus(s); st {
	case RegionInstalled, RegionOutdated, RegionAbsent:
		return st, nil
	}
	return "", fmt.Errorf("parse region status: unknown status %q", s)
}
