package regions

import (
	"context"
	"errors"
	"fmt"
	"missing-maps-service/internal/domain"
	"missing-maps-service/internal/platform/obs"
	"missing-maps-service/internal/ports"
	"slices"
)

var ErrPointOutsideCatalog = errors.New("start point is not covered by any region")

// BBoxCalculator classifies the maps a trace passes through by testing every
// point against the bounding boxes of the region catalog.
type BBoxCalculator struct {
	regions ports.RegionRepository
}

func NewBBoxCalculator(regions ports.RegionRepository) *BBoxCalculator {
	return &BBoxCalculator{regions: regions}
}

// CheckForMissingMaps replaces the map sets on rctx.Progress. Every region
// containing start or a trace point is potentially used; absent ones are also
// missing and outdated ones also need an update. Sets are sorted.
func (c *BBoxCalculator) CheckForMissingMaps(
	ctx context.Context,
	rctx *domain.RoutingContext,
	start domain.GeoPoint,
	trace []domain.GeoPoint,
	useHHRouting bool,
) (err error) {
	defer obs.Time(ctx, "regions.CheckForMissingMaps")(&err)

	if rctx == nil {
		return errors.New("bbox calculator: routing context is nil")
	}

	catalog, err := c.regions.ListRegions(ctx)
	if err != nil {
		return fmt.Errorf("bbox calculator: %w", err)
	}

	used := map[string]ports.Region{}
	covered := collect(catalog, start, used)
	if !covered {
		return fmt.Errorf("bbox calculator: %s: %w", start, ErrPointOutsideCatalog)
	}
	for _, p := range trace {
		collect(catalog, p, used)
	}

	var missing, toUpdate, potentiallyUsed []string
	for id, r := range used {
		potentiallyUsed = append(potentiallyUsed, id)
		switch r.Status {
		case ports.RegionAbsent:
			missing = append(missing, id)
		case ports.RegionOutdated:
			toUpdate = append(toUpdate, id)
		}
	}
	slices.Sort(missing)
	slices.Sort(toUpdate)
	slices.Sort(potentiallyUsed)

	if rctx.Progress == nil {
		rctx.Progress = &domain.CalculationProgress{}
	}
	rctx.Progress.MissingMaps = missing
	rctx.Progress.MapsToUpdate = toUpdate
	rctx.Progress.PotentiallyUsedMaps = potentiallyUsed
	rctx.Progress.UsedHHRouting = useHHRouting

	return nil
}

// collect adds every region containing p to used and reports whether any did.
func collect(catalog []ports.Region, p domain.GeoPoint, used map[string]ports.Region) bool {
	found := false
	for _, r := range catalog {
		if r.Contains(p.Lat, p.Lon) {
			used[r.ID] = r
			found = true
		}
	}
	return found
}
