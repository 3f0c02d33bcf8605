package ports

import (
	"context"
	"missing-maps-service/internal/domain"
)

// Contract for re-evaluating which maps a route needs.
type MissingMapsCalculator interface {
	// Check which maps the trace from start passes through and record the
	// missing, to-update and potentially-used sets on rctx.Progress.
	CheckForMissingMaps(
		ctx context.Context,
		rctx *domain.RoutingContext,
		start domain.GeoPoint,
		trace []domain.GeoPoint,
		useHHRouting bool,
	) error
}
