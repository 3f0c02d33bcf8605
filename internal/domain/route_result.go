package domain

import (
	"slices"
	"sync"
)

// RouteResult is the outcome of a route calculation that stopped at one or more
// "missing map" points. The routing subsystem owns it; the missing-maps flow
// reads the points and context and writes back the three map-identifier sets.
//
// SetMissingMaps replaces every missing-maps field under one lock, so readers
// observe either the previous state or the new one.
type RouteResult struct {
	mu sync.RWMutex

	appMode         ApplicationMode
	missingPoints   []GeoPoint
	missingCtx      *RoutingContext
	missingMaps     []string
	mapsToUpdate    []string
	potentiallyUsed []string
}

func NewRouteResult(appMode ApplicationMode, missingPoints []GeoPoint, ctx *RoutingContext) *RouteResult {
	return &RouteResult{
		appMode:       appMode,
		missingPoints: slices.Clone(missingPoints),
		missingCtx:    ctx,
	}
}

func (r *RouteResult) AppMode() ApplicationMode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.appMode
}

// MissingMapsPoints returns a copy of the points where the route hit missing maps.
func (r *RouteResult) MissingMapsPoints() []GeoPoint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.missingPoints)
}

func (r *RouteResult) MissingMapsRoutingContext() *RoutingContext {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.missingCtx
}

func (r *RouteResult) MissingMaps() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.missingMaps)
}

func (r *RouteResult) MapsToUpdate() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.mapsToUpdate)
}

func (r *RouteResult) PotentiallyUsedMaps() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.potentiallyUsed)
}

// SetMissingMaps replaces the three map sets, the context and the missing points.
func (r *RouteResult) SetMissingMaps(
	missing, toUpdate, potentiallyUsed []string,
	ctx *RoutingContext,
	missingPoints []GeoPoint,
) {
	missing = slices.Clone(missing)
	toUpdate = slices.Clone(toUpdate)
	potentiallyUsed = slices.Clone(potentiallyUsed)
	missingPoints = slices.Clone(missingPoints)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.missingMaps = missing
	r.mapsToUpdate = toUpdate
	r.potentiallyUsed = potentiallyUsed
	r.missingCtx = ctx
	r.missingPoints = missingPoints
}
