package ports

import (
	"context"
	"time"
)

// ResolutionEvent is emitted once per finished missing-maps resolution.
type ResolutionEvent struct {
	RouteID         string    `json:"route_id"`
	Status          string    `json:"status"`
	Error           string    `json:"error,omitempty"`
	MissingMaps     []string  `json:"missing_maps"`
	MapsToUpdate    []string  `json:"maps_to_update"`
	PotentiallyUsed []string  `json:"potentially_used_maps"`
	TracePoints     int       `json:"trace_points"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// Port: fan-out of resolution outcomes to interested consumers.
type ResolutionPublisher interface {
	PublishResolution(ctx context.Context, ev ResolutionEvent) error
}
