package events

import (
	"context"
	"log"
	"missing-maps-service/internal/ports"
	"strings"
)

// LogPublisher writes resolution events to the standard logger.
type LogPublisher struct{}

func (LogPublisher) PublishResolution(ctx context.Context, ev ports.ResolutionEvent) error {
	log.Printf(
		"event=missing_maps_resolution route_id=%s status=%s missing=%s to_update=%s trace_points=%d err=%q",
		ev.RouteID,
		ev.Status,
		strings.Join(ev.MissingMaps, ","),
		strings.Join(ev.MapsToUpdate, ","),
		ev.TracePoints,
		ev.Error,
	)
	return nil
}
