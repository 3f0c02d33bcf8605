package ports

import (
	"context"
	"missing-maps-service/internal/domain"
)

type ResolveStatus string

const (
	StatusIdle      ResolveStatus = "idle"
	StatusResolving ResolveStatus = "resolving"
	StatusResolved  ResolveStatus = "resolved"
	StatusFailed    ResolveStatus = "failed"
)

// RouteRecord is a registered route plus the bookkeeping of its last resolution.
type RouteRecord struct {
	ID        string
	Result    *domain.RouteResult
	Status    ResolveStatus
	LastError string
	Trace     []domain.GeoPoint
}

// Port: registry of route results awaiting missing-maps resolution.
type RouteRepository interface {
	Create(ctx context.Context, rr *domain.RouteResult) (string, error)
	Get(ctx context.Context, id string) (RouteRecord, bool, error)
	// Mark id as resolving. Returns false if a resolution is already in flight.
	TryBeginResolve(ctx context.Context, id string) (bool, error)
	// Record the end of a resolution. trace is nil on failure.
	FinishResolve(ctx context.Context, id string, trace []domain.GeoPoint, resolveErr error) error
}
