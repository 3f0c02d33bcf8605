package repositories

import (
	"context"
	"errors"
	"fmt"
	"missing-maps-service/internal/domain"
	"missing-maps-service/internal/ports"
	"slices"
	"sync"

	"github.com/google/uuid"
)

var ErrRouteNotFound = errors.New("route not found")

// MemoryRouteRepository keeps route results in process memory.
// Safe for concurrent use.
type MemoryRouteRepository struct {
	mu     sync.Mutex
	routes map[string]*ports.RouteRecord
}

func NewMemoryRouteRepository() *MemoryRouteRepository {
	return &MemoryRouteRepository{routes: make(map[string]*ports.RouteRecord)}
}

func (r *MemoryRouteRepository) Create(ctx context.Context, rr *domain.RouteResult) (string, error) {
	if rr == nil {
		return "", errors.New("create route: route result is nil")
	}

	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[id] = &ports.RouteRecord{ID: id, Result: rr, Status: ports.StatusIdle}

	return id, nil
}

// Get returns a copy of the record. The RouteResult pointer is shared.
func (r *MemoryRouteRepository) Get(ctx context.Context, id string) (ports.RouteRecord, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.routes[id]
	if !ok {
		return ports.RouteRecord{}, false, nil
	}

	out := *rec
	out.Trace = slices.Clone(rec.Trace)
	return out, true, nil
}

func (r *MemoryRouteRepository) TryBeginResolve(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.routes[id]
	if !ok {
		return false, fmt.Errorf("begin resolve id=%s: %w", id, ErrRouteNotFound)
	}
	if rec.Status == ports.StatusResolving {
		return false, nil
	}

	rec.Status = ports.StatusResolving
	return true, nil
}

func (r *MemoryRouteRepository) FinishResolve(
	ctx context.Context,
	id string,
	trace []domain.GeoPoint,
	resolveErr error,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.routes[id]
	if !ok {
		return fmt.Errorf("finish resolve id=%s: %w", id, ErrRouteNotFound)
	}

	if resolveErr != nil {
		rec.Status = ports.StatusFailed
		rec.LastError = resolveErr.Error()
		return nil
	}

	rec.Status = ports.StatusResolved
	rec.LastError = ""
	rec.Trace = slices.Clone(trace)
	return nil
}
