package handlers

import (
	"context"
	"errors"
	"log"
	"missing-maps-service/internal/api/dto"
	"missing-maps-service/internal/domain"
	"missing-maps-service/internal/platform/worker"
	"missing-maps-service/internal/ports"
	"missing-maps-service/internal/services"
	"net/http"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Resolver starts a background missing-maps resolution.
type Resolver interface {
	Execute(ctx context.Context, rr *domain.RouteResult, l services.Listener) *services.ResolutionTask
}

// RouteHandler registers routes and drives their missing-maps resolution.
type RouteHandler struct {
	Repo      ports.RouteRepository
	Resolver  Resolver
	Publisher ports.ResolutionPublisher
}

// Create registers a route result that stopped at missing maps.
func (h *RouteHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.CreateRouteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := domain.ParseRouterProfile(req.Profile)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "unknown profile")
		return
	}

	mode := strings.TrimSpace(req.AppMode)
	if mode == "" {
		mode = string(profile)
	}

	points := make([]domain.GeoPoint, 0, len(req.MissingPoints))
	for _, p := range req.MissingPoints {
		if p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 {
			writeError(w, r, http.StatusBadRequest, "missing_points must be valid WGS84 coordinates")
			return
		}
		points = append(points, domain.GeoPoint{Lat: p.Lat, Lon: p.Lon})
	}

	rr := domain.NewRouteResult(domain.ApplicationMode(mode), points, domain.NewRoutingContext(profile))
	id, err := h.Repo.Create(r.Context(), rr)
	if err != nil {
		log.Printf("create route failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.CreateRouteResponse{ID: id})
}

func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	rec, ok := h.lookup(w, r)
	if !ok {
		return
	}

	rr := rec.Result
	points := rr.MissingMapsPoints()
	res := dto.RouteResponse{
		ID:                  rec.ID,
		AppMode:             string(rr.AppMode()),
		Profile:             string(rr.MissingMapsRoutingContext().RouterProfile()),
		Status:              string(rec.Status),
		LastError:           rec.LastError,
		MissingPoints:       make([]dto.PointRequest, 0, len(points)),
		MissingMaps:         nonNil(rr.MissingMaps()),
		MapsToUpdate:        nonNil(rr.MapsToUpdate()),
		PotentiallyUsedMaps: nonNil(rr.PotentiallyUsedMaps()),
		TracePoints:         len(rec.Trace),
	}
	for _, p := range points {
		res.MissingPoints = append(res.MissingPoints, dto.PointRequest{Lat: p.Lat, Lon: p.Lon})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Resolve starts a resolution for the route. With ?wait=true it blocks until
// the attempt finishes and reports its outcome.
func (h *RouteHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	rec, ok := h.lookup(w, r)
	if !ok {
		return
	}

	began, err := h.Repo.TryBeginResolve(r.Context(), rec.ID)
	if err != nil {
		log.Printf("begin resolve failed: id=%s err=%v", rec.ID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	if !began {
		writeError(w, r, http.StatusConflict, "resolution already in progress")
		return
	}

	task := h.Resolver.Execute(r.Context(), rec.Result, h.listener(rec.ID))

	// A rejected submit completes the task before Execute returns.
	select {
	case <-task.Done():
		if _, err := task.Wait(r.Context()); errors.Is(err, worker.ErrPoolFull) {
			writeError(w, r, http.StatusServiceUnavailable, "too many resolutions in progress")
			return
		}
	default:
	}

	if r.URL.Query().Get("wait") != "true" {
		writeJSON(w, r, http.StatusAccepted, dto.ResolveAcceptedResponse{ID: rec.ID, Status: string(ports.StatusResolving)})
		return
	}

	res, err := task.Wait(r.Context())
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// The client went away; the attempt keeps running.
		return
	case errors.Is(err, services.ErrNoMissingMapsData):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		writeError(w, r, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ResolutionResponse{
		ID:                  rec.ID,
		URL:                 res.URL,
		TracePoints:         len(res.Trace),
		MissingMaps:         nonNil(res.MissingMaps),
		MapsToUpdate:        nonNil(res.MapsToUpdate),
		PotentiallyUsedMaps: nonNil(res.PotentiallyUsed),
	})
}

// Trace returns the last resolved trace as a GeoJSON FeatureCollection.
func (h *RouteHandler) Trace(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	rec, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if len(rec.Trace) == 0 {
		writeError(w, r, http.StatusNotFound, "route has no trace yet")
		return
	}

	line := make(orb.LineString, 0, len(rec.Trace))
	for _, p := range rec.Trace {
		line = append(line, orb.Point(p.LonLat()))
	}

	f := geojson.NewFeature(line)
	f.Properties["route_id"] = rec.ID
	f.Properties["status"] = string(rec.Status)

	fc := geojson.NewFeatureCollection()
	fc.Append(f)

	w.Header().Set("Content-Type", "application/geo+json")
	b, err := fc.MarshalJSON()
	if err != nil {
		log.Printf("marshal trace failed: id=%s err=%v", rec.ID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *RouteHandler) lookup(w http.ResponseWriter, r *http.Request) (ports.RouteRecord, bool) {
	id := r.PathValue("id")
	rec, ok, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		log.Printf("get route failed: id=%s err=%v", id, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return ports.RouteRecord{}, false
	}
	if !ok {
		writeError(w, r, http.StatusNotFound, "route not found")
		return ports.RouteRecord{}, false
	}
	return rec, true
}

// listener records the outcome of a resolution for id and publishes it.
// It runs on the worker goroutine, after the request may have ended.
func (h *RouteHandler) listener(id string) services.Listener {
	return services.ListenerFuncs{
		Success: func(res services.Resolution) {
			h.finish(id, res, nil)
		},
		Error: func(err error) {
			h.finish(id, services.Resolution{}, err)
		},
	}
}

func (h *RouteHandler) finish(id string, res services.Resolution, resolveErr error) {
	ctx := context.Background()

	if err := h.Repo.FinishResolve(ctx, id, res.Trace, resolveErr); err != nil {
		log.Printf("finish resolve failed: id=%s err=%v", id, err)
	}

	if h.Publisher == nil {
		return
	}

	ev := ports.ResolutionEvent{
		RouteID:         id,
		Status:          string(ports.StatusResolved),
		MissingMaps:     nonNil(res.MissingMaps),
		MapsToUpdate:    nonNil(res.MapsToUpdate),
		PotentiallyUsed: nonNil(res.PotentiallyUsed),
		TracePoints:     len(res.Trace),
		OccurredAt:      time.Now().UTC(),
	}
	if resolveErr != nil {
		ev.Status = string(ports.StatusFailed)
		if msg, ok := services.ErrorMessage(resolveErr); ok {
			ev.Error = msg
		}
	}

	if err := h.Publisher.PublishResolution(ctx, ev); err != nil {
		log.Printf("publish resolution failed: id=%s err=%v", id, err)
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
