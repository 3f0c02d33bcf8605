package services

import (
	"context"
	"errors"
	"fmt"
	"missing-maps-service/internal/domain"
	"missing-maps-service/internal/platform/obs"
	"missing-maps-service/internal/ports"
)

// Executor runs submitted jobs off the caller's goroutine.
type Executor interface {
	Submit(job func()) error
}

// Resolution is the outcome of a successful attempt. The map sets are the
// ones written to the RouteResult.
type Resolution struct {
	URL             string
	Trace           []domain.GeoPoint
	MissingMaps     []string
	MapsToUpdate    []string
	PotentiallyUsed []string
}

// MissingMapsMapper re-evaluates the missing maps of a route using a trace
// obtained from the online routing service.
type MissingMapsMapper struct {
	client     ports.OnlineRoutingClient
	calculator ports.MissingMapsCalculator
	settings   ports.RoutingSettings
	executor   Executor
	baseURL    string
}

func NewMissingMapsMapper(
	client ports.OnlineRoutingClient,
	calculator ports.MissingMapsCalculator,
	settings ports.RoutingSettings,
	executor Executor,
	baseURL string,
) (*MissingMapsMapper, error) {
	switch {
	case client == nil:
		return nil, errors.New("new missing maps mapper: nil online routing client")
	case calculator == nil:
		return nil, errors.New("new missing maps mapper: nil calculator")
	case settings == nil:
		return nil, errors.New("new missing maps mapper: nil routing settings")
	case executor == nil:
		return nil, errors.New("new missing maps mapper: nil executor")
	}

	return &MissingMapsMapper{
		client:     client,
		calculator: calculator,
		settings:   settings,
		executor:   executor,
		baseURL:    normalizeBaseURL(baseURL),
	}, nil
}

// BuildRequest assembles the online routing request for rr.
func (m *MissingMapsMapper) BuildRequest(ctx context.Context, rr *domain.RouteResult) (RoutingRequest, error) {
	points := rr.MissingMapsPoints()
	rctx := rr.MissingMapsRoutingContext()
	if len(points) == 0 || rctx == nil {
		return RoutingRequest{}, ErrNoMissingMapsData
	}
	return m.buildRequest(ctx, rr.AppMode(), rctx, points)
}

func (m *MissingMapsMapper) buildRequest(
	ctx context.Context,
	mode domain.ApplicationMode,
	rctx *domain.RoutingContext,
	points []domain.GeoPoint,
) (RoutingRequest, error) {
	ids, err := activeParameterIDs(ctx, m.settings, mode)
	if err != nil {
		return RoutingRequest{}, err
	}

	return RoutingRequest{
		BaseURL:  m.baseURL,
		Profile:  onlineProfile(rctx),
		Points:   points,
		ParamIDs: ids,
	}, nil
}

// Resolve performs one synchronous attempt: request the online trace, run
// the calculator over it and copy the resulting map sets onto rr.
// rr is left untouched on any failure. There are no retries.
func (m *MissingMapsMapper) Resolve(ctx context.Context, rr *domain.RouteResult) (_ Resolution, err error) {
	defer obs.Time(ctx, "missingmaps.Resolve")(&err)

	if rr == nil {
		return Resolution{}, ErrNoMissingMapsData
	}

	points := rr.MissingMapsPoints()
	rctx := rr.MissingMapsRoutingContext()
	if len(points) == 0 || rctx == nil {
		return Resolution{}, ErrNoMissingMapsData
	}

	req, err := m.buildRequest(ctx, rr.AppMode(), rctx, points)
	if err != nil {
		return Resolution{}, &ResolutionError{Kind: KindSettings, Err: err}
	}
	routingType, err := m.settings.RoutingType(ctx)
	if err != nil {
		return Resolution{}, &ResolutionError{Kind: KindSettings, Err: fmt.Errorf("routing type: %w", err)}
	}
	url := req.URL()

	body, err := m.client.MakeRequest(ctx, url)
	if err != nil {
		return Resolution{}, &ResolutionError{Kind: KindTransport, Err: err}
	}

	trace, err := ParseOnlineRoute(body)
	if err != nil {
		return Resolution{}, &ResolutionError{Kind: KindParse, Err: err}
	}

	if err := m.checkForMissingMaps(ctx, rctx, points[0], trace, routingType.IsHHRouting()); err != nil {
		return Resolution{}, &ResolutionError{Kind: KindCalculator, Err: err}
	}

	missing, toUpdate, used := rctx.Progress.Snapshot()
	rr.SetMissingMaps(missing, toUpdate, used, rctx, points)

	return Resolution{
		URL:             url,
		Trace:           trace,
		MissingMaps:     missing,
		MapsToUpdate:    toUpdate,
		PotentiallyUsed: used,
	}, nil
}

// checkForMissingMaps turns calculator panics into errors.
func (m *MissingMapsMapper) checkForMissingMaps(
	ctx context.Context,
	rctx *domain.RoutingContext,
	start domain.GeoPoint,
	trace []domain.GeoPoint,
	useHH bool,
) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("check for missing maps: panic: %v", r)
		}
	}()

	if err := m.calculator.CheckForMissingMaps(ctx, rctx, start, trace, useHH); err != nil {
		return fmt.Errorf("check for missing maps: %w", err)
	}
	if rctx.Progress == nil {
		return errors.New("check for missing maps: no calculation progress recorded")
	}
	return nil
}
