package services

import (
	"context"
	"errors"
	"missing-maps-service/internal/domain"
	"sync"
)

type mockOnlineClient struct {
	mu    sync.Mutex
	body  string
	err   error
	calls []string
}

func (c *mockOnlineClient) MakeRequest(ctx context.Context, url string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, url)
	if c.err != nil {
		return "", c.err
	}
	return c.body, nil
}

func (c *mockOnlineClient) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

// mockCalculator writes fixed sets to the progress and records its inputs.
type mockCalculator struct {
	missing, toUpdate, used []string
	err                     error

	gotStart domain.GeoPoint
	gotTrace []domain.GeoPoint
	gotHH    bool
	calls    int
}

func (c *mockCalculator) CheckForMissingMaps(
	ctx context.Context,
	rctx *domain.RoutingContext,
	start domain.GeoPoint,
	trace []domain.GeoPoint,
	useHHRouting bool,
) error {
	c.calls++
	c.gotStart = start
	c.gotTrace = trace
	c.gotHH = useHHRouting
	if c.err != nil {
		return c.err
	}
	rctx.Progress = &domain.CalculationProgress{
		MissingMaps:         c.missing,
		MapsToUpdate:        c.toUpdate,
		PotentiallyUsedMaps: c.used,
		UsedHHRouting:       useHHRouting,
	}
	return nil
}

type mockSettings struct {
	params      []domain.RoutingParameter
	prefs       map[string]bool
	routingType domain.RoutingType
	err         error
}

func (s *mockSettings) RoutingParameters(ctx context.Context, mode domain.ApplicationMode) ([]domain.RoutingParameter, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.params, nil
}

func (s *mockSettings) BooleanPreference(ctx context.Context, mode domain.ApplicationMode, p domain.RoutingParameter) (bool, error) {
	if v, ok := s.prefs[p.ID]; ok {
		return v, nil
	}
	return p.DefaultBoolean, nil
}

func (s *mockSettings) RoutingType(ctx context.Context) (domain.RoutingType, error) {
	if s.routingType == "" {
		return domain.RoutingTypeHHCpp, nil
	}
	return s.routingType, nil
}

// goExecutor runs every job on a fresh goroutine.
type goExecutor struct{}

func (goExecutor) Submit(job func()) error {
	go job()
	return nil
}

type closedExecutor struct{}

func (closedExecutor) Submit(job func()) error {
	return errors.New("executor closed")
}

// recordingListener counts callbacks and remembers the goroutine-visible results.
type recordingListener struct {
	mu        sync.Mutex
	successes int
	errs      []error
}

func (l *recordingListener) OnSuccess(res Resolution) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.successes++
}

func (l *recordingListener) OnError(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, err)
}

func (l *recordingListener) counts() (int, []error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.successes, append([]error(nil), l.errs...)
}
