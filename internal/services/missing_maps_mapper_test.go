package services

import (
	"context"
	"errors"
	"missing-maps-service/internal/domain"
	"missing-maps-service/internal/platform/worker"
	"missing-maps-service/internal/ports"
	"slices"
	"strings"
	"testing"
	"time"
)

const twoPointRoute = `{"features":[{"geometry":{"type":"LineString","coordinates":[[30.5,50.4],[30.6,50.5]]}}]}`

func newTestMapper(t *testing.T, c *mockOnlineClient, calc *mockCalculator, s *mockSettings) *MissingMapsMapper {
	t.Helper()
	m, err := NewMissingMapsMapper(c, calc, s, goExecutor{}, "https://example.test/routing/")
	if err != nil {
		t.Fatalf("new mapper: %v", err)
	}
	return m
}

func seededRoute(profile domain.RouterProfile, points ...domain.GeoPoint) *domain.RouteResult {
	rr := domain.NewRouteResult("car", points, domain.NewRoutingContext(profile))
	rr.SetMissingMaps([]string{"old_missing"}, []string{"old_update"}, []string{"old_used"},
		rr.MissingMapsRoutingContext(), points)
	return rr
}

func waitTask(t *testing.T, task *ResolutionTask) (Resolution, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	res, err := task.Wait(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("task did not complete")
	}
	return res, err
}

func TestNewMissingMapsMapperRejectsNil(t *testing.T) {
	if _, err := NewMissingMapsMapper(nil, &mockCalculator{}, &mockSettings{}, goExecutor{}, ""); err == nil {
		t.Fatal("expected error for nil client")
	}
	if _, err := NewMissingMapsMapper(&mockOnlineClient{}, &mockCalculator{}, &mockSettings{}, nil, ""); err == nil {
		t.Fatal("expected error for nil executor")
	}
}

func TestExecuteWithoutMissingPoints(t *testing.T) {
	tests := []struct {
		name string
		rr   *domain.RouteResult
	}{
		{"no points", domain.NewRouteResult("car", nil, domain.NewRoutingContext(domain.ProfileCar))},
		{"no context", domain.NewRouteResult("car", []domain.GeoPoint{{Lat: 1, Lon: 2}}, nil)},
		{"nil route", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockOnlineClient{body: twoPointRoute}
			m := newTestMapper(t, client, &mockCalculator{}, &mockSettings{})
			l := &recordingListener{}

			_, err := waitTask(t, m.Execute(context.Background(), tt.rr, l))
			if !errors.Is(err, ErrNoMissingMapsData) {
				t.Fatalf("err = %v, want ErrNoMissingMapsData", err)
			}

			if calls := client.Calls(); len(calls) != 0 {
				t.Fatalf("made %d requests, want 0", len(calls))
			}
			successes, errs := l.counts()
			if successes != 0 || len(errs) != 1 {
				t.Fatalf("successes=%d errors=%d, want 0 and 1", successes, len(errs))
			}
			if msg, ok := ErrorMessage(errs[0]); ok {
				t.Fatalf("expected no message, got %q", msg)
			}
		})
	}
}

func TestExecuteSuccess(t *testing.T) {
	client := &mockOnlineClient{body: twoPointRoute}
	calc := &mockCalculator{
		missing:  []string{"Ukraine_kyiv-city_europe"},
		toUpdate: []string{"Ukraine_kyiv_europe"},
		used:     []string{"Ukraine_kyiv-city_europe", "Ukraine_kyiv_europe"},
	}
	settings := &mockSettings{routingType: domain.RoutingTypeHHJava}
	m := newTestMapper(t, client, calc, settings)

	points := []domain.GeoPoint{{Lat: 50.4, Lon: 30.5}, {Lat: 50.5, Lon: 30.6}}
	rr := seededRoute(domain.ProfileCar, points...)
	l := &recordingListener{}

	res, err := waitTask(t, m.Execute(context.Background(), rr, l))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	successes, errs := l.counts()
	if successes != 1 || len(errs) != 0 {
		t.Fatalf("successes=%d errors=%d, want 1 and 0", successes, len(errs))
	}

	if !slices.Equal(rr.MissingMaps(), calc.missing) {
		t.Fatalf("missing = %v, want %v", rr.MissingMaps(), calc.missing)
	}
	if !slices.Equal(rr.MapsToUpdate(), calc.toUpdate) {
		t.Fatalf("to update = %v, want %v", rr.MapsToUpdate(), calc.toUpdate)
	}
	if !slices.Equal(rr.PotentiallyUsedMaps(), calc.used) {
		t.Fatalf("potentially used = %v, want %v", rr.PotentiallyUsedMaps(), calc.used)
	}
	if !slices.Equal(rr.MissingMapsPoints(), points) {
		t.Fatalf("points = %v, want %v", rr.MissingMapsPoints(), points)
	}

	if calc.gotStart != points[0] {
		t.Fatalf("start = %v, want %v", calc.gotStart, points[0])
	}
	wantTrace := []domain.GeoPoint{{Lat: 50.4, Lon: 30.5}, {Lat: 50.5, Lon: 30.6}}
	if !slices.Equal(calc.gotTrace, wantTrace) || !slices.Equal(res.Trace, wantTrace) {
		t.Fatalf("trace = %v, want %v", calc.gotTrace, wantTrace)
	}
	if !calc.gotHH {
		t.Fatal("expected hierarchical-heuristic routing for HH_JAVA")
	}

	calls := client.Calls()
	if len(calls) != 1 {
		t.Fatalf("requests = %d, want 1", len(calls))
	}
	wantURL := "https://example.test/routing/route?routeMode=car&points=50.4,30.5&points=50.5,30.6"
	if calls[0] != wantURL || res.URL != wantURL {
		t.Fatalf("url = %q, want %q", calls[0], wantURL)
	}
}

func TestExecuteFailureLeavesRouteUntouched(t *testing.T) {
	tests := []struct {
		name     string
		client   *mockOnlineClient
		calc     *mockCalculator
		settings *mockSettings
		kind     ErrorKind
	}{
		{
			name:     "transport",
			client:   &mockOnlineClient{err: errors.New("dial tcp: connection refused")},
			calc:     &mockCalculator{},
			settings: &mockSettings{},
			kind:     KindTransport,
		},
		{
			name:     "parse",
			client:   &mockOnlineClient{body: `{"type":"FeatureCollection"}`},
			calc:     &mockCalculator{},
			settings: &mockSettings{},
			kind:     KindParse,
		},
		{
			name:     "calculator",
			client:   &mockOnlineClient{body: twoPointRoute},
			calc:     &mockCalculator{err: errors.New("map index unavailable")},
			settings: &mockSettings{},
			kind:     KindCalculator,
		},
		{
			name:     "settings",
			client:   &mockOnlineClient{body: twoPointRoute},
			calc:     &mockCalculator{},
			settings: &mockSettings{err: errors.New("db closed")},
			kind:     KindSettings,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMapper(t, tt.client, tt.calc, tt.settings)
			rr := seededRoute(domain.ProfileCar, domain.GeoPoint{Lat: 50.4, Lon: 30.5})
			l := &recordingListener{}

			_, err := waitTask(t, m.Execute(context.Background(), rr, l))
			if got := Kind(err); got != tt.kind {
				t.Fatalf("kind = %q, want %q (err %v)", got, tt.kind, err)
			}

			successes, errs := l.counts()
			if successes != 0 || len(errs) != 1 {
				t.Fatalf("successes=%d errors=%d, want 0 and 1", successes, len(errs))
			}
			msg, ok := ErrorMessage(errs[0])
			if !ok || msg == "" {
				t.Fatal("expected a non-empty error message")
			}

			if got := rr.MissingMaps(); !slices.Equal(got, []string{"old_missing"}) {
				t.Fatalf("missing = %v, want unchanged", got)
			}
			if got := rr.MapsToUpdate(); !slices.Equal(got, []string{"old_update"}) {
				t.Fatalf("to update = %v, want unchanged", got)
			}
			if got := rr.PotentiallyUsedMaps(); !slices.Equal(got, []string{"old_used"}) {
				t.Fatalf("potentially used = %v, want unchanged", got)
			}
		})
	}
}

func TestExecuteTransportErrorIsSingleAttempt(t *testing.T) {
	client := &mockOnlineClient{err: errors.New("503 service unavailable")}
	m := newTestMapper(t, client, &mockCalculator{}, &mockSettings{})
	rr := seededRoute(domain.ProfileCar, domain.GeoPoint{Lat: 1, Lon: 2})

	_, _ = waitTask(t, m.Execute(context.Background(), rr, nil))

	if n := len(client.Calls()); n != 1 {
		t.Fatalf("requests = %d, want 1", n)
	}
}

func TestResolveCalculatorPanicIsReported(t *testing.T) {
	client := &mockOnlineClient{body: twoPointRoute}
	m, err := NewMissingMapsMapper(client, panickyCalculator{}, &mockSettings{}, goExecutor{}, "")
	if err != nil {
		t.Fatalf("new mapper: %v", err)
	}
	rr := seededRoute(domain.ProfileCar, domain.GeoPoint{Lat: 1, Lon: 2})

	_, err = m.Resolve(context.Background(), rr)
	if Kind(err) != KindCalculator {
		t.Fatalf("err = %v, want calculator error", err)
	}
	if !strings.Contains(err.Error(), "panic") {
		t.Fatalf("err = %v, want panic mention", err)
	}
}

type panickyCalculator struct{}

func (panickyCalculator) CheckForMissingMaps(context.Context, *domain.RoutingContext, domain.GeoPoint, []domain.GeoPoint, bool) error {
	panic("nil region index")
}

func TestResolveHHFlagFollowsRoutingType(t *testing.T) {
	tests := []struct {
		rt   domain.RoutingType
		want bool
	}{
		{domain.RoutingTypeHHCpp, true},
		{domain.RoutingTypeHHJava, true},
		{domain.RoutingTypeAStarTwoPhase, false},
		{domain.RoutingTypeAStarClassic, false},
	}
	for _, tt := range tests {
		calc := &mockCalculator{}
		m := newTestMapper(t, &mockOnlineClient{body: twoPointRoute}, calc, &mockSettings{routingType: tt.rt})
		rr := seededRoute(domain.ProfileCar, domain.GeoPoint{Lat: 1, Lon: 2})

		if _, err := m.Resolve(context.Background(), rr); err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.rt, err)
		}
		if calc.gotHH != tt.want {
			t.Fatalf("%s: hh = %v, want %v", tt.rt, calc.gotHH, tt.want)
		}
	}
}

func TestExecuteRejectedByExecutor(t *testing.T) {
	client := &mockOnlineClient{body: twoPointRoute}
	m, err := NewMissingMapsMapper(client, &mockCalculator{}, &mockSettings{}, closedExecutor{}, "")
	if err != nil {
		t.Fatalf("new mapper: %v", err)
	}
	l := &recordingListener{}

	task := m.Execute(context.Background(), seededRoute(domain.ProfileCar, domain.GeoPoint{Lat: 1, Lon: 2}), l)
	if _, err := waitTask(t, task); err == nil {
		t.Fatal("expected error from rejected submit")
	}
	if _, errs := l.counts(); len(errs) != 1 {
		t.Fatalf("errors = %d, want 1", len(errs))
	}
	if len(client.Calls()) != 0 {
		t.Fatal("rejected job must not issue requests")
	}
}

func TestExecuteIgnoresCallerCancellation(t *testing.T) {
	release := make(chan struct{})
	client := &blockingClient{release: release, body: twoPointRoute}
	m, err := NewMissingMapsMapper(client, &mockCalculator{used: []string{"r1"}}, &mockSettings{}, goExecutor{}, "")
	if err != nil {
		t.Fatalf("new mapper: %v", err)
	}
	rr := seededRoute(domain.ProfileCar, domain.GeoPoint{Lat: 1, Lon: 2})

	ctx, cancel := context.WithCancel(context.Background())
	task := m.Execute(ctx, rr, nil)
	cancel()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer waitCancel()
	if _, err := task.Wait(waitCtx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("wait err = %v, want deadline exceeded while blocked", err)
	}

	close(release)
	if _, err := waitTask(t, task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rr.PotentiallyUsedMaps(); !slices.Equal(got, []string{"r1"}) {
		t.Fatalf("potentially used = %v, want [r1]", got)
	}
}

type panickingClient struct{}

func (panickingClient) MakeRequest(ctx context.Context, url string) (string, error) {
	panic("transport bug")
}

func TestExecuteCompletesWhenSomethingPanics(t *testing.T) {
	tests := []struct {
		name        string
		client      ports.OnlineRoutingClient
		listener    ListenerFuncs
		wantErr     bool
		wantListErr bool
	}{
		{
			name:     "listener panics on success",
			client:   &mockOnlineClient{body: twoPointRoute},
			listener: ListenerFuncs{Success: func(Resolution) { panic("listener bug") }},
		},
		{
			name:     "listener panics on error",
			client:   &mockOnlineClient{err: errors.New("connection refused")},
			listener: ListenerFuncs{Error: func(error) { panic("listener bug") }},
			wantErr:  true,
		},
		{
			name:        "resolve panics",
			client:      panickingClient{},
			wantErr:     true,
			wantListErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := worker.NewPool(1)
			defer pool.Close(context.Background())

			m, err := NewMissingMapsMapper(tt.client, &mockCalculator{used: []string{"r1"}}, &mockSettings{}, pool, "")
			if err != nil {
				t.Fatalf("new mapper: %v", err)
			}

			var listenerErr error
			l := tt.listener
			if tt.wantListErr {
				l.Error = func(err error) { listenerErr = err }
			}

			_, err = waitTask(t, m.Execute(context.Background(), seededRoute(domain.ProfileCar, domain.GeoPoint{Lat: 1, Lon: 2}), l))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantListErr && (listenerErr == nil || !strings.Contains(listenerErr.Error(), "panic")) {
				t.Fatalf("listener err = %v, want panic report", listenerErr)
			}

			// The pool is still usable afterwards.
			if _, err := waitTask(t, m.Execute(context.Background(), seededRoute(domain.ProfileCar), nil)); !errors.Is(err, ErrNoMissingMapsData) {
				t.Fatalf("follow-up err = %v, want ErrNoMissingMapsData", err)
			}
		})
	}
}

type blockingClient struct {
	release chan struct{}
	body    string
}

func (c *blockingClient) MakeRequest(ctx context.Context, url string) (string, error) {
	<-c.release
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.body, nil
}

func TestErrorMessage(t *testing.T) {
	if _, ok := ErrorMessage(nil); ok {
		t.Fatal("nil error must have no message")
	}
	if _, ok := ErrorMessage(ErrNoMissingMapsData); ok {
		t.Fatal("precondition error must have no message")
	}

	err := &ResolutionError{Kind: KindTransport, Err: errors.New("timeout")}
	msg, ok := ErrorMessage(err)
	if !ok || msg != "transport error: timeout" {
		t.Fatalf("message = %q, %v", msg, ok)
	}
}
