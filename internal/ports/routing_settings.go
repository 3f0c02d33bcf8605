package ports

import (
	"context"
	"missing-maps-service/internal/domain"
)

// Port: user routing preferences per application mode.
type RoutingSettings interface {
	// Return the router parameters of the profile derived for mode, in
	// iteration order. A nil slice means no router is configured for mode.
	RoutingParameters(ctx context.Context, mode domain.ApplicationMode) ([]domain.RoutingParameter, error)

	// Return the stored boolean preference of param for mode, or
	// param.DefaultBoolean when nothing is stored.
	BooleanPreference(ctx context.Context, mode domain.ApplicationMode, param domain.RoutingParameter) (bool, error)

	// Return the active routing engine variant.
	RoutingType(ctx context.Context) (domain.RoutingType, error)
}

// Port: persisting user routing preferences.
type RoutingPreferenceWriter interface {
	SetBooleanPreference(ctx context.Context, mode domain.ApplicationMode, paramID string, value bool) error
}
