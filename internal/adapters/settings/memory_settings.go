package settings

import (
	"context"
	"missing-maps-service/internal/domain"
	"slices"
	"sync"
)

// MemorySettings keeps routing preferences in memory. Used when no database
// is configured and in tests.
type MemorySettings struct {
	mu          sync.RWMutex
	params      map[domain.ApplicationMode][]domain.RoutingParameter
	prefs       map[string]bool
	routingType domain.RoutingType
}

func NewMemorySettings(routingType domain.RoutingType) *MemorySettings {
	return &MemorySettings{
		params:      make(map[domain.ApplicationMode][]domain.RoutingParameter),
		prefs:       make(map[string]bool),
		routingType: routingType,
	}
}

// SetParameters replaces the parameter list of mode.
func (m *MemorySettings) SetParameters(mode domain.ApplicationMode, params ...domain.RoutingParameter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.params[mode] = slices.Clone(params)
}

func (m *MemorySettings) RoutingParameters(ctx context.Context, mode domain.ApplicationMode) ([]domain.RoutingParameter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.params[mode]), nil
}

func (m *MemorySettings) BooleanPreference(ctx context.Context, mode domain.ApplicationMode, param domain.RoutingParameter) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.prefs[prefKey(mode, param.ID)]; ok {
		return v, nil
	}
	return param.DefaultBoolean, nil
}

func (m *MemorySettings) SetBooleanPreference(ctx context.Context, mode domain.ApplicationMode, paramID string, value bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[prefKey(mode, paramID)] = value
	return nil
}

func (m *MemorySettings) RoutingType(ctx context.Context) (domain.RoutingType, error) {
	return m.routingType, nil
}

func prefKey(mode domain.ApplicationMode, paramID string) string {
	return string(mode) + "|" + paramID
}
