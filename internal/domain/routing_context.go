package domain

import "slices"

// Router is the subset of a configured router the missing-maps flow needs.
type Router struct {
	Profile RouterProfile
}

type RoutingConfiguration struct {
	Router *Router
}

// CalculationProgress accumulates the outcome of a missing-maps check.
// It is written by a MissingMapsCalculator and read back by the caller once
// the check has returned.
type CalculationProgress struct {
	MissingMaps         []string
	MapsToUpdate        []string
	PotentiallyUsedMaps []string
	UsedHHRouting       bool
}

// RoutingContext is the state bundle the routing engine hands over when it
// stops at a missing map. Treated as opaque by everything except calculators.
type RoutingContext struct {
	Config   RoutingConfiguration
	Progress *CalculationProgress
}

func NewRoutingContext(profile RouterProfile) *RoutingContext {
	return &RoutingContext{
		Config:   RoutingConfiguration{Router: &Router{Profile: profile}},
		Progress: &CalculationProgress{},
	}
}

// RouterProfile returns the profile of the bound router, or "" when none is bound.
func (c *RoutingContext) RouterProfile() RouterProfile {
	if c == nil || c.Config.Router == nil {
		return ""
	}
	return c.Config.Router.Profile
}

// Snapshot returns copies of the three map sets.
func (p *CalculationProgress) Snapshot() (missing, toUpdate, potentiallyUsed []string) {
	if p == nil {
		return nil, nil, nil
	}
	return slices.Clone(p.MissingMaps), slices.Clone(p.MapsToUpdate), slices.Clone(p.PotentiallyUsedMaps)
}
