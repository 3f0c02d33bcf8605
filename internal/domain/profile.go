package domain

import (
	"fmt"
	"strings"
)

// RouterProfile identifies the vehicle profile a router was built for.
type RouterProfile string

const (
	ProfileCar             RouterProfile = "car"
	ProfilePedestrian      RouterProfile = "pedestrian"
	ProfileBicycle         RouterProfile = "bicycle"
	ProfileBoat            RouterProfile = "boat"
	ProfileSki             RouterProfile = "ski"
	ProfileMoped           RouterProfile = "moped"
	ProfileTrain           RouterProfile = "train"
	ProfilePublicTransport RouterProfile = "public_transport"
	ProfileHorse           RouterProfile = "horsebackriding"
	ProfileTruck           RouterProfile = "truck"
)

var knownProfiles = map[RouterProfile]struct{}{
	ProfileCar: {}, ProfilePedestrian: {}, ProfileBicycle: {}, ProfileBoat: {},
	ProfileSki: {}, ProfileMoped: {}, ProfileTrain: {}, ProfilePublicTransport: {},
	ProfileHorse: {}, ProfileTruck: {},
}

// ParseRouterProfile accepts a profile name case-insensitively.
// An empty string maps to ProfileCar.
func ParseRouterProfile(s string) (RouterProfile, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ProfileCar, nil
	}
	p := RouterProfile(s)
	if _, ok := knownProfiles[p]; !ok {
		return "", fmt.Errorf("parse router profile: unknown profile %q", s)
	}
	return p, nil
}

// RoutingType selects the routing engine variant.
type RoutingType string

const (
	RoutingTypeAStarTwoPhase RoutingType = "A_STAR_2_PHASE"
	RoutingTypeAStarClassic  RoutingType = "A_STAR_CLASSIC"
	RoutingTypeHHJava        RoutingType = "HH_JAVA"
	RoutingTypeHHCpp         RoutingType = "HH_CPP"
)

// IsHHRouting reports whether the variant is one of the hierarchical-heuristic engines.
func (t RoutingType) IsHHRouting() bool {
	return t == RoutingTypeHHJava || t == RoutingTypeHHCpp
}

func ParseRoutingType(s string) (RoutingType, error) {
	t := RoutingType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case "":
		return RoutingTypeHHCpp, nil
	case RoutingTypeAStarTwoPhase, RoutingTypeAStarClassic, RoutingTypeHHJava, RoutingTypeHHCpp:
		return t, nil
	}
	return "", fmt.Errorf("parse routing type: unknown routing type %q", s)
}
