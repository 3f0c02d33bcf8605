package services

import (
	"context"
	"fmt"
	"missing-maps-service/internal/domain"
	"missing-maps-service/internal/ports"
	"strings"
)

const DefaultOnlineRoutingURL = "https://maptile.osmand.net/routing/"

// The online service always expects the parameter list to start with "car",
// whatever routeMode says.
const paramsPrefix = "car"

// RoutingRequest is the online routing query for one resolution attempt.
type RoutingRequest struct {
	BaseURL  string
	Profile  string
	Points   []domain.GeoPoint
	ParamIDs []string
}

// URL renders the request as
// <base>route?routeMode=<profile>&points=<lat>,<lon>...[&params=car,<id>...].
// Values are written verbatim, without percent-encoding.
func (r RoutingRequest) URL() string {
	var b strings.Builder
	b.WriteString(r.BaseURL)
	b.WriteString("route?routeMode=")
	b.WriteString(r.Profile)

	for _, p := range r.Points {
		b.WriteString("&points=")
		b.WriteString(p.String())
	}

	if len(r.ParamIDs) > 0 {
		b.WriteString("&params=")
		b.WriteString(paramsPrefix)
		for _, id := range r.ParamIDs {
			b.WriteByte(',')
			b.WriteString(id)
		}
	}

	return b.String()
}

// onlineProfile maps the router profile to the two profiles the online
// service distinguishes.
func onlineProfile(rctx *domain.RoutingContext) string {
	if rctx.RouterProfile() == domain.ProfileBicycle {
		return string(domain.ProfileBicycle)
	}
	return string(domain.ProfileCar)
}

// activeParameterIDs returns, in iteration order, the IDs of the parameters
// of mode whose boolean preference is on.
func activeParameterIDs(
	ctx context.Context,
	settings ports.RoutingSettings,
	mode domain.ApplicationMode,
) ([]string, error) {
	params, err := settings.RoutingParameters(ctx, mode)
	if err != nil {
		return nil, fmt.Errorf("routing parameters %q: %w", mode, err)
	}

	var ids []string
	for _, p := range params {
		on, err := settings.BooleanPreference(ctx, mode, p)
		if err != nil {
			return nil, fmt.Errorf("preference %q/%q: %w", mode, p.ID, err)
		}
		if on {
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}

func normalizeBaseURL(base string) string {
	if base == "" {
		return DefaultOnlineRoutingURL
	}
	if !strings.HasSuffix(base, "/") {
		return base + "/"
	}
	return base
}
