package api

import (
	"missing-maps-service/internal/api/handlers"
	"missing-maps-service/internal/ports"
	"net/http"
)

// Deps are the ports the HTTP layer needs. Optional writers may be nil, in
// which case their endpoints answer 501.
type Deps struct {
	Routes      ports.RouteRepository
	Resolver    handlers.Resolver
	Publisher   ports.ResolutionPublisher
	Regions     ports.RegionRepository
	RegionState ports.RegionStatusWriter
	Settings    ports.RoutingSettings
	Preferences ports.RoutingPreferenceWriter
	DB          handlers.Pinger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	healthHandler := &handlers.HealthHandler{DB: d.DB}
	routeHandler := &handlers.RouteHandler{
		Repo:      d.Routes,
		Resolver:  d.Resolver,
		Publisher: d.Publisher,
	}
	regionHandler := &handlers.RegionHandler{Regions: d.Regions, Writer: d.RegionState}
	settingsHandler := &handlers.SettingsHandler{Settings: d.Settings, Writer: d.Preferences}

	mux.HandleFunc("/health", healthHandler.Health)
	mux.HandleFunc("/routes", routeHandler.Create)
	mux.HandleFunc("/routes/{id}", routeHandler.Get)
	mux.HandleFunc("/routes/{id}/missing-maps/resolve", routeHandler.Resolve)
	mux.HandleFunc("/routes/{id}/trace", routeHandler.Trace)
	mux.HandleFunc("/regions", regionHandler.List)
	mux.HandleFunc("/regions/{id}/status", regionHandler.SetStatus)
	mux.HandleFunc("/settings/{mode}/parameters", settingsHandler.Parameters)
	mux.HandleFunc("/settings/{mode}/preferences/{param}", settingsHandler.SetPreference)

	return requestIDMiddleware(loggingMiddleware(mux))
}
