package dto

type PointRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type CreateRouteRequest struct {
	AppMode       string         `json:"app_mode"`
	Profile       string         `json:"profile"`
	MissingPoints []PointRequest `json:"missing_points"`
}

type CreateRouteResponse struct {
	ID string `json:"id"`
}

type RouteResponse struct {
	ID                  string         `json:"id"`
	AppMode             string         `json:"app_mode"`
	Profile             string         `json:"profile"`
	Status              string         `json:"status"`
	LastError           string         `json:"last_error,omitempty"`
	MissingPoints       []PointRequest `json:"missing_points"`
	MissingMaps         []string       `json:"missing_maps"`
	MapsToUpdate        []string       `json:"maps_to_update"`
	PotentiallyUsedMaps []string       `json:"potentially_used_maps"`
	TracePoints         int            `json:"trace_points"`
}

type ResolveAcceptedResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type ResolutionResponse struct {
	ID                  string   `json:"id"`
	URL                 string   `json:"url"`
	TracePoints         int      `json:"trace_points"`
	MissingMaps         []string `json:"missing_maps"`
	MapsToUpdate        []string `json:"maps_to_update"`
	PotentiallyUsedMaps []string `json:"potentially_used_maps"`
}
