package dto

type RegionResponse struct {
	ID     string  `json:"region_id"`
	Name   string  `json:"name"`
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
	Status string  `json:"status"`
}

type ListRegionsResponse struct {
	Regions []RegionResponse `json:"regions"`
}

type SetRegionStatusRequest struct {
	Status string `json:"status"`
}

type RoutingParameterResponse struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	DefaultBoolean bool   `json:"default_boolean"`
	Value          bool   `json:"value"`
}

type ListRoutingParametersResponse struct {
	AppMode    string                     `json:"app_mode"`
	Parameters []RoutingParameterResponse `json:"parameters"`
}

type SetPreferenceRequest struct {
	Value *bool `json:"value"`
}
