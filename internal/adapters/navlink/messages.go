package navlink

import (
	"encoding/json"
	"missing-maps-service/internal/domain"
)

// Envelope types sent by the client.
const (
	cmdRegisterVoiceRouter = "register_voice_router"
	cmdShowMapPoint        = "show_map_point"
)

// Envelope types received from the navigation app.
const (
	evtAppInitialized    = "app_initialized"
	evtUpdate            = "update"
	evtNavigationInfo    = "navigation_info"
	evtVoiceRouterNotify = "voice_router_notify"
)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// DirectionInfo describes the next turn of the active route.
type DirectionInfo struct {
	DistanceTo int  `json:"distance_to"`
	TurnType   int  `json:"turn_type"`
	IsLeftSide bool `json:"is_left_side"`
}

// MapPoint is a point the navigation app should show on its map.
type MapPoint struct {
	ID        string            `json:"id"`
	ShortName string            `json:"short_name"`
	FullName  string            `json:"full_name"`
	TypeName  string            `json:"type_name"`
	Color     int               `json:"color"`
	Location  domain.GeoPoint   `json:"location"`
	Details   []string          `json:"details,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
}
