package handlers

import (
	"errors"
	"log"
	"missing-maps-service/internal/api/dto"
	"missing-maps-service/internal/domain"
	"missing-maps-service/internal/ports"
	"net/http"
)

// RegionHandler exposes the map region catalog.
type RegionHandler struct {
	Regions ports.RegionRepository
	Writer  ports.RegionStatusWriter
}

func (h *RegionHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	regions, err := h.Regions.ListRegions(r.Context())
	if err != nil {
		log.Printf("list regions failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListRegionsResponse{Regions: make([]dto.RegionResponse, 0, len(regions))}
	for _, rg := range regions {
		res.Regions = append(res.Regions, dto.RegionResponse{
			ID:     rg.ID,
			Name:   rg.Name,
			MinLat: rg.MinLat,
			MinLon: rg.MinLon,
			MaxLat: rg.MaxLat,
			MaxLon: rg.MaxLon,
			Status: string(rg.Status),
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// SetStatus records that a region was downloaded, went stale or was removed.
func (h *RegionHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPut) {
		return
	}
	if h.Writer == nil {
		writeError(w, r, http.StatusNotImplemented, "region catalog is read-only")
		return
	}

	var req dto.SetRegionStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	status, err := ports.ParseRegionStatus(req.Status)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "status must be installed, outdated or absent")
		return
	}

	id := r.PathValue("id")
	if err := h.Writer.SetStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, ports.ErrRegionNotFound) {
			writeError(w, r, http.StatusNotFound, "region not found")
			return
		}
		log.Printf("set region status failed: id=%s err=%v", id, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SettingsHandler exposes routing parameters and user preferences per app mode.
type SettingsHandler struct {
	Settings ports.RoutingSettings
	Writer   ports.RoutingPreferenceWriter
}

func (h *SettingsHandler) Parameters(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	mode := domain.ApplicationMode(r.PathValue("mode"))
	params, err := h.Settings.RoutingParameters(r.Context(), mode)
	if err != nil {
		log.Printf("routing parameters failed: mode=%s err=%v", mode, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListRoutingParametersResponse{
		AppMode:    string(mode),
		Parameters: make([]dto.RoutingParameterResponse, 0, len(params)),
	}
	for _, p := range params {
		v, err := h.Settings.BooleanPreference(r.Context(), mode, p)
		if err != nil {
			log.Printf("boolean preference failed: mode=%s param=%s err=%v", mode, p.ID, err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
		res.Parameters = append(res.Parameters, dto.RoutingParameterResponse{
			ID:             p.ID,
			Type:           string(p.Type),
			DefaultBoolean: p.DefaultBoolean,
			Value:          v,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *SettingsHandler) SetPreference(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPut) {
		return
	}
	if h.Writer == nil {
		writeError(w, r, http.StatusNotImplemented, "routing settings are read-only")
		return
	}

	var req dto.SetPreferenceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Value == nil {
		writeError(w, r, http.StatusBadRequest, "value is required")
		return
	}

	mode := domain.ApplicationMode(r.PathValue("mode"))
	param := r.PathValue("param")
	if err := h.Writer.SetBooleanPreference(r.Context(), mode, param, *req.Value); err != nil {
		log.Printf("set preference failed: mode=%s param=%s err=%v", mode, param, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
