package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"missing-maps-service/internal/domain"
)

// jsonObject holds the members of one JSON object. Member names are matched
// exactly; encoding/json struct tags would also accept "Features" or "TYPE".
type jsonObject map[string]json.RawMessage

// member returns the raw value of key. A null value counts as absent.
func (o jsonObject) member(key string) (json.RawMessage, bool) {
	raw, ok := o[key]
	if !ok || string(raw) == "null" {
		return nil, false
	}
	return raw, true
}

// ParseOnlineRoute extracts the trace from a GeoJSON FeatureCollection.
// Every LineString geometry contributes its [lon, lat, ...] positions, in
// order, as (lat, lon) points. Positions with fewer than two values are
// skipped. Geometries of other types are ignored.
func ParseOnlineRoute(body string) ([]domain.GeoPoint, error) {
	var resp jsonObject
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, fmt.Errorf("parse online route: %w", err)
	}

	rawFeatures, ok := resp.member("features")
	if !ok {
		return nil, errors.New("parse online route: missing features")
	}
	var features []jsonObject
	if err := json.Unmarshal(rawFeatures, &features); err != nil {
		return nil, fmt.Errorf("parse online route: features: %w", err)
	}

	trace := make([]domain.GeoPoint, 0)
	for i, f := range features {
		points, err := featurePoints(f)
		if err != nil {
			return nil, fmt.Errorf("parse online route: feature %d: %w", i, err)
		}
		trace = append(trace, points...)
	}

	return trace, nil
}

func featurePoints(f jsonObject) ([]domain.GeoPoint, error) {
	rawGeometry, ok := f.member("geometry")
	if !ok {
		return nil, errors.New("missing geometry")
	}
	var geometry jsonObject
	if err := json.Unmarshal(rawGeometry, &geometry); err != nil {
		return nil, fmt.Errorf("geometry: %w", err)
	}

	rawType, ok := geometry.member("type")
	if !ok {
		return nil, errors.New("missing geometry type")
	}
	var typ string
	if err := json.Unmarshal(rawType, &typ); err != nil {
		return nil, fmt.Errorf("geometry type: %w", err)
	}
	if typ != "LineString" {
		return nil, nil
	}

	rawCoords, ok := geometry.member("coordinates")
	if !ok {
		return nil, errors.New("missing coordinates")
	}
	var coords [][]float64
	if err := json.Unmarshal(rawCoords, &coords); err != nil {
		return nil, fmt.Errorf("coordinates: %w", err)
	}

	points := make([]domain.GeoPoint, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		points = append(points, domain.GeoPoint{Lat: c[1], Lon: c[0]})
	}
	return points, nil
}
