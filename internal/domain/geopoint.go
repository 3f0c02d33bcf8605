package domain

import "strconv"

// Immutable geographic point (latitude, longitude) in WGS84 degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Return the point as [lon, lat] for GeoJSON compatibility.
func (p GeoPoint) LonLat() [2]float64 { return [2]float64{p.Lon, p.Lat} }

// String renders "lat,lon" using the shortest decimal form that round-trips,
// never an exponent (30 -> "30", 1e-5 -> "0.00001").
func (p GeoPoint) String() string {
	return FormatDegrees(p.Lat) + "," + FormatDegrees(p.Lon)
}

// FormatDegrees is the single numeric format used on the wire for coordinates.
func FormatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
