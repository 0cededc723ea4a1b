// README: Shared location value object (name + coordinates) used by extraction, maps, and trips.
package types

import "math"

const earthRadiusKm = 6371.0

// Location is a named place. The (0, 0) pair marks a name that could not be geocoded.
type Location struct {
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Timezone string  `json:"timezone,omitempty"`
}

// Unresolved reports whether the location carries the geocoding failure sentinel.
func (l Location) Unresolved() bool {
	return l.Lat == 0 && l.Lng == 0
}

// DistanceKm returns the great-circle distance between two resolved locations.
func DistanceKm(a, b Location) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
