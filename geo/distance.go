package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used by the spherical approximation.
const EarthRadiusMeters = 6371000.0

// DistanceMeters returns the great-circle distance between a and b using the haversine formula.
func DistanceMeters(a, b Position) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	deltaLat := toRadians(b.Latitude - a.Latitude)
	deltaLng := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(deltaLng/2)*math.Sin(deltaLng/2)
	// rounding can push h marginally above 1 for antipodal points
	h = math.Min(1, h)

	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
