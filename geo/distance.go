package geo

import "math"

// EarthRadiusKM is the mean Earth radius used by DistanceKm
const EarthRadiusKM = 6371.0

// DistanceKm returns the haversine great-circle distance between two points.
// The result is symmetric, never negative and exactly 0 for identical points.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)
	la1 := toRadians(lat1)
	la2 := toRadians(lat2)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(la1)*math.Cos(la2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// rounding can push a a hair outside [0,1] and make Sqrt(1-a) NaN
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKM * c
}

// Round2 rounds a distance to two decimal places for presentation
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
