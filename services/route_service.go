package services

import (
	"math"
)

// Coordinate is a geographic point in decimal degrees
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

const earthRadiusKm = 6371.0

// Haversine returns the great-circle distance between two points in
// kilometers. Centimeter precision, which is more than enough for
// route planning between stores.
func Haversine(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// RouteDistance sums the pairwise distances between consecutive stops
// in the order given; the path is not re-optimized. Sequences of zero
// or one stops yield 0. Every point must carry a complete coordinate;
// callers filter incomplete ones before calling.
func RouteDistance(points []Coordinate) float64 {
	if len(points) < 2 {
		return 0
	}
	total := 0.0
	for i := 0; i < len(points)-1; i++ {
		total += Haversine(points[i], points[i+1])
	}
	return total
}
