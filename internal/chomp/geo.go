package chomp

import "math"

const earthRadiusMeters = 6371000.0

// Distance approximates the distance in metres between a and b using an
// equirectangular projection. Good enough at city scale; not a geodesic.
func Distance(a, b Location) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	x := dLng * math.Cos((lat1+lat2)/2)
	y := dLat
	return math.Sqrt(x*x+y*y) * earthRadiusMeters
}
