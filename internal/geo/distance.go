package geo

import (
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is the mean Earth radius used to scale angular distances.
const EarthRadiusMeters = 6371000.0

// DistanceMeters returns the great-circle distance between two points given
// in decimal degrees.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	a := s2.LatLngFromDegrees(lat1, lon1)
	b := s2.LatLngFromDegrees(lat2, lon2)
	return a.Distance(b).Radians() * EarthRadiusMeters
}

// OffsetNorth returns the latitude reached by moving meters due north.
func OffsetNorth(lat, meters float64) float64 {
	return lat + s1.Angle(meters/EarthRadiusMeters).Degrees()
}

func ValidLatitude(lat float64) bool  { return lat >= -90 && lat <= 90 }
func ValidLongitude(lon float64) bool { return lon >= -180 && lon <= 180 }
