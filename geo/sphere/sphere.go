// Package sphere holds the great-circle primitives used by the scorers.
// Points are orb.Point, i.e. [lon, lat] in decimal degrees.
package sphere

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/rotblauer/aistrust/common"
)

func rad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Haversine returns the great-circle distance in meters between a and b
// on a sphere of radius common.EarthRadius.
func Haversine(a, b orb.Point) float64 {
	lat1, lat2 := rad(a.Lat()), rad(b.Lat())
	dLat := lat1 - lat2
	dLon := rad(a.Lon()) - rad(b.Lon())
	h := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLon/2), 2)
	return 2 * common.EarthRadius * math.Asin(math.Sqrt(h))
}

// Bearing returns the initial great-circle bearing from a to b,
// in degrees clockwise from true north, in [0, 360).
func Bearing(a, b orb.Point) float64 {
	lat1, lat2 := rad(a.Lat()), rad(b.Lat())
	dLon := rad(b.Lon()) - rad(a.Lon())

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	theta := math.Atan2(y, x)
	return math.Mod(theta*180/math.Pi+360, 360)
}
