package common

// All units are in metric unless named otherwise:
// - Speed is in m/s
// - Distance is in meters
// - Time is in seconds

// EarthRadius is the mean radius used for great-circle distances.
const EarthRadius = 6_371_000.0

// KnotToMetersPerSecond converts AIS speed over ground (knots) to m/s.
// 1 kn = 1852 m / 3600 s.
const KnotToMetersPerSecond = 0.5144444444

// KnotsToMetersPerSecond converts a reported speed in knots to m/s.
func KnotsToMetersPerSecond(kn float64) float64 {
	return kn * KnotToMetersPerSecond
}
