package testdata

import (
	"time"

	"github.com/rotblauer/aistrust/conceptual"
	"github.com/rotblauer/aistrust/types/aismsg"
	"github.com/rotblauer/aistrust/types/vesseltrack"
)

// DanishMMSI is a ferry crossing Kattegat, 2024-09-09.
const DanishMMSI conceptual.MMSI = 219019887

// DanishTrajectory
// start time:    1725863029.3645544
// end time:      1725863341.3673398
// sog: ~11.5
// Points 9 and 10 share a timestamp; point 11 is 1.6 km off in 1.4 s.
var DanishTrajectory = vesseltrack.Trajectory{
	{X: 10.521091672283175, Y: 55.87986060393064, T: 1725863029.3645544},
	{X: 10.520233, Y: 55.88015, T: 1725863040},
	{X: 10.51415, Y: 55.8823, T: 1725863116},
	{X: 10.510617, Y: 55.883583, T: 1725863161},
	{X: 10.5046, Y: 55.885733, T: 1725863236},
	{X: 10.5037, Y: 55.886017, T: 1725863246},
	{X: 10.502933, Y: 55.886217, T: 1725863255},
	{X: 10.5002, Y: 55.886817, T: 1725863286},
	{X: 10.495417, Y: 55.887917, T: 1725863340},
	{X: 10.4955, Y: 55.8879, T: 1725863340},
	{X: 10.469878675102462, Y: 55.89283935425969, T: 1725863341.3673398},
}

// DanishTrajectoryHexWKB is DanishTrajectory as little endian ISO WKB (LineString M).
const DanishTrajectoryHexWKB = "01d20700000b0000002f591587cc0a2540e075b3459ff04b40dc54571da5b7d941" +
	"9599d2fa5b0a254086c954c1a8f04b4000000020a5b7d941107a36ab3e07254062a1d634eff04b4000000033a5b7d941" +
	"329067976f0525409a266c3f19f14b400000403ea5b7d9418a1f63ee5a02254076feedb25ff14b4000000051a5b7d941" +
	"8bfd65f7e40125409b594b0169f14b4000008053a5b7d9418928266f800125406214048f6ff14b400000c055a5b7d941" +
	"1cebe2361a002540b7442e3883f14b400000805da5b7d941cec3094ca7fd2440fe47a643a7f14b400000006ba5b7d941" +
	"04560e2db2fd2440280f0bb5a6f14b400000006ba5b7d941474e0df093f024404690598f48f24b407f82576ba5b7d941"

// Rom is a point 80 km west of DanishTrajectory.
var Rom = vesseltrack.Point{X: 8.489810899999998, Y: 56.514157499999996, T: 1725863040}

// Paris is 65 km from Rom.
var Paris = vesseltrack.Point{X: 9.2409831, Y: 56.0996635, T: 1725863116}

const (
	EmptyLineStringHex      = "010200000000000000"
	EmptyMultiLineStringHex = "010500000000000000"
)

// DanishMessages reports sog 11.5 and cog 295 once per trajectory point.
func DanishMessages() []aismsg.Message {
	msgs := make([]aismsg.Message, len(DanishTrajectory))
	for i, p := range DanishTrajectory {
		msgs[i] = aismsg.Message{
			ID:        int64(i + 1),
			MMSI:      DanishMMSI,
			Timestamp: unix(p.T),
			SOG:       aismsg.Float(11.5),
			COG:       aismsg.Float(295),
		}
	}
	return msgs
}

func DanishTrack() *vesseltrack.VesselTrack {
	return vesseltrack.FromTrajectory(DanishMMSI, DanishMessages(), DanishTrajectory.Clone())
}

// StraightTrajectory heads due east along 55.88N at a constant 6 m/s,
// one point every dt seconds.
func StraightTrajectory(n int, dt float64) vesseltrack.Trajectory {
	const lat = 55.88
	const metersPerDegreeLon = 62_395.0 // at 55.88N
	out := make(vesseltrack.Trajectory, n)
	for i := range out {
		t := float64(i) * dt
		out[i] = vesseltrack.Point{
			X: 10.0 + 6*t/metersPerDegreeLon,
			Y: lat,
			T: 1725863000 + t,
		}
	}
	return out
}

func unix(sec float64) time.Time {
	whole := int64(sec)
	return time.Unix(whole, int64((sec-float64(whole))*1e9)).UTC()
}
