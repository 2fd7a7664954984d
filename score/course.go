package score

import (
	"math"

	"github.com/rotblauer/aistrust/common"
	"github.com/rotblauer/aistrust/geo/sphere"
	"github.com/rotblauer/aistrust/types/vesseltrack"
)

// CourseTolerance is the bearing disagreement in degrees that goes unpenalized.
const CourseTolerance = 15.0

// Bearings returns the bearing of each consecutive pair of points.
func Bearings(traj vesseltrack.Trajectory) []float64 {
	if len(traj) < 2 {
		return nil
	}
	out := make([]float64, len(traj)-1)
	for i := range out {
		out[i] = sphere.Bearing(traj[i].Orb(), traj[i+1].Orb())
	}
	return out
}

// Course compares observed bearings with reported COG.
// Bearing k is paired with message k by position, truncated to the shorter list;
// messages without a course are skipped.
func Course(vt *vesseltrack.VesselTrack) Result {
	bearings := Bearings(vt.Trajectory)
	n := min(len(bearings), len(vt.Messages))
	scores := make([]float64, 0, n)
	for k := 0; k < n; k++ {
		m := vt.Messages[k]
		if !m.HasCOG() {
			continue
		}
		diff := math.Abs(bearings[k] - *m.COG)
		excess := common.ClampZero(diff - CourseTolerance)
		scores = append(scores, 1-excess/360)
	}
	if len(scores) == 0 {
		return Result{Score: math.NaN()}
	}
	return Result{Score: DecayedAverage(scores), Samples: scores}
}
