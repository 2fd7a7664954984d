package score

import (
	"math"

	"github.com/rotblauer/aistrust/common"
	"github.com/rotblauer/aistrust/geo/sphere"
	"github.com/rotblauer/aistrust/types/vesseltrack"
)

const (
	// SpeedToleranceRatio is the fraction of reported speed that goes unpenalized.
	SpeedToleranceRatio = 0.1
	// speedScale sets how fast the score falls with excess speed ((m/s)^2).
	speedScale = 10.0
)

// ObservedSpeeds returns distance over elapsed time for each consecutive pair, in m/s.
// Pairs with no elapsed time give +Inf or NaN.
func ObservedSpeeds(traj vesseltrack.Trajectory) []float64 {
	if len(traj) < 2 {
		return nil
	}
	out := make([]float64, len(traj)-1)
	for i := range out {
		a, b := traj[i], traj[i+1]
		out[i] = sphere.Haversine(a.Orb(), b.Orb()) / (b.T - a.T)
	}
	return out
}

// Speed compares observed speeds with reported SOG.
// Pairing is positional, as for Course; messages without a speed and
// non-finite values on either side are skipped.
func Speed(vt *vesseltrack.VesselTrack) Result {
	observed := ObservedSpeeds(vt.Trajectory)
	n := min(len(observed), len(vt.Messages))
	scores := make([]float64, 0, n)
	for k := 0; k < n; k++ {
		m := vt.Messages[k]
		if !m.HasSOG() {
			continue
		}
		obs := observed[k]
		rep := common.KnotsToMetersPerSecond(*m.SOG)
		if !common.IsFinite(obs) || !common.IsFinite(rep) {
			continue
		}
		excess := common.ClampZero(math.Abs(obs-rep) - rep*SpeedToleranceRatio)
		scores = append(scores, 1/(1+excess*excess/speedScale))
	}
	if len(scores) == 0 {
		return Result{Score: math.NaN()}
	}
	return Result{Score: DecayedAverage(scores), Samples: scores}
}
