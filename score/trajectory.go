package score

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/rotblauer/aistrust/common"
	"github.com/rotblauer/aistrust/geo/fit"
	"github.com/rotblauer/aistrust/geo/sphere"
	"github.com/rotblauer/aistrust/types/vesseltrack"
)

const (
	// TrajectoryTolerance is the prediction error in meters that goes unpenalized.
	TrajectoryTolerance = 10.0
	// trajectoryScale sets how fast the score falls with excess error (m^2).
	trajectoryScale = 1000.0
	// MinTrajectoryPoints is the smallest trajectory with one full window.
	MinTrajectoryPoints = 5
)

// Window is the scored neighbourhood of one interior trajectory point.
type Window struct {
	Index     int       `json:"index"`
	Predicted orb.Point `json:"predicted"`
	Distance  float64   `json:"distance"`
	Score     float64   `json:"score"`
}

// WindowScore fits x(t) and y(t) quadratics through the first four points
// and scores how close the prediction at the fifth point's time lands to it.
// Times are taken relative to the first point.
func WindowScore(w [5]vesseltrack.Point) (Window, error) {
	t0 := w[0].T
	xs := make([][2]float64, 4)
	ys := make([][2]float64, 4)
	for i, p := range w[:4] {
		xs[i] = [2]float64{p.T - t0, p.X}
		ys[i] = [2]float64{p.T - t0, p.Y}
	}
	cx, err := fit.Quadratic(xs)
	if err != nil {
		return Window{}, err
	}
	cy, err := fit.Quadratic(ys)
	if err != nil {
		return Window{}, err
	}

	control := w[4]
	t := control.T - t0
	predicted := orb.Point{fit.EvalQuadratic(cx, t), fit.EvalQuadratic(cy, t)}

	d := common.ClampZero(sphere.Haversine(control.Orb(), predicted) - TrajectoryTolerance)
	return Window{
		Predicted: predicted,
		Distance:  d,
		Score:     1 / (1 + d*d/trajectoryScale),
	}, nil
}

// TrajectoryWindows scores every interior point i in [2, n-3] against the
// window [p(i-2), p(i-1), p(i+1), p(i+2), p(i)]. Windows whose fit is
// degenerate or whose score is not finite are left out.
func TrajectoryWindows(traj vesseltrack.Trajectory) []Window {
	if len(traj) < MinTrajectoryPoints {
		return nil
	}
	out := make([]Window, 0, len(traj)-4)
	for i := 2; i < len(traj)-2; i++ {
		w, err := WindowScore([5]vesseltrack.Point{traj[i-2], traj[i-1], traj[i+1], traj[i+2], traj[i]})
		if err != nil || !common.IsFinite(w.Score) {
			continue
		}
		w.Index = i
		out = append(out, w)
	}
	return out
}

// Trajectory is the decayed average of the window scores, NaN if there are none.
func Trajectory(vt *vesseltrack.VesselTrack) Result {
	windows := TrajectoryWindows(vt.Trajectory)
	scores := make([]float64, len(windows))
	for i, w := range windows {
		scores[i] = w.Score
	}
	if len(scores) == 0 {
		return Result{Score: math.NaN()}
	}
	return Result{Score: DecayedAverage(scores), Samples: scores}
}
