package vesseltrack

import (
	"github.com/paulmach/orb"
)

// Point is an observed position: X is longitude, Y is latitude (degrees),
// T is the observation time in unix seconds, carried as the M ordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	T float64 `json:"m"`
}

func (p Point) Orb() orb.Point {
	return orb.Point{p.X, p.Y}
}

// Trajectory is the caller-ordered sequence of observed points.
// It is never reordered, resampled or deduplicated.
type Trajectory []Point

func (t Trajectory) Len() int {
	return len(t)
}

func (t Trajectory) LineString() orb.LineString {
	ls := make(orb.LineString, len(t))
	for i, p := range t {
		ls[i] = p.Orb()
	}
	return ls
}

func (t Trajectory) Bound() orb.Bound {
	return t.LineString().Bound()
}

// Last returns the final point, or false for an empty trajectory.
func (t Trajectory) Last() (Point, bool) {
	if len(t) == 0 {
		return Point{}, false
	}
	return t[len(t)-1], true
}

// Duration is the span in seconds between the first and last point.
func (t Trajectory) Duration() float64 {
	if len(t) < 2 {
		return 0
	}
	return t[len(t)-1].T - t[0].T
}

func (t Trajectory) Clone() Trajectory {
	if t == nil {
		return nil
	}
	out := make(Trajectory, len(t))
	copy(out, t)
	return out
}
