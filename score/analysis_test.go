package score

import (
	"math"
	"testing"

	"github.com/rotblauer/aistrust/testing/testdata"
	"github.com/rotblauer/aistrust/types/aismsg"
	"github.com/rotblauer/aistrust/types/vesseltrack"
)

func TestDecayedAverage(t *testing.T) {
	if !math.IsNaN(DecayedAverage(nil)) {
		t.Error("empty should be NaN")
	}
	if got := DecayedAverage([]float64{0.4}); math.Abs(got-0.4) > 1e-15 {
		t.Errorf("single: got %v", got)
	}
	if got := DecayedAverage([]float64{0.7, 0.7, 0.7}); math.Abs(got-0.7) > 1e-15 {
		t.Errorf("constant: got %v", got)
	}
	// The last element is the most recent and weighs most.
	recentGood := DecayedAverage([]float64{0, 1})
	recentBad := DecayedAverage([]float64{1, 0})
	if !(recentGood > 0.5 && recentBad < 0.5) {
		t.Errorf("recency not favoured: %v %v", recentGood, recentBad)
	}
	if math.Abs(recentGood-1/(1+DecayFactor)) > 1e-15 {
		t.Errorf("got %v", recentGood)
	}
}

func TestWindowScore_Danish(t *testing.T) {
	p := testdata.DanishTrajectory
	w, err := WindowScore([5]vesseltrack.Point{p[2], p[3], p[5], p[6], p[4]})
	if err != nil {
		t.Fatal(err)
	}
	if w.Score != 1 {
		t.Errorf("got %v, want exactly 1", w.Score)
	}
}

func TestWindowScore_Degenerate(t *testing.T) {
	p := vesseltrack.Point{X: 10, Y: 55, T: 100}
	_, err := WindowScore([5]vesseltrack.Point{p, p, p, p, p})
	if err == nil {
		t.Error("expected a degenerate fit error")
	}
}

func TestTrajectory_InsufficientPoints(t *testing.T) {
	traj := testdata.DanishTrajectory[:4]
	if r := Trajectory(vesseltrack.FromTrajectory(1, nil, traj)); !math.IsNaN(r.Score) {
		t.Errorf("got %v, want NaN", r.Score)
	}
	traj = testdata.DanishTrajectory[:5]
	if r := Trajectory(vesseltrack.FromTrajectory(1, nil, traj)); len(r.Samples) != 1 {
		t.Errorf("got %d windows, want 1", len(r.Samples))
	}
}

func TestTrajectory_StraightLineIsPerfect(t *testing.T) {
	r := Trajectory(vesseltrack.FromTrajectory(1, nil, testdata.StraightTrajectory(20, 60)))
	if r.Score != 1 || len(r.Samples) != 16 {
		t.Errorf("got %v over %d windows", r.Score, len(r.Samples))
	}
}

// A displacement near the end of the track weighs more than the same
// displacement near the start.
func TestTrajectory_RecentAnomalyWeighsMore(t *testing.T) {
	displaced := func(k int) vesseltrack.Trajectory {
		traj := testdata.StraightTrajectory(20, 60)
		traj[k].Y += 0.01
		return traj
	}
	early := Trajectory(vesseltrack.FromTrajectory(1, nil, displaced(4)))
	late := Trajectory(vesseltrack.FromTrajectory(1, nil, displaced(15)))
	if len(early.Samples) != len(late.Samples) {
		t.Fatalf("window counts differ: %d %d", len(early.Samples), len(late.Samples))
	}
	if !(late.Score < early.Score) {
		t.Errorf("late anomaly %v should score below early anomaly %v", late.Score, early.Score)
	}
	if early.Score >= 1 || late.Score >= 1 {
		t.Errorf("anomaly not detected: %v %v", early.Score, late.Score)
	}
}

func TestTrajectory_InsertedOutlier(t *testing.T) {
	insert := func(at int) vesseltrack.Trajectory {
		traj := append(vesseltrack.Trajectory{}, testdata.DanishTrajectory[:at]...)
		traj = append(traj, testdata.Rom)
		return append(traj, testdata.DanishTrajectory[at:]...)
	}
	clean := Trajectory(testdata.DanishTrack())
	early := Trajectory(vesseltrack.FromTrajectory(1, nil, insert(2)))
	late := Trajectory(vesseltrack.FromTrajectory(1, nil, insert(8)))
	if !(early.Score < clean.Score && late.Score < clean.Score) {
		t.Errorf("outlier not penalized: clean %v early %v late %v", clean.Score, early.Score, late.Score)
	}
	if !(late.Score < early.Score) {
		t.Errorf("late outlier %v should score below early outlier %v", late.Score, early.Score)
	}
}

func TestCourse(t *testing.T) {
	traj := vesseltrack.Trajectory{{X: 10, Y: 55, T: 0}, {X: 10, Y: 55.01, T: 60}, {X: 10, Y: 55.02, T: 120}}
	cases := []struct {
		name string
		cogs []*float64
		want float64
	}{
		{"within tolerance", []*float64{aismsg.Float(10), aismsg.Float(5)}, 1},
		{"raw difference", []*float64{aismsg.Float(195)}, 1 - 180.0/360},
		{"missing skipped", []*float64{nil, aismsg.Float(0)}, 1},
		{"none", []*float64{nil, nil}, math.NaN()},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			msgs := make([]aismsg.Message, len(c.cogs))
			for i, cog := range c.cogs {
				msgs[i].COG = cog
			}
			got := Course(vesseltrack.FromTrajectory(1, msgs, traj)).Score
			if math.IsNaN(c.want) {
				if !math.IsNaN(got) {
					t.Errorf("got %v, want NaN", got)
				}
				return
			}
			if math.Abs(got-c.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, c.want)
			}
		})
	}
}

func TestSpeed(t *testing.T) {
	traj := testdata.StraightTrajectory(3, 60) // 6 m/s
	kn := 6 / 0.5144444444
	cases := []struct {
		name string
		sogs []*float64
		want float64
	}{
		{"exact", []*float64{aismsg.Float(kn), aismsg.Float(kn)}, 1},
		{"within ten percent", []*float64{aismsg.Float(kn * 1.05)}, 1},
		// Reported 0 kn: the whole 6 m/s is excess.
		{"reported still", []*float64{aismsg.Float(0)}, 1 / (1 + 36.0/10)},
		{"missing", []*float64{nil}, math.NaN()},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			msgs := make([]aismsg.Message, len(c.sogs))
			for i, sog := range c.sogs {
				msgs[i].SOG = sog
			}
			got := Speed(vesseltrack.FromTrajectory(1, msgs, traj)).Score
			if math.IsNaN(c.want) {
				if !math.IsNaN(got) {
					t.Errorf("got %v, want NaN", got)
				}
				return
			}
			if math.Abs(got-c.want) > 1e-3 {
				t.Errorf("got %v, want %v", got, c.want)
			}
		})
	}
}

func TestSpeed_SkipsZeroElapsed(t *testing.T) {
	traj := vesseltrack.Trajectory{{X: 10, Y: 55, T: 0}, {X: 10.001, Y: 55, T: 0}, {X: 10.002, Y: 55, T: 60}}
	msgs := []aismsg.Message{{SOG: aismsg.Float(1)}, {SOG: aismsg.Float(1)}}
	r := Speed(vesseltrack.FromTrajectory(1, msgs, traj))
	if len(r.Samples) != 1 {
		t.Errorf("got %d samples, want 1", len(r.Samples))
	}
}

func timesTrajectory(ts ...float64) vesseltrack.Trajectory {
	out := make(vesseltrack.Trajectory, len(ts))
	for i, t := range ts {
		out[i] = vesseltrack.Point{X: 10, Y: 55, T: t}
	}
	return out
}

func TestFrequency(t *testing.T) {
	cases := []struct {
		name  string
		times []float64
		want  float64
	}{
		{"one gap", []float64{0, 300, 1200, 1500}, 2.0 / 3},
		{"regular", []float64{0, 500, 1000, 1500}, 1},
		{"one per chunk", []float64{0, 600, 1200, 1800}, 1},
		{"two points", []float64{0, 1300}, 2.0 / 3},
		{"two points one chunk", []float64{0, 1}, 1},
		{"one point", []float64{0}, 1},
		{"empty", nil, math.NaN()},
		// More than half the chunks are empty.
		{"median zero", []float64{0, 1, 2, 3000}, math.NaN()},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Frequency(vesseltrack.FromTrajectory(1, nil, timesTrajectory(c.times...))).Score
			if math.IsNaN(c.want) {
				if !math.IsNaN(got) {
					t.Errorf("got %v, want NaN", got)
				}
				return
			}
			if math.Abs(got-c.want) > 1e-3 {
				t.Errorf("got %v, want %v", got, c.want)
			}
		})
	}
}

func TestChunkCounts(t *testing.T) {
	got := ChunkCounts(timesTrajectory(0, 300, 1200, 1500))
	want := []int{2, 0, 2}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
	if m := medianCount([]int{1, 2, 3, 4}); m != 3 {
		t.Errorf("upper median of 4: got %d", m)
	}
}

func TestAggregate(t *testing.T) {
	nan := Result{Score: math.NaN()}
	b := Aggregate(Result{Score: 0.2}, nan, Result{Score: 0.8}, nan)
	if math.Abs(b.Trustworthiness-0.5) > 1e-12 {
		t.Errorf("got %v", b.Trustworthiness)
	}
	if b.Reason != ReasonTrajectory {
		t.Errorf("got %q", b.Reason)
	}
	all := Aggregate(nan, nan, nan, nan)
	if all.Trustworthiness != 1 || all.Reason != "" {
		t.Errorf("all undefined: %v %q", all.Trustworthiness, all.Reason)
	}
	low := Aggregate(Result{Score: 0.1}, Result{Score: 0.1}, Result{Score: 0.1}, Result{Score: 0.1})
	if low.Reason != "bad trajectory | bad COG | bad SOG | low message frequency" {
		t.Errorf("got %q", low.Reason)
	}
}
