package score_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/rotblauer/aistrust/score"
	"github.com/rotblauer/aistrust/testing/testdata"
	"github.com/rotblauer/aistrust/types/aismsg"
	"github.com/rotblauer/aistrust/types/vesseltrack"
)

type perturbation func(r *rand.Rand, vt *vesseltrack.VesselTrack)

func randomCOG(r *rand.Rand, vt *vesseltrack.VesselTrack) {
	for i := range vt.Messages {
		vt.Messages[i].COG = aismsg.Float(r.Float64() * 360)
	}
}

func randomSOG(r *rand.Rand, vt *vesseltrack.VesselTrack) {
	for i := range vt.Messages {
		vt.Messages[i].SOG = aismsg.Float(r.Float64() * 60)
	}
}

func dropFields(r *rand.Rand, vt *vesseltrack.VesselTrack) {
	for i := range vt.Messages {
		if r.IntN(2) == 0 {
			vt.Messages[i].COG = nil
		}
		if r.IntN(2) == 0 {
			vt.Messages[i].SOG = nil
		}
	}
}

// outliers moves a few points up to half a degree away.
func outliers(r *rand.Rand, vt *vesseltrack.VesselTrack) {
	for n := 1 + r.IntN(3); n > 0; n-- {
		i := r.IntN(len(vt.Trajectory))
		vt.Trajectory[i].X += r.Float64() - 0.5
		vt.Trajectory[i].Y += r.Float64() - 0.5
	}
}

// jitterTime shifts timestamps by up to five minutes, which can reorder
// points or give two points the same time.
func jitterTime(r *rand.Rand, vt *vesseltrack.VesselTrack) {
	for i := range vt.Trajectory {
		vt.Trajectory[i].T += math.Round(r.Float64()*600 - 300)
	}
}

func truncate(r *rand.Rand, vt *vesseltrack.VesselTrack) {
	n := r.IntN(len(vt.Trajectory) + 1)
	vt.Trajectory = vt.Trajectory[:n]
	vt.Messages = vt.Messages[:r.IntN(len(vt.Messages)+1)]
}

func TestSimple_PerturbedStaysInRange(t *testing.T) {
	cases := []struct {
		name    string
		perturb []perturbation
	}{
		{"cog", []perturbation{randomCOG}},
		{"sog", []perturbation{randomSOG}},
		{"missing fields", []perturbation{dropFields}},
		{"outliers", []perturbation{outliers}},
		{"time jitter", []perturbation{jitterTime}},
		{"truncated", []perturbation{truncate}},
		{"everything", []perturbation{randomCOG, randomSOG, outliers, jitterTime, dropFields, truncate}},
	}
	for ci, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := rand.New(rand.NewPCG(uint64(ci), 219019887))
			for run := 0; run < 50; run++ {
				vt := testdata.DanishTrack()
				for _, p := range c.perturb {
					p(r, vt)
				}
				b := score.Simple{}.Score(vt)
				if math.IsNaN(b.Trustworthiness) || b.Trustworthiness < 0 || b.Trustworthiness > 1 {
					t.Fatalf("run %d: trustworthiness %v out of [0,1]", run, b.Trustworthiness)
				}
				for _, d := range b.Dimensions() {
					if d.Defined() && (d.Score < 0 || d.Score > 1) {
						t.Fatalf("run %d: %s score %v out of [0,1]", run, d.Name, d.Score)
					}
				}
			}
		})
	}
}
