package score

import (
	"sync"

	"github.com/rotblauer/aistrust/geo/sphere"
	"github.com/rotblauer/aistrust/types/vesseltrack"
)

// Analysis is one scoring dimension. It may modify the track it is given.
type Analysis func(vt *vesseltrack.VesselTrack) Result

// Simple is the analytical scorer: trajectory fit, course, speed and
// report frequency, combined by Aggregate.
type Simple struct{}

// Score runs the four analyses concurrently, each on its own deep copy of vt,
// and returns their aggregate. It holds no state between calls.
func (Simple) Score(vt *vesseltrack.VesselTrack) *Breakdown {
	analyses := [4]Analysis{Trajectory, Course, Speed, Frequency}
	var results [4]Result

	var wg sync.WaitGroup
	for i, fn := range analyses {
		wg.Add(1)
		go func(i int, fn Analysis, clone *vesseltrack.VesselTrack) {
			defer wg.Done()
			results[i] = fn(clone)
		}(i, fn, vt.Clone())
	}
	wg.Wait()

	b := Aggregate(results[0], results[1], results[2], results[3])
	if last, ok := vt.Trajectory.Last(); ok {
		b.CellToken = sphere.CellToken(last.Orb(), sphere.CellLevel8)
	}
	return b
}
