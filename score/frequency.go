package score

import (
	"math"
	"sort"

	"github.com/rotblauer/aistrust/types/vesseltrack"
)

// FrequencyChunk is the width in seconds of a report counting bucket.
const FrequencyChunk = 600.0

// ChunkCounts buckets trajectory points into FrequencyChunk second intervals
// from the first point. Empty intervals are kept as zero counts.
func ChunkCounts(traj vesseltrack.Trajectory) []int {
	if len(traj) == 0 {
		return nil
	}
	t0 := traj[0].T
	idx := make([]int, len(traj))
	last := 0
	for i, p := range traj {
		k := int(math.Floor((p.T - t0) / FrequencyChunk))
		if k < 0 {
			// Out of order before the first point; count it with the first chunk.
			k = 0
		}
		idx[i] = k
		last = max(last, k)
	}
	counts := make([]int, last+1)
	for _, k := range idx {
		counts[k]++
	}
	return counts
}

// medianCount is the upper median: sorted[n/2].
func medianCount(counts []int) int {
	sorted := append([]int(nil), counts...)
	sort.Ints(sorted)
	return sorted[len(sorted)/2]
}

// Frequency scores each chunk as min(count, median)/median and combines them
// in chunk order, earliest first. Quiet gaps pull the score down; bursts do not
// lift it above 1.
func Frequency(vt *vesseltrack.VesselTrack) Result {
	if len(vt.Trajectory) == 0 {
		return Result{Score: math.NaN()}
	}
	counts := ChunkCounts(vt.Trajectory)
	median := medianCount(counts)
	if median == 0 {
		return Result{Score: math.NaN()}
	}
	scores := make([]float64, len(counts))
	for i, c := range counts {
		scores[i] = float64(min(c, median)) / float64(median)
	}
	return Result{Score: decayWeighted(scores), Samples: scores}
}
