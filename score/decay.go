package score

import (
	"math"
)

// DecayFactor is the per-step weight ratio of the decayed average.
const DecayFactor = 0.9999

// DecayedAverage combines a chronological sequence of scores so that the most
// recent score carries the largest weight: after reversing, element i is
// weighted DecayFactor^(i+1). Empty input is NaN.
func DecayedAverage(scores []float64) float64 {
	reversed := make([]float64, len(scores))
	for i, s := range scores {
		reversed[len(scores)-1-i] = s
	}
	return decayWeighted(reversed)
}

// decayWeighted weights scores in the order given, index 0 heaviest.
func decayWeighted(scores []float64) float64 {
	if len(scores) == 0 {
		return math.NaN()
	}
	var num, den float64
	w := 1.0
	for _, s := range scores {
		w *= DecayFactor
		num += s * w
		den += w
	}
	return num / den
}
