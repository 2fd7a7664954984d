package score

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/rotblauer/aistrust/common"
)

const (
	// NominalWeight is the weight of each defined dimension.
	NominalWeight = 0.25
	// ReasonThreshold is the dimension score below which a reason tag is emitted.
	ReasonThreshold = 0.5
	// ReasonSeparator joins reason tags.
	ReasonSeparator = " | "
)

const (
	ReasonTrajectory = "bad trajectory"
	ReasonCourse     = "bad COG"
	ReasonSpeed      = "bad SOG"
	ReasonFrequency  = "low message frequency"
)

// Result is the output of one analysis: its combined score (NaN when there
// was nothing to analyze) and the per-sample scores it was combined from.
type Result struct {
	Score   float64
	Samples []float64
}

// Summary describes the per-sample scores of a dimension.
type Summary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Dimension is one analysis as it entered the aggregate.
// Score keeps the value before substitution, so it may be NaN.
type Dimension struct {
	Name    string  `json:"name"`
	Score   float64 `json:"score"`
	Weight  float64 `json:"weight"`
	Samples int     `json:"samples"`
	Summary Summary `json:"summary"`
}

func (d Dimension) Defined() bool {
	return !math.IsNaN(d.Score)
}

// MarshalJSON writes an undefined score as null.
func (d Dimension) MarshalJSON() ([]byte, error) {
	type plain Dimension
	out := struct {
		plain
		Score *float64 `json:"score"`
	}{plain: plain(d)}
	if d.Defined() {
		s := d.Score
		out.Score = &s
	}
	return json.Marshal(out)
}

func (d *Dimension) UnmarshalJSON(b []byte) error {
	type plain Dimension
	in := struct {
		*plain
		Score *float64 `json:"score"`
	}{plain: (*plain)(d)}
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	d.Score = math.NaN()
	if in.Score != nil {
		d.Score = *in.Score
	}
	return nil
}

// Breakdown is the full, immutable account of one scoring call.
type Breakdown struct {
	Trajectory Dimension `json:"trajectory"`
	Course     Dimension `json:"course"`
	Speed      Dimension `json:"speed"`
	Frequency  Dimension `json:"frequency"`

	Trustworthiness float64 `json:"trustworthiness"`
	Reason          string  `json:"reason"`

	// CellToken is the S2 cell of the last observed position.
	CellToken string `json:"cell,omitempty"`
}

func (b *Breakdown) Dimensions() []Dimension {
	return []Dimension{b.Trajectory, b.Course, b.Speed, b.Frequency}
}

func newDimension(name string, r Result) Dimension {
	d := Dimension{Name: name, Score: r.Score, Samples: len(r.Samples)}
	if d.Defined() {
		d.Weight = NominalWeight
	}
	if len(r.Samples) > 0 {
		d.Summary = summarize(r.Samples)
	}
	return d
}

func summarize(samples []float64) Summary {
	statsMustFloat := func(fn func() (float64, error)) float64 {
		out, err := fn()
		if err != nil {
			return 0
		}
		return common.DecimalToFixed(out, 6)
	}
	data := stats.Float64Data(samples)
	return Summary{
		Mean:   statsMustFloat(data.Mean),
		Median: statsMustFloat(data.Median),
		Min:    statsMustFloat(data.Min),
		Max:    statsMustFloat(data.Max),
	}
}

// Aggregate combines the four analyses. An undefined (NaN) dimension counts as
// score 1 with weight 0. If no dimension is defined, or the result is not
// finite, trustworthiness is 1: absence of evidence is not penalized.
func Aggregate(trajectory, course, speed, frequency Result) *Breakdown {
	b := &Breakdown{
		Trajectory: newDimension("trajectory", trajectory),
		Course:     newDimension("course", course),
		Speed:      newDimension("speed", speed),
		Frequency:  newDimension("frequency", frequency),
	}

	var num, den float64
	for _, d := range b.Dimensions() {
		s := d.Score
		if !d.Defined() {
			s = 1
		}
		num += s * d.Weight
		den += d.Weight
	}
	b.Trustworthiness = num / den
	if !common.IsFinite(b.Trustworthiness) {
		b.Trustworthiness = 1
	}
	b.Reason = Reason(b)
	return b
}

// Reason lists the tags of defined dimensions scoring below ReasonThreshold,
// in dimension order.
func Reason(b *Breakdown) string {
	tags := []struct {
		d   Dimension
		tag string
	}{
		{b.Trajectory, ReasonTrajectory},
		{b.Course, ReasonCourse},
		{b.Speed, ReasonSpeed},
		{b.Frequency, ReasonFrequency},
	}
	var reasons []string
	for _, t := range tags {
		// NaN compares false, so undefined dimensions never give a reason.
		if t.d.Score < ReasonThreshold {
			reasons = append(reasons, t.tag)
		}
	}
	return strings.Join(reasons, ReasonSeparator)
}
