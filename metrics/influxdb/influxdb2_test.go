package influxdb

import (
	"testing"
	"time"

	"github.com/rotblauer/aistrust/score"
	"github.com/rotblauer/aistrust/scorer"
	"github.com/rotblauer/aistrust/testing/testdata"
)

func TestRecordPoint(t *testing.T) {
	b := score.Simple{}.Score(testdata.DanishTrack())
	rec := &scorer.Record{
		MMSI:            testdata.DanishMMSI,
		Trustworthiness: b.Trustworthiness,
		Reason:          b.Reason,
		Algorithm:       scorer.TagSimple,
		ScoredAt:        time.Unix(1725863341, 0),
		Breakdown:       b,
	}
	p := RecordPoint(rec)
	if p.Name() != Measurement {
		t.Errorf("name %q", p.Name())
	}
	tags := map[string]string{}
	for _, tag := range p.TagList() {
		tags[tag.Key] = tag.Value
	}
	if tags["mmsi"] != "219019887" || tags["algorithm"] != "simple" || tags["cell"] != b.CellToken {
		t.Errorf("tags %v", tags)
	}
	fields := map[string]interface{}{}
	for _, f := range p.FieldList() {
		fields[f.Key] = f.Value
	}
	for _, k := range []string{"trustworthiness", "trajectory", "course", "speed", "frequency"} {
		if _, ok := fields[k]; !ok {
			t.Errorf("missing field %s", k)
		}
	}
	if _, ok := fields["reason"]; ok {
		t.Error("empty reason should not be written")
	}
}

func TestRecordPoint_SkipsUndefined(t *testing.T) {
	track := testdata.DanishTrack()
	track.Messages = nil
	b := score.Simple{}.Score(track)
	p := RecordPoint(&scorer.Record{MMSI: 1, Algorithm: scorer.TagSimple, Breakdown: b, ScoredAt: time.Now()})
	for _, f := range p.FieldList() {
		if f.Key == "course" || f.Key == "speed" {
			t.Errorf("undefined dimension %s written", f.Key)
		}
	}
}
