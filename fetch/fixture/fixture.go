// Package fixture serves a fixed, embedded job in place of a database.
// The profiling_json strategy uses it to time scoring without I/O.
package fixture

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/rotblauer/aistrust/conceptual"
	"github.com/rotblauer/aistrust/fetch"
	"github.com/rotblauer/aistrust/types/aismsg"
	"github.com/rotblauer/aistrust/types/vesseltrack"
)

//go:embed job.json
var jobJSON []byte

type job struct {
	MMSI       conceptual.MMSI      `json:"mmsi"`
	Messages   []aismsg.Message     `json:"messages"`
	Trajectory string               `json:"trajectory"`
	Encoding   vesseltrack.Encoding `json:"encoding"`
}

// Fixture ignores the requested vessel and window and always returns the
// embedded job, relabeled with the requested MMSI.
type Fixture struct {
	data *fetch.Data
}

func New() (*Fixture, error) {
	j := job{}
	if err := json.Unmarshal(jobJSON, &j); err != nil {
		return nil, fmt.Errorf("decode fixture job: %w", err)
	}
	return &Fixture{data: &fetch.Data{
		MMSI:       j.MMSI,
		Messages:   j.Messages,
		Trajectory: []byte(j.Trajectory),
		Encoding:   j.Encoding,
	}}, nil
}

// MMSI is the vessel the embedded job was recorded for.
func (f *Fixture) MMSI() conceptual.MMSI {
	return f.data.MMSI
}

func (f *Fixture) Fetch(ctx context.Context, mmsi conceptual.MMSI, w fetch.Window) (*fetch.Data, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := &fetch.Data{
		MMSI:       f.data.MMSI,
		Messages:   make([]aismsg.Message, len(f.data.Messages)),
		Trajectory: append([]byte(nil), f.data.Trajectory...),
		Encoding:   f.data.Encoding,
	}
	for i, m := range f.data.Messages {
		out.Messages[i] = m.Clone()
	}
	if !mmsi.Empty() {
		out.MMSI = mmsi
	}
	return out, nil
}
