// Package fetch loads the messages and observed trajectory of a vessel for a
// window of time.
package fetch

import (
	"context"
	"errors"
	"time"

	"github.com/rotblauer/aistrust/conceptual"
	"github.com/rotblauer/aistrust/types/aismsg"
	"github.com/rotblauer/aistrust/types/vesseltrack"
)

// ErrNoTrajectory is returned when the source has no trajectory for the vessel.
var ErrNoTrajectory = errors.New("no trajectory")

// Window is a closed time interval.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// WindowEnding returns the window of length d ending at end.
func WindowEnding(end time.Time, d time.Duration) Window {
	return Window{Start: end.Add(-d), End: end}
}

func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Contains is inclusive at both ends.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Data is what a fetcher returns: raw messages and the undecoded trajectory payload.
type Data struct {
	MMSI       conceptual.MMSI      `json:"mmsi"`
	Messages   []aismsg.Message     `json:"messages"`
	Trajectory []byte               `json:"trajectory"`
	Encoding   vesseltrack.Encoding `json:"encoding"`
}

type Fetcher interface {
	Fetch(ctx context.Context, mmsi conceptual.MMSI, w Window) (*Data, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, mmsi conceptual.MMSI, w Window) (*Data, error)

func (f FetcherFunc) Fetch(ctx context.Context, mmsi conceptual.MMSI, w Window) (*Data, error) {
	return f(ctx, mmsi, w)
}
