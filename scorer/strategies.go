package scorer

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/rotblauer/aistrust/score"
	"github.com/rotblauer/aistrust/types/vesseltrack"
)

// Random ignores the data.
type Random struct{}

func (Random) Score(ctx context.Context, req *Request) (*Record, error) {
	return &Record{
		MMSI:            req.MMSI,
		Trustworthiness: rand.Float64(),
		Reason:          "Random",
		Algorithm:       TagRandom,
		ScoredAt:        time.Now(),
	}, nil
}

const (
	hashModulus    = 1<<35 - 31
	hashMultiplier = 185852
)

// Hashed gives every vessel a fixed pseudo-random score: the first draw of a
// multiplicative congruential generator seeded with the MMSI.
type Hashed struct{}

func HashedTrustworthiness(seed int64) float64 {
	s := seed % hashModulus
	if s < 0 {
		s += hashModulus
	}
	s = (s * hashMultiplier) % hashModulus
	return float64(s) / hashModulus
}

func (Hashed) Score(ctx context.Context, req *Request) (*Record, error) {
	return &Record{
		MMSI:            req.MMSI,
		Trustworthiness: HashedTrustworthiness(int64(req.MMSI)),
		Reason:          "Hashed",
		Algorithm:       TagHashed,
		ScoredAt:        time.Now(),
	}, nil
}

// Simple decodes the trajectory and runs the analytical scorer.
type Simple struct{}

func (Simple) Score(ctx context.Context, req *Request) (*Record, error) {
	vt, err := vesseltrack.New(req.MMSI, req.Messages, req.Trajectory, req.Encoding)
	if err != nil {
		return nil, err
	}
	b := score.Simple{}.Score(vt)
	return &Record{
		MMSI:            req.MMSI,
		Trustworthiness: b.Trustworthiness,
		Reason:          b.Reason,
		Algorithm:       TagSimple,
		ScoredAt:        time.Now(),
		Breakdown:       b,
	}, nil
}

// Profiling wraps a scorer and records how long it took, alongside any
// fetch timings already on the request.
type Profiling struct {
	Inner Scorer
}

func (p *Profiling) Score(ctx context.Context, req *Request) (*Record, error) {
	prof := &Profile{}
	if req.Profile != nil {
		*prof = *req.Profile
	}
	prof.StartAlgo = time.Now()
	rec, err := p.Inner.Score(ctx, req)
	if err != nil {
		return nil, err
	}
	prof.EndAlgo = time.Now()
	prof.StartQueuedFrom = prof.EndAlgo
	if prof.EndQueuedTo.IsZero() {
		prof.EndQueuedTo = prof.StartFetch
	}
	rec.Profile = prof
	return rec, nil
}
