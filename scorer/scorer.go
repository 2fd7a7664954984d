// Package scorer selects a scoring strategy by tag and produces score records.
package scorer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rotblauer/aistrust/conceptual"
	"github.com/rotblauer/aistrust/score"
	"github.com/rotblauer/aistrust/types/aismsg"
	"github.com/rotblauer/aistrust/types/vesseltrack"
)

// Tag names a strategy.
type Tag string

const (
	TagRandom         Tag = "random"
	TagHashed         Tag = "hashed"
	TagSimple         Tag = "simple"
	TagProfilingFetch Tag = "profiling_fetch"
	TagProfilingJSON  Tag = "profiling_json"
)

// Tags is the closed set of strategies.
var Tags = []Tag{TagRandom, TagHashed, TagSimple, TagProfilingFetch, TagProfilingJSON}

var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// ParseTag is case-insensitive, so RANDOM and random are the same strategy.
func ParseTag(s string) (Tag, error) {
	t := Tag(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Tags {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

func (t Tag) String() string {
	return string(t)
}

// Profiling is true for the strategies that report timings.
func (t Tag) Profiling() bool {
	return t == TagProfilingFetch || t == TagProfilingJSON
}

// Request is everything a strategy may look at.
type Request struct {
	MMSI       conceptual.MMSI      `json:"mmsi"`
	Messages   []aismsg.Message     `json:"messages"`
	Trajectory []byte               `json:"trajectory"`
	Encoding   vesseltrack.Encoding `json:"encoding,omitempty"`
	Algorithm  Tag                  `json:"algorithm"`

	// Profile carries timings recorded before scoring, e.g. by a fetcher.
	Profile *Profile `json:"-" hash:"ignore"`
}

// Record is the outcome of scoring one request.
type Record struct {
	MMSI            conceptual.MMSI  `json:"mmsi"`
	Trustworthiness float64          `json:"trustworthiness"`
	Reason          string           `json:"reason"`
	Algorithm       Tag              `json:"algorithm"`
	ScoredAt        time.Time        `json:"scoredAt"`
	Breakdown       *score.Breakdown `json:"breakdown,omitempty"`
	Profile         *Profile         `json:"profile,omitempty"`
}

// Profile is the timing block of the profiling strategies.
type Profile struct {
	EndQueuedTo     time.Time `json:"endQueuedTo"`
	StartFetch      time.Time `json:"startDbQuery"`
	EndFetch        time.Time `json:"endDbQuery"`
	StartAlgo       time.Time `json:"startAlgo"`
	EndAlgo         time.Time `json:"endAlgo"`
	StartQueuedFrom time.Time `json:"startQueuedFrom"`
}

// Scorer turns a request into a record.
type Scorer interface {
	Score(ctx context.Context, req *Request) (*Record, error)
}

// Strategies maps each tag to its scorer.
type Strategies map[Tag]Scorer

// NewStrategies wires the closed set. Both profiling tags wrap the simple scorer;
// they differ only in where the worker gets the data.
func NewStrategies() Strategies {
	simple := &Simple{}
	return Strategies{
		TagRandom:         &Random{},
		TagHashed:         &Hashed{},
		TagSimple:         simple,
		TagProfilingFetch: &Profiling{Inner: simple},
		TagProfilingJSON:  &Profiling{Inner: simple},
	}
}

// Score dispatches req to the strategy named by its Algorithm.
func (s Strategies) Score(ctx context.Context, req *Request) (*Record, error) {
	sc, ok := s[req.Algorithm]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, req.Algorithm)
	}
	rec, err := sc.Score(ctx, req)
	if err != nil {
		return nil, err
	}
	rec.Algorithm = req.Algorithm
	return rec, nil
}
