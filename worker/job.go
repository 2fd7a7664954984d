package worker

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rotblauer/aistrust/conceptual"
	"github.com/rotblauer/aistrust/scorer"
	"github.com/tidwall/gjson"
)

var (
	ErrInvalidJob   = errors.New("invalid job")
	ErrDuplicateJob = errors.New("duplicate job")
)

// Job asks for one vessel to be scored over the window ending at Timestamp.
type Job struct {
	ID        string          `json:"id"`
	MMSI      conceptual.MMSI `json:"mmsi"`
	Timestamp int64           `json:"timestamp"`
	Algorithm scorer.Tag      `json:"algorithm"`
}

// Time is the end of the job's window; a zero timestamp means now.
func (j *Job) Time() time.Time {
	if j.Timestamp == 0 {
		return time.Now()
	}
	return time.Unix(j.Timestamp, 0)
}

// ParseJob decodes and validates a job. An empty algorithm means simple.
func ParseJob(b []byte) (*Job, error) {
	if !gjson.ValidBytes(b) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidJob)
	}
	j := &Job{}
	if err := json.Unmarshal(b, j); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}
	if j.MMSI <= 0 {
		return nil, fmt.Errorf("%w: mmsi %d", ErrInvalidJob, j.MMSI)
	}
	if j.Algorithm == "" {
		j.Algorithm = scorer.TagSimple
	}
	tag, err := scorer.ParseTag(string(j.Algorithm))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJob, err)
	}
	j.Algorithm = tag
	return j, nil
}

// peek reads a few fields for logging without decoding the whole job.
func peek(b []byte) []any {
	res := gjson.GetManyBytes(b, "id", "mmsi", "algorithm")
	return []any{"id", res[0].String(), "mmsi", res[1].Int(), "algorithm", res[2].String()}
}

// Result is one line of worker output: a record, or the reason there is none.
type Result struct {
	JobID  string         `json:"id,omitempty"`
	Record *scorer.Record `json:"record,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func (r Result) OK() bool {
	return r.Error == ""
}

// MarshalJSON writes a bare record on success and an error object otherwise.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.OK() && r.Record != nil {
		return json.Marshal(r.Record)
	}
	type plain Result
	return json.Marshal(plain(r))
}
