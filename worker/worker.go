// Package worker runs scoring jobs: de-duplicate, fetch, score, persist, publish.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rotblauer/aistrust/cache"
	"github.com/rotblauer/aistrust/events"
	"github.com/rotblauer/aistrust/fetch"
	"github.com/rotblauer/aistrust/fetch/fixture"
	"github.com/rotblauer/aistrust/metrics"
	"github.com/rotblauer/aistrust/params"
	"github.com/rotblauer/aistrust/scoredb"
	"github.com/rotblauer/aistrust/scorer"
	"github.com/rotblauer/aistrust/stream"
	"github.com/tidwall/gjson"
)

var ErrNoFetcher = errors.New("no fetcher configured")

type Worker struct {
	config     *params.WorkerConfig
	fetcher    fetch.Fetcher
	fixture    fetch.Fetcher
	strategies scorer.Strategies
	store      *scoredb.DB

	memo     *cache.Memo
	dedupeMu sync.Mutex
	dedupe   func(string) bool

	Metrics *metrics.Pipeline
	logger  *slog.Logger
}

// New wires a worker. fetcher and store may be nil: without a fetcher only
// profiling_json jobs can run, and without a store records are not persisted.
func New(config *params.WorkerConfig, fetcher fetch.Fetcher, store *scoredb.DB) (*Worker, error) {
	if config == nil {
		config = params.DefaultWorkerConfig()
	}
	fx, err := fixture.New()
	if err != nil {
		return nil, err
	}
	memo, err := cache.NewMemo(params.MemoCacheSize)
	if err != nil {
		return nil, err
	}
	return &Worker{
		config:     config,
		fetcher:    fetcher,
		fixture:    fx,
		strategies: scorer.NewStrategies(),
		store:      store,
		memo:       memo,
		dedupe:     cache.NewDedupePassLRUFunc(params.DedupeCacheSize),
		Metrics:    metrics.NewPipeline(),
		logger:     slog.With("d", "worker"),
	}, nil
}

func (w *Worker) firstSighting(id string) bool {
	if id == "" {
		return true
	}
	w.dedupeMu.Lock()
	defer w.dedupeMu.Unlock()
	return w.dedupe(id)
}

// Process runs one decoded job through the pipeline.
func (w *Worker) Process(ctx context.Context, job *Job) (*scorer.Record, error) {
	if !w.firstSighting(job.ID) {
		w.Metrics.Deduped.Mark(1)
		return nil, fmt.Errorf("%w: %s", ErrDuplicateJob, job.ID)
	}
	queuedAt := time.Now()

	if w.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.config.JobTimeout)
		defer cancel()
	}

	source := w.fetcher
	if job.Algorithm == scorer.TagProfilingJSON {
		source = w.fixture
	}
	if source == nil {
		return nil, fmt.Errorf("%w for %s", ErrNoFetcher, job.Algorithm)
	}

	window := fetch.WindowEnding(job.Time(), w.config.Window)
	fetchStart := time.Now()
	data, err := source.Fetch(ctx, job.MMSI, window)
	fetchEnd := time.Now()
	w.Metrics.FetchTimer.Update(fetchEnd.Sub(fetchStart))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", job.MMSI, err)
	}

	req := &scorer.Request{
		MMSI:       job.MMSI,
		Messages:   data.Messages,
		Trajectory: data.Trajectory,
		Encoding:   data.Encoding,
		Algorithm:  job.Algorithm,
	}
	if job.Algorithm.Profiling() {
		req.Profile = &scorer.Profile{
			EndQueuedTo: queuedAt,
			StartFetch:  fetchStart,
			EndFetch:    fetchEnd,
		}
	}

	rec, err := w.Score(ctx, req)
	if err != nil {
		return nil, err
	}
	return rec, w.publish(rec)
}

// Score runs a request through the memo and the strategies, without persisting.
func (w *Worker) Score(ctx context.Context, req *scorer.Request) (*scorer.Record, error) {
	var key uint64
	memoize := cache.Memoizable(req.Algorithm)
	if memoize {
		k, err := cache.Key(req)
		if err != nil {
			w.logger.Warn("Memo key", "error", err)
			memoize = false
		} else if hit, ok := w.memo.Get(k); ok {
			w.Metrics.MemoHits.Mark(1)
			rec := *hit
			rec.ScoredAt = time.Now()
			return &rec, nil
		}
		key = k
	}

	start := time.Now()
	rec, err := w.strategies.Score(ctx, req)
	w.Metrics.ScoreTimer.UpdateSince(start)
	if err != nil {
		return nil, err
	}
	if memoize {
		w.memo.Add(key, rec)
	}
	return rec, nil
}

// publish persists rec and announces it.
func (w *Worker) publish(rec *scorer.Record) error {
	if w.store != nil {
		if err := w.store.Put(rec); err != nil {
			return fmt.Errorf("persist %s: %w", rec.MMSI, err)
		}
	}
	cache.SetLastRecord(rec)
	events.NewScoreFeed.Send(rec)
	return nil
}

// Submit scores a direct request (no fetching) and persists and announces it.
func (w *Worker) Submit(ctx context.Context, req *scorer.Request) (*scorer.Record, error) {
	w.Metrics.MarkReceived(time.Now(), len(req.Trajectory))
	rec, err := w.Score(ctx, req)
	if err == nil {
		err = w.publish(rec)
	}
	if err != nil {
		w.Metrics.Failed.Mark(1)
		return nil, err
	}
	w.Metrics.Scored.Mark(1)
	return rec, nil
}

// Handle parses and processes one raw job. Failures are logged and counted;
// they never affect other jobs.
func (w *Worker) Handle(ctx context.Context, b []byte) (*scorer.Record, error) {
	logger := w.logger.With(peek(b)...)
	job, err := ParseJob(b)
	if err != nil {
		w.Metrics.MarkReceived(time.Now(), len(b))
		w.Metrics.Failed.Mark(1)
		logger.Warn("Rejected job", "error", err)
		return nil, err
	}
	w.Metrics.MarkReceived(job.Time(), len(b))

	rec, err := w.Process(ctx, job)
	if err != nil {
		if errors.Is(err, ErrDuplicateJob) {
			logger.Debug("Skipped duplicate job")
		} else {
			w.Metrics.Failed.Mark(1)
			events.JobFailedFeed.Send(events.JobFailure{ID: job.ID, Error: err.Error()})
			logger.Error("Job failed", "error", err)
		}
		return nil, err
	}
	w.Metrics.Scored.Mark(1)
	logger.Debug("Scored job", "trustworthiness", rec.Trustworthiness, "reason", rec.Reason)
	return rec, nil
}

// HandleJSON is Handle with the outcome folded into a Result.
func (w *Worker) HandleJSON(ctx context.Context, b []byte) Result {
	rec, err := w.Handle(ctx, b)
	if err != nil {
		return Result{JobID: gjson.GetBytes(b, "id").String(), Error: err.Error()}
	}
	return Result{Record: rec}
}

// Run handles raw jobs from in on the configured number of goroutines.
func (w *Worker) Run(ctx context.Context, in <-chan []byte) <-chan Result {
	return stream.TransformN(ctx, w.config.Workers, func(b []byte) Result {
		return w.HandleJSON(ctx, b)
	}, in)
}

// RunStdin reads NDJSON jobs from r and writes one NDJSON result per job to wr.
func (w *Worker) RunStdin(ctx context.Context, r io.Reader, wr io.Writer) error {
	w.Metrics.Run(w.config.TickInterval)
	defer w.Metrics.Stop()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := w.Run(runCtx, stream.Lines(runCtx, r))
	lines := stream.Filter(runCtx, func(b []byte) bool { return b != nil },
		stream.Transform(runCtx, w.encodeResult, results))
	for line := range lines {
		if _, err := wr.Write(line); err != nil {
			return err
		}
	}
	w.Metrics.Log()
	return ctx.Err()
}

// encodeResult is one NDJSON line, or nil if res cannot be encoded.
func (w *Worker) encodeResult(res Result) []byte {
	b, err := json.Marshal(res)
	if err != nil {
		w.logger.Error("Encode result", "job", res.JobID, "error", err)
		return nil
	}
	return append(b, '\n')
}

// HandleBatch runs jobs concurrently and returns their results in completion order.
func (w *Worker) HandleBatch(ctx context.Context, jobs [][]byte) []Result {
	return stream.Collect(ctx, w.Run(ctx, stream.Slice(ctx, jobs)))
}
