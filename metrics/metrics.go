// Package metrics counts and times the scoring pipeline.
package metrics

import (
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/rotblauer/aistrust/common"
)

func init() {
	// The metrics package won't record without this global setting.
	metrics.Enabled = true
}

// Pipeline holds the meters of one worker pipeline.
type Pipeline struct {
	Registry metrics.Registry

	Received metrics.Meter
	Scored   metrics.Meter
	Failed   metrics.Meter
	Deduped  metrics.Meter
	MemoHits metrics.Meter
	Bytes    metrics.Meter

	FetchTimer metrics.Timer
	ScoreTimer metrics.Timer

	started time.Time
	mu      sync.Mutex
	last    time.Time
	ticker  *time.Ticker
	quit    chan struct{}
}

func NewPipeline() *Pipeline {
	reg := metrics.NewRegistry()
	return &Pipeline{
		Registry:   reg,
		Received:   metrics.NewRegisteredMeter("jobs.received", reg),
		Scored:     metrics.NewRegisteredMeter("jobs.scored", reg),
		Failed:     metrics.NewRegisteredMeter("jobs.failed", reg),
		Deduped:    metrics.NewRegisteredMeter("jobs.deduped", reg),
		MemoHits:   metrics.NewRegisteredMeter("jobs.memo_hits", reg),
		Bytes:      metrics.NewRegisteredMeter("jobs.bytes", reg),
		FetchTimer: metrics.NewRegisteredTimer("fetch.timer", reg),
		ScoreTimer: metrics.NewRegisteredTimer("score.timer", reg),
		started:    time.Now(),
		quit:       make(chan struct{}),
	}
}

// MarkReceived counts an incoming job of size bytes stamped at label.
func (p *Pipeline) MarkReceived(label time.Time, size int) {
	p.mu.Lock()
	if label.After(p.last) {
		p.last = label
	}
	p.mu.Unlock()
	p.Received.Mark(1)
	p.Bytes.Mark(int64(size))
}

// Run logs throughput every interval until Stop.
func (p *Pipeline) Run(interval time.Duration) {
	if interval <= 0 {
		return
	}
	p.ticker = time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-p.ticker.C:
				p.Log()
			case <-p.quit:
				return
			}
		}
	}()
}

func (p *Pipeline) Log() {
	received := p.Received.Snapshot()
	bytes := p.Bytes.Snapshot()
	scoring := p.ScoreTimer.Snapshot()
	p.mu.Lock()
	last := p.last
	p.mu.Unlock()

	slog.Info("Scored jobs",
		"received", humanize.Comma(received.Count()),
		"scored", humanize.Comma(p.Scored.Snapshot().Count()),
		"failed", humanize.Comma(p.Failed.Snapshot().Count()),
		"deduped", humanize.Comma(p.Deduped.Snapshot().Count()),
		"memo.hits", humanize.Comma(p.MemoHits.Snapshot().Count()),
		"job.last", last.Format(time.DateTime),
		"jps", common.DecimalToFixed(received.Rate1(), 2),
		"bps", humanize.Bytes(uint64(bytes.Rate1())),
		"score.mean", time.Duration(scoring.Mean()).Round(time.Microsecond),
		"score.p95", time.Duration(scoring.Percentile(0.95)).Round(time.Microsecond),
		"running", time.Since(p.started).Round(time.Second))
}

func (p *Pipeline) Stop() {
	if p == nil {
		return
	}
	select {
	case <-p.quit:
		return
	default:
		close(p.quit)
	}
	if p.ticker != nil {
		p.ticker.Stop()
	}
	p.Registry.Each(func(name string, i interface{}) {
		if m, ok := i.(metrics.Meter); ok {
			m.Stop()
		}
		if t, ok := i.(metrics.Timer); ok {
			t.Stop()
		}
	})
}

// Counts is a point-in-time view of the job counters.
type Counts struct {
	Received int64 `json:"received"`
	Scored   int64 `json:"scored"`
	Failed   int64 `json:"failed"`
	Deduped  int64 `json:"deduped"`
	MemoHits int64 `json:"memoHits"`
}

func (p *Pipeline) Counts() Counts {
	return Counts{
		Received: p.Received.Snapshot().Count(),
		Scored:   p.Scored.Snapshot().Count(),
		Failed:   p.Failed.Snapshot().Count(),
		Deduped:  p.Deduped.Snapshot().Count(),
		MemoHits: p.MemoHits.Snapshot().Count(),
	}
}
