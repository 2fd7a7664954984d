package worker

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rotblauer/aistrust/cache"
	"github.com/rotblauer/aistrust/conceptual"
	"github.com/rotblauer/aistrust/events"
	"github.com/rotblauer/aistrust/fetch"
	"github.com/rotblauer/aistrust/params"
	"github.com/rotblauer/aistrust/scoredb"
	"github.com/rotblauer/aistrust/scorer"
	"github.com/rotblauer/aistrust/testing/testdata"
	"github.com/rotblauer/aistrust/types/vesseltrack"
	"github.com/tidwall/gjson"
)

const danishTrustworthiness = 0.9247337542989796

type danishFetcher struct {
	calls   atomic.Int32
	mu      sync.Mutex
	windows []fetch.Window
}

func (f *danishFetcher) Fetch(ctx context.Context, mmsi conceptual.MMSI, w fetch.Window) (*fetch.Data, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.windows = append(f.windows, w)
	f.mu.Unlock()
	if mmsi != testdata.DanishMMSI {
		return nil, fetch.ErrNoTrajectory
	}
	return &fetch.Data{
		MMSI:       mmsi,
		Messages:   testdata.DanishMessages(),
		Trajectory: []byte(testdata.DanishTrajectoryHexWKB),
		Encoding:   vesseltrack.EncodingHexWKB,
	}, nil
}

func testConfig() *params.WorkerConfig {
	c := params.DefaultWorkerConfig()
	c.Workers = 2
	c.TickInterval = 0
	return c
}

func newTestWorker(t *testing.T, f fetch.Fetcher) (*Worker, *scoredb.DB) {
	t.Helper()
	store, err := scoredb.Open(t.TempDir(), false)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	w, err := New(testConfig(), f, store)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(w.Metrics.Stop)
	return w, store
}

func TestParseJob(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want scorer.Tag
		err  error
	}{
		{"simple", `{"id":"1","mmsi":219019887,"timestamp":1725863341,"algorithm":"simple"}`, scorer.TagSimple, nil},
		{"uppercase", `{"id":"1","mmsi":219019887,"algorithm":"PROFILING_JSON"}`, scorer.TagProfilingJSON, nil},
		{"default", `{"id":"1","mmsi":219019887}`, scorer.TagSimple, nil},
		{"no mmsi", `{"id":"1","algorithm":"simple"}`, "", ErrInvalidJob},
		{"malformed", `{"id":"1",`, "", ErrInvalidJob},
		{"unknown algorithm", `{"id":"1","mmsi":1,"algorithm":"kalman"}`, "", scorer.ErrUnknownAlgorithm},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			j, err := ParseJob([]byte(c.in))
			if c.err != nil {
				if !errors.Is(err, c.err) {
					t.Fatalf("got %v, want %v", err, c.err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if j.Algorithm != c.want {
				t.Errorf("algorithm %q, want %q", j.Algorithm, c.want)
			}
		})
	}
}

func TestProcess_Simple(t *testing.T) {
	f := &danishFetcher{}
	w, store := newTestWorker(t, f)

	job := &Job{ID: "a", MMSI: testdata.DanishMMSI, Timestamp: 1725863341, Algorithm: scorer.TagSimple}
	rec, err := w.Process(context.Background(), job)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(rec.Trustworthiness-danishTrustworthiness) > 1e-9 {
		t.Errorf("trustworthiness %v", rec.Trustworthiness)
	}
	if rec.Algorithm != scorer.TagSimple || rec.Breakdown == nil {
		t.Errorf("record %+v", rec)
	}

	want := fetch.WindowEnding(time.Unix(1725863341, 0), time.Hour)
	if len(f.windows) != 1 || f.windows[0] != want {
		t.Errorf("windows %v, want %v", f.windows, want)
	}

	stored, err := store.Last(testdata.DanishMMSI)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Trustworthiness != rec.Trustworthiness {
		t.Errorf("stored %v", stored.Trustworthiness)
	}
	if cached, ok := cache.GetLastRecord(testdata.DanishMMSI); !ok || cached.Trustworthiness != rec.Trustworthiness {
		t.Error("last record not cached")
	}
}

func TestProcess_DedupeAndMemo(t *testing.T) {
	f := &danishFetcher{}
	w, _ := newTestWorker(t, f)
	ctx := context.Background()

	job := &Job{ID: "dup", MMSI: testdata.DanishMMSI, Timestamp: 1725863341, Algorithm: scorer.TagSimple}
	first, err := w.Process(ctx, job)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Process(ctx, job); !errors.Is(err, ErrDuplicateJob) {
		t.Errorf("expected duplicate, got %v", err)
	}
	if f.calls.Load() != 1 {
		t.Errorf("duplicate was fetched: %d calls", f.calls.Load())
	}

	again := *job
	again.ID = "other"
	second, err := w.Process(ctx, &again)
	if err != nil {
		t.Fatal(err)
	}
	if second.Trustworthiness != first.Trustworthiness {
		t.Error("memoized record differs")
	}
	c := w.Metrics.Counts()
	if c.Deduped != 1 || c.MemoHits != 1 {
		t.Errorf("counts %+v", c)
	}
}

func TestProcess_Profiling(t *testing.T) {
	w, _ := newTestWorker(t, nil)
	ctx := context.Background()

	rec, err := w.Process(ctx, &Job{ID: "p", MMSI: 42, Algorithm: scorer.TagProfilingJSON})
	if err != nil {
		t.Fatal(err)
	}
	if rec.MMSI != 42 || rec.Profile == nil {
		t.Fatalf("record %+v", rec)
	}
	if math.Abs(rec.Trustworthiness-danishTrustworthiness) > 1e-9 {
		t.Errorf("fixture trustworthiness %v", rec.Trustworthiness)
	}
	p := rec.Profile
	if p.EndFetch.Before(p.StartFetch) || p.StartAlgo.Before(p.EndFetch) || p.EndAlgo.Before(p.StartAlgo) {
		t.Errorf("timings out of order: %+v", p)
	}

	_, err = w.Process(ctx, &Job{ID: "q", MMSI: 42, Algorithm: scorer.TagProfilingFetch})
	if !errors.Is(err, ErrNoFetcher) {
		t.Errorf("expected ErrNoFetcher, got %v", err)
	}
}

func TestProcess_FetchError(t *testing.T) {
	w, _ := newTestWorker(t, &danishFetcher{})
	_, err := w.Process(context.Background(), &Job{ID: "x", MMSI: 1, Algorithm: scorer.TagSimple})
	if !errors.Is(err, fetch.ErrNoTrajectory) {
		t.Errorf("got %v", err)
	}
}

func TestRunStdin(t *testing.T) {
	w, _ := newTestWorker(t, &danishFetcher{})
	in := strings.Join([]string{
		`{"id":"1","mmsi":219019887,"timestamp":1725863341,"algorithm":"simple"}`,
		`{"id":"2","mmsi":219019887,"timestamp":1725863341,"algorithm":"hashed"}`,
		`{"id":"3","mmsi":219019887,"timestamp":1725863341,"algorithm":"bogus"}`,
		`not json`,
		`{"id":"1","mmsi":219019887,"timestamp":1725863341,"algorithm":"simple"}`,
		`{"id":"4","mmsi":1,"timestamp":1725863341,"algorithm":"random"}`,
	}, "\n")
	out := &bytes.Buffer{}
	if err := w.RunStdin(context.Background(), strings.NewReader(in), out); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d result lines: %s", len(lines), out.String())
	}
	scored, failed := 0, 0
	for _, l := range lines {
		switch {
		case gjson.Get(l, "trustworthiness").Exists():
			scored++
			if gjson.Get(l, "algorithm").String() == "hashed" &&
				math.Abs(gjson.Get(l, "trustworthiness").Float()-0.6796864250520674) > 1e-12 {
				t.Errorf("hashed line %s", l)
			}
		case gjson.Get(l, "error").Exists():
			failed++
		}
	}
	if scored != 2 || failed != 4 {
		t.Errorf("scored %d failed %d\n%s", scored, failed, out.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRunStdin_WriteError(t *testing.T) {
	w, _ := newTestWorker(t, &danishFetcher{})
	in := `{"id":"1","mmsi":219019887,"algorithm":"hashed"}
{"id":"2","mmsi":219019887,"algorithm":"hashed"}`
	err := w.RunStdin(context.Background(), strings.NewReader(in), failingWriter{})
	if err == nil || err.Error() != "disk full" {
		t.Errorf("got %v, want the write error", err)
	}
}

func TestHandleBatch(t *testing.T) {
	w, _ := newTestWorker(t, &danishFetcher{})
	results := w.HandleBatch(context.Background(), [][]byte{
		[]byte(`{"id":"b1","mmsi":219019887,"timestamp":1725863341,"algorithm":"simple"}`),
		[]byte(`{"id":"b2","mmsi":219019887,"timestamp":1725863341,"algorithm":"hashed"}`),
		[]byte(`{"id":"b3","algorithm":"simple"}`),
	})
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}
	ok := map[string]bool{}
	for _, res := range results {
		if res.OK() {
			ok[res.Record.Algorithm.String()] = true
		} else if res.JobID != "b3" {
			t.Errorf("unexpected failure %+v", res)
		}
	}
	if !ok["simple"] || !ok["hashed"] {
		t.Errorf("missing records: %v", ok)
	}
}

func TestFeedAndExport(t *testing.T) {
	w, _ := newTestWorker(t, &danishFetcher{})

	ch := make(chan *scorer.Record, 4)
	sub := events.NewScoreFeed.Subscribe(ch)
	defer sub.Unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	exported := make(chan []*scorer.Record, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.RunExport(ctx, time.Hour, func(records []*scorer.Record) error {
			exported <- records
			return nil
		})
	}()
	// Let the exporter subscribe.
	time.Sleep(50 * time.Millisecond)

	if _, err := w.Process(context.Background(), &Job{ID: "feed", MMSI: testdata.DanishMMSI, Algorithm: scorer.TagHashed}); err != nil {
		t.Fatal(err)
	}
	select {
	case rec := <-ch:
		if rec.MMSI != testdata.DanishMMSI {
			t.Errorf("feed record %+v", rec)
		}
	case <-time.After(time.Second):
		t.Fatal("no record on feed")
	}

	cancel()
	<-done
	select {
	case batch := <-exported:
		if len(batch) != 1 {
			t.Errorf("exported %d", len(batch))
		}
	default:
		t.Error("nothing exported on shutdown")
	}
}
