package webd

import (
	"context"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rotblauer/aistrust/params"
	"github.com/rotblauer/aistrust/scoredb"
	"github.com/rotblauer/aistrust/worker"
)

// newTestWebDaemon creates a WebDaemon with a temporary store and no fetcher.
// The returned router is live until the test ends.
func newTestWebDaemon(t *testing.T) (*WebDaemon, *mux.Router) {
	t.Helper()
	config := params.DefaultTestWebDaemonConfig()
	config.DataDir = t.TempDir()
	config.Worker.TickInterval = 0

	store, err := scoredb.Open(config.DataDir, false)
	if err != nil {
		t.Fatal(err)
	}
	wk, err := worker.New(config.Worker, nil, store)
	if err != nil {
		t.Fatal(err)
	}
	d, err := NewWebDaemon(config, wk, store)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	router := d.NewRouter(ctx)
	t.Cleanup(func() {
		cancel()
		wk.Metrics.Stop()
		store.Close()
	})
	return d, router
}
