package webd

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/olahol/melody"
	"github.com/rotblauer/aistrust/params"
	"github.com/rotblauer/aistrust/scoredb"
	"github.com/rotblauer/aistrust/worker"
)

type WebDaemon struct {
	Config         *params.WebDaemonConfig
	logger         *slog.Logger
	melodyInstance *melody.Melody
	started        time.Time

	worker *worker.Worker
	store  *scoredb.DB
}

// NewWebDaemon serves the scoring pipeline of wk over HTTP. store may be nil.
func NewWebDaemon(config *params.WebDaemonConfig, wk *worker.Worker, store *scoredb.DB) (*WebDaemon, error) {
	if config == nil {
		config = params.DefaultWebDaemonConfig()
	}
	if wk == nil {
		var err error
		wk, err = worker.New(config.Worker, nil, store)
		if err != nil {
			return nil, err
		}
	}
	return &WebDaemon{
		Config:         config,
		logger:         slog.With("d", "web"),
		melodyInstance: melody.New(),
		started:        time.Now(),
		worker:         wk,
		store:          store,
	}, nil
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *WebDaemon) Run(ctx context.Context) error {
	ln, err := net.Listen(s.Config.Network, s.Config.Address)
	if err != nil {
		return err
	}
	server := &http.Server{
		Handler:           s.NewRouter(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting web daemon", "network", s.Config.Network, "address", ln.Addr())

	errs := make(chan error, 1)
	go func() {
		errs <- server.Serve(ln)
	}()
	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.melodyInstance.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("Web daemon stopped")
	return nil
}

// NewRouter builds the routes. The websocket broadcaster stops with ctx.
func (s *WebDaemon) NewRouter(ctx context.Context) *mux.Router {
	s.initMelody(ctx)

	router := mux.NewRouter().StrictSlash(false)
	router.Use(loggingMiddleware)

	router.Path("/socket").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = s.melodyInstance.HandleRequest(w, r)
	})

	apiRoutes := router.NewRoute().Subrouter()
	apiRoutes.Use(permissiveCorsMiddleware)

	// /ping is a simple server healthcheck endpoint
	apiRoutes.Path("/ping").HandlerFunc(pingPong)

	apiJSONRoutes := apiRoutes.NewRoute().Subrouter()
	apiJSONRoutes.Use(contentTypeMiddlewareFunc("application/json"))

	apiJSONRoutes.Path("/status").HandlerFunc(s.statusReport).Methods(http.MethodGet)
	apiJSONRoutes.Path("/vessels/{mmsi}/last").HandlerFunc(s.handleLastRecord).Methods(http.MethodGet)
	apiJSONRoutes.Path("/vessels/{mmsi}/history").HandlerFunc(s.handleHistory).Methods(http.MethodGet)

	scoringRoutes := apiJSONRoutes.NewRoute().Subrouter()
	scoringRoutes.Use(tokenAuthenticationMiddleware)

	scoringRoutes.Path("/score").HandlerFunc(s.handleScore).Methods(http.MethodPost)
	scoringRoutes.Path("/jobs").HandlerFunc(s.handleJob).Methods(http.MethodPost)

	return router
}
