package webd

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rotblauer/aistrust/cache"
	"github.com/rotblauer/aistrust/conceptual"
	"github.com/rotblauer/aistrust/fetch"
	"github.com/rotblauer/aistrust/metrics"
	"github.com/rotblauer/aistrust/scoredb"
	"github.com/rotblauer/aistrust/scorer"
	"github.com/rotblauer/aistrust/types/vesseltrack"
	"github.com/rotblauer/aistrust/worker"
	"github.com/tidwall/gjson"
)

// maxBodySize bounds request bodies; a day of one vessel's AIS is well under it.
const maxBodySize = 32 << 20

func pingPong(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

type webDaemonStatus struct {
	StartedAt time.Time      `json:"started_at"`
	Uptime    string         `json:"uptime"`
	WSOpen    bool           `json:"ws_open"`
	WSConns   int            `json:"ws_conns"`
	Jobs      metrics.Counts `json:"jobs"`
}

func (s *WebDaemon) statusReport(w http.ResponseWriter, r *http.Request) {
	st := webDaemonStatus{
		StartedAt: s.started,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		WSOpen:    !s.melodyInstance.IsClosed(),
		WSConns:   s.melodyInstance.Len(),
		Jobs:      s.worker.Metrics.Counts(),
	}
	s.writeJSON(w, http.StatusOK, st)
}

func (s *WebDaemon) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to write response", "error", err)
	}
}

func getRequestMMSI(w http.ResponseWriter, r *http.Request) (conceptual.MMSI, bool) {
	mmsi, err := conceptual.ParseMMSI(mux.Vars(r)["mmsi"])
	if err != nil {
		slog.Warn("Bad mmsi", "url", r.URL, "error", err)
		http.Error(w, "Bad mmsi", http.StatusBadRequest)
		return 0, false
	}
	return mmsi, true
}

// handleLastRecord answers from the TTL cache, then the store; 204 when the vessel was never scored.
func (s *WebDaemon) handleLastRecord(w http.ResponseWriter, r *http.Request) {
	mmsi, ok := getRequestMMSI(w, r)
	if !ok {
		return
	}
	if rec, ok := cache.GetLastRecord(mmsi); ok {
		s.writeJSON(w, http.StatusOK, rec)
		return
	}
	if s.store == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	rec, err := s.store.Last(mmsi)
	if errors.Is(err, scoredb.ErrNotFound) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		s.logger.Error("Failed to read last record", "mmsi", mmsi, "error", err)
		http.Error(w, "Failed to read last record", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *WebDaemon) handleHistory(w http.ResponseWriter, r *http.Request) {
	mmsi, ok := getRequestMMSI(w, r)
	if !ok {
		return
	}
	if s.store == nil {
		s.writeJSON(w, http.StatusOK, []*scorer.Record{})
		return
	}
	recs, err := s.store.History(mmsi)
	if err != nil {
		s.logger.Error("Failed to read history", "mmsi", mmsi, "error", err)
		http.Error(w, "Failed to read history", http.StatusInternalServerError)
		return
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 && limit < len(recs) {
		recs = recs[len(recs)-limit:]
	}
	if recs == nil {
		recs = []*scorer.Record{}
	}
	s.writeJSON(w, http.StatusOK, recs)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if r.Body == nil {
		http.Error(w, "Please send a request body", http.StatusBadRequest)
		return nil, false
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		return nil, false
	}
	return body, true
}

// errorStatus maps pipeline errors to HTTP statuses.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, vesseltrack.ErrMalformedTrajectory):
		return http.StatusUnprocessableEntity
	case errors.Is(err, worker.ErrInvalidJob), errors.Is(err, scorer.ErrUnknownAlgorithm):
		return http.StatusBadRequest
	case errors.Is(err, worker.ErrDuplicateJob):
		return http.StatusConflict
	case errors.Is(err, fetch.ErrNoTrajectory):
		return http.StatusNotFound
	case errors.Is(err, worker.ErrNoFetcher):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleScore scores a request that carries its own data:
// {"mmsi", "messages", "trajectory" (base64 WKB), "encoding", "algorithm"}.
func (s *WebDaemon) handleScore(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	req := &scorer.Request{}
	if err := json.Unmarshal(body, req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if req.Algorithm == "" {
		req.Algorithm = scorer.TagSimple
	}
	tag, err := scorer.ParseTag(string(req.Algorithm))
	if err == nil {
		req.Algorithm = tag
		req.Encoding, err = vesseltrack.ParseEncoding(string(req.Encoding))
	}
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	rec, err := s.worker.Submit(r.Context(), req)
	if err != nil {
		s.logger.Warn("Score failed", "mmsi", req.MMSI, "error", err)
		s.writeJSON(w, errorStatus(err), errorResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

// handleJob runs a job through the worker pipeline, fetching its data.
// A JSON array of jobs is run as a batch and answered with one result per job.
func (s *WebDaemon) handleJob(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	if parsed := gjson.ParseBytes(body); gjson.ValidBytes(body) && parsed.IsArray() {
		var jobs [][]byte
		for _, j := range parsed.Array() {
			jobs = append(jobs, []byte(j.Raw))
		}
		s.writeJSON(w, http.StatusOK, s.worker.HandleBatch(r.Context(), jobs))
		return
	}
	rec, err := s.worker.Handle(r.Context(), body)
	if err != nil {
		s.writeJSON(w, errorStatus(err), errorResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}
