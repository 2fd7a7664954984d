package webd

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/olahol/melody"
	"github.com/rotblauer/aistrust/cache"
	"github.com/rotblauer/aistrust/events"
	"github.com/rotblauer/aistrust/scorer"
)

type websocketAction string

const (
	websocketActionScore  websocketAction = "score"
	websocketActionFailed websocketAction = "failed"
)

type broadcast struct {
	Action  websocketAction    `json:"action"`
	Record  *scorer.Record     `json:"record,omitempty"`
	Failure *events.JobFailure `json:"failure,omitempty"`
}

// initMelody sets up the websocket handler. New connections get the cached
// last record of every vessel, then every record as it is scored.
func (s *WebDaemon) initMelody(ctx context.Context) {
	logger := s.logger.With("ws", true)

	s.melodyInstance.HandleConnect(func(sess *melody.Session) {
		logger.Debug("Connected", "remote", sess.Request.RemoteAddr)
		for _, item := range cache.LastRecordTTLCache.Items() {
			b, err := json.Marshal(broadcast{Action: websocketActionScore, Record: item.Value()})
			if err != nil {
				continue
			}
			_ = sess.Write(b)
		}
	})

	// Incoming messages are not part of the protocol. Log and drop.
	s.melodyInstance.HandleMessage(func(sess *melody.Session, msg []byte) {
		logger.Debug("Message", "remote", sess.Request.RemoteAddr, "msg", string(msg))
	})
	s.melodyInstance.HandleDisconnect(func(sess *melody.Session) {
		logger.Debug("Disconnected", "remote", sess.Request.RemoteAddr)
	})
	s.melodyInstance.HandleError(func(sess *melody.Session, e error) {
		logger.Warn("Error", "remote", sess.Request.RemoteAddr, "error", e)
	})

	scores := make(chan *scorer.Record, 64)
	scoreSub := events.NewScoreFeed.Subscribe(scores)
	failures := make(chan events.JobFailure, 64)
	failSub := events.JobFailedFeed.Subscribe(failures)

	go func() {
		defer scoreSub.Unsubscribe()
		defer failSub.Unsubscribe()
		for {
			var bc broadcast
			select {
			case rec := <-scores:
				bc = broadcast{Action: websocketActionScore, Record: rec}
			case f := <-failures:
				bc = broadcast{Action: websocketActionFailed, Failure: &f}
			case err := <-scoreSub.Err():
				slog.Error("Score feed subscription", "error", err)
				return
			case <-ctx.Done():
				return
			}
			b, err := json.Marshal(bc)
			if err != nil {
				slog.Error("Failed to marshal broadcast", "error", err)
				continue
			}
			if err := s.melodyInstance.Broadcast(b); err != nil && !s.melodyInstance.IsClosed() {
				slog.Warn("Failed to broadcast", "error", err)
			}
		}
	}()
}
