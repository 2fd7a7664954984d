package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/rotblauer/aistrust/params"
)

// ConnectNATS dials with reconnects enabled; a server that is not up yet is retried.
func ConnectNATS(cfg *params.NATSConfig) (*nats.Conn, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name("aistrust-worker"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return nc, nil
}

// RunNATS consumes jobs from a queue subscription until ctx is done.
// Workers in the same queue group share the subject's jobs.
// When a job carries a reply subject, the result is sent back on it.
func (w *Worker) RunNATS(ctx context.Context, nc *nats.Conn, cfg *params.NATSConfig) error {
	msgs := make(chan *nats.Msg, w.config.Workers*2)
	sub, err := nc.ChanQueueSubscribe(cfg.Subject, cfg.Queue, msgs)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", cfg.Subject, err)
	}
	w.logger.Info("Subscribed", "subject", cfg.Subject, "queue", cfg.Queue, "workers", w.config.Workers)

	w.Metrics.Run(w.config.TickInterval)
	defer w.Metrics.Stop()

	wg := sync.WaitGroup{}
	for i := 0; i < max(w.config.Workers, 1); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg := <-msgs:
					w.handleMsg(ctx, msg)
				}
			}
		}()
	}

	<-ctx.Done()
	if err := sub.Unsubscribe(); err != nil {
		w.logger.Warn("Unsubscribe", "error", err)
	}
	wg.Wait()
	return nc.Flush()
}

func (w *Worker) handleMsg(ctx context.Context, msg *nats.Msg) {
	res := w.HandleJSON(ctx, msg.Data)
	if msg.Reply == "" {
		return
	}
	b, err := json.Marshal(res)
	if err != nil {
		w.logger.Error("Encode reply", "error", err)
		return
	}
	if err := msg.Respond(b); err != nil {
		w.logger.Error("Reply", "subject", msg.Reply, "error", err)
	}
}
