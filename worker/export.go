package worker

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rotblauer/aistrust/events"
	"github.com/rotblauer/aistrust/metrics/influxdb"
	"github.com/rotblauer/aistrust/scorer"
)

// ExportFunc writes a batch of records somewhere.
type ExportFunc func(records []*scorer.Record) error

// InfluxExport is the ExportFunc for the configured InfluxDB.
var InfluxExport ExportFunc = influxdb.ExportRecords

// RunExport batches every published record and hands the batch to export
// each interval, and once more when ctx is done.
func (w *Worker) RunExport(ctx context.Context, interval time.Duration, export ExportFunc) {
	ch := make(chan *scorer.Record, 1024)
	sub := events.NewScoreFeed.Subscribe(ch)
	defer sub.Unsubscribe()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var batch []*scorer.Record
	flush := func() {
		if len(batch) == 0 {
			return
		}
		start := time.Now()
		if err := export(batch); err != nil {
			w.logger.Error("Export records", "n", len(batch), "error", err)
		} else {
			w.logger.Info("Exported records", "n", humanize.Comma(int64(len(batch))),
				"elapsed", time.Since(start).Round(time.Millisecond))
		}
		batch = nil
	}
	for {
		select {
		case rec := <-ch:
			batch = append(batch, rec)
		case <-ticker.C:
			flush()
		case err := <-sub.Err():
			if err != nil {
				w.logger.Error("Score feed", "error", err)
			}
			flush()
			return
		case <-ctx.Done():
			// Drain what was sent before shutdown.
			for {
				select {
				case rec := <-ch:
					batch = append(batch, rec)
				default:
					flush()
					return
				}
			}
		}
	}
}
