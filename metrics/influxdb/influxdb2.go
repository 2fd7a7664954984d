package influxdb

import (
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rotblauer/aistrust/params"
	"github.com/rotblauer/aistrust/scorer"
)

const Measurement = "vessel_score"

// RecordPoint maps a record to a point. Undefined dimensions are left out;
// InfluxDB does not store NaN.
func RecordPoint(rec *scorer.Record) *write.Point {
	p := influxdb2.NewPointWithMeasurement(Measurement).
		SetTime(rec.ScoredAt).
		AddTag("mmsi", rec.MMSI.String()).
		AddTag("algorithm", rec.Algorithm.String()).
		AddField("trustworthiness", rec.Trustworthiness)

	if rec.Reason != "" {
		p.AddField("reason", rec.Reason)
	}
	if b := rec.Breakdown; b != nil {
		if b.CellToken != "" {
			p.AddTag("cell", b.CellToken)
		}
		for _, d := range b.Dimensions() {
			if !d.Defined() {
				continue
			}
			p.AddField(d.Name, d.Score)
			p.AddField(d.Name+"_samples", d.Samples)
		}
	}
	if pr := rec.Profile; pr != nil && !pr.EndAlgo.IsZero() {
		p.AddField("algo_us", pr.EndAlgo.Sub(pr.StartAlgo).Microseconds())
		if !pr.StartFetch.IsZero() {
			p.AddField("fetch_us", pr.EndFetch.Sub(pr.StartFetch).Microseconds())
		}
	}
	return p
}

// ExportRecords posts records to an InfluxDB Write API.
// Because it accepts a slice, use batches. The Write API will buffer and flush.
// The last error encountered is returned.
func ExportRecords(records []*scorer.Record) error {
	opts := influxdb2.DefaultOptions()
	opts.SetPrecision(time.Millisecond)
	client := influxdb2.NewClientWithOptions(params.INFLUXDB_URL, params.INFLUXDB_TOKEN, opts)
	writeAPI := client.WriteAPI(params.INFLUXDB_ORG, params.INFLUXDB_BUCKET)

	// Must be called before performing any writes for errors to be collected.
	// The chan is unbuffered and must be drained or the writer will block.
	errorsCh := writeAPI.Errors()
	var err error
	wait := sync.WaitGroup{}
	wait.Add(1)
	go func() {
		defer wait.Done()
		for e := range errorsCh {
			if e != nil {
				err = e
			}
		}
	}()

	for _, rec := range records {
		writeAPI.WritePoint(RecordPoint(rec))
	}
	writeAPI.Flush()
	client.Close()
	wait.Wait()
	return err
}
