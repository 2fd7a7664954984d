/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"

	"github.com/nats-io/nats.go"
	"github.com/rotblauer/aistrust/common"
	"github.com/rotblauer/aistrust/fetch"
	"github.com/rotblauer/aistrust/fetch/postgres"
	"github.com/rotblauer/aistrust/params"
	"github.com/rotblauer/aistrust/scoredb"
	"github.com/rotblauer/aistrust/worker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Score jobs from stdin or a NATS subject",
	Long: `Runs the scoring job pipeline.

A job names a vessel, a time, and an algorithm:

  {"id": "a1", "mmsi": 219019887, "timestamp": 1725863341, "algorithm": "simple"}

The worker fetches the vessel's messages and trajectory for the window ending at
the timestamp (from Postgres, see --postgres-dsn), scores them, stores the record,
and publishes it. The profiling_json algorithm scores an embedded job and needs no database.

With --source stdin, jobs are read as JSON lines and one result line is written
to stdout per job: the record, or {"id", "error"}.
With --source nats, jobs are consumed from a queue subscription and results are
sent back to the reply subject when there is one.

When INFLUXDB_URL and INFLUXDB_BUCKET are set, records are exported to InfluxDB.

Examples:

  cat jobs.ndjson | aistrust worker --postgres-dsn "$DSN" > results.ndjson
  aistrust worker --source nats --nats-url nats://queue:4222 --workers 16
`,
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)

		config := workerConfig()
		config.Source = viper.GetString("source")
		config.Workers = viper.GetInt("workers")
		config.Window = viper.GetDuration("window")
		config.NATS.URL = viper.GetString("nats-url")
		config.NATS.Subject = viper.GetString("subject")
		config.NATS.Queue = viper.GetString("queue")

		ctx, cancel := common.InterruptedContext(context.Background())
		defer cancel()

		if err := runWorker(ctx, config); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalln(err)
		}
	},
}

func runWorker(ctx context.Context, config *params.WorkerConfig) error {
	var fetcher fetch.Fetcher
	if config.Postgres.DSN != "" {
		db, err := postgres.ConnectWithRetry(config.Postgres.DSN, config.Postgres.ConnectAttempts, config.Postgres.ConnectDelay)
		if err != nil {
			return err
		}
		fetcher = postgres.New(db)
	} else {
		slog.Warn("No postgres DSN, only profiling_json jobs can be scored")
	}

	store, err := scoredb.Open(viperDatadir(), false)
	if err != nil {
		return err
	}
	defer store.Close()

	wk, err := worker.New(config, fetcher, store)
	if err != nil {
		return err
	}

	if params.InfluxEnabled() {
		go wk.RunExport(ctx, config.TickInterval, worker.InfluxExport)
	}

	switch config.Source {
	case params.SourceStdin:
		return wk.RunStdin(ctx, os.Stdin, os.Stdout)
	case params.SourceNATS:
		var nc *nats.Conn
		nc, err = worker.ConnectNATS(config.NATS)
		if err != nil {
			return err
		}
		defer nc.Close()
		return wk.RunNATS(ctx, nc, config.NATS)
	}
	return errors.New("unknown source: " + config.Source)
}

func init() {
	rootCmd.AddCommand(workerCmd)

	defaults := params.DefaultWorkerConfig()

	flags := workerCmd.Flags()
	flags.String("source", defaults.Source, "Job source: stdin or nats")
	flags.Int("workers", defaults.Workers, "Number of jobs scored concurrently")
	flags.Duration("window", defaults.Window, "How far back from the job timestamp to fetch data")
	flags.String("nats-url", defaults.NATS.URL, "NATS server URL")
	flags.String("subject", defaults.NATS.Subject, "NATS subject jobs are published on")
	flags.String("queue", defaults.NATS.Queue, "NATS queue group shared by workers")

	bindFlags(flags)
}
