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

	"github.com/rotblauer/aistrust/common"
	"github.com/rotblauer/aistrust/daemon/webd"
	"github.com/rotblauer/aistrust/fetch"
	"github.com/rotblauer/aistrust/fetch/postgres"
	"github.com/rotblauer/aistrust/params"
	"github.com/rotblauer/aistrust/scoredb"
	"github.com/rotblauer/aistrust/worker"
	"github.com/spf13/cobra"
)

var optHTTPAddr string

// webdCmd represents the serve command
var webdCmd = &cobra.Command{
	Use:   "webd",
	Short: "Start the webserver",
	Long: `Serves scoring over HTTP.

  POST /score                  score a request carrying its own data
  POST /jobs                   run a job through the worker pipeline
  GET  /vessels/{mmsi}/last    latest record for a vessel
  GET  /vessels/{mmsi}/history all stored records for a vessel
  GET  /socket                 websocket feed of new records

Set AISTRUST_TOKEN to require a bearer token on the scoring routes.`,
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)
		slog.Info("webd.Run")

		config := params.DefaultWebDaemonConfig()
		config.Address = optHTTPAddr
		config.DataDir = viperDatadir()
		config.Worker = workerConfig()

		ctx, cancel := common.InterruptedContext(context.Background())
		defer cancel()

		var fetcher fetch.Fetcher
		if dsn := config.Worker.Postgres.DSN; dsn != "" {
			db, err := postgres.ConnectWithRetry(dsn, config.Worker.Postgres.ConnectAttempts, config.Worker.Postgres.ConnectDelay)
			if err != nil {
				log.Fatalln(err)
			}
			fetcher = postgres.New(db)
		}

		store, err := scoredb.Open(config.DataDir, false)
		if err != nil {
			log.Fatalln(err)
		}
		defer store.Close()

		wk, err := worker.New(config.Worker, fetcher, store)
		if err != nil {
			log.Fatalln(err)
		}
		if params.InfluxEnabled() {
			go wk.RunExport(ctx, config.Worker.TickInterval, worker.InfluxExport)
		}

		server, err := webd.NewWebDaemon(config, wk, store)
		if err != nil {
			log.Fatalln(err)
		}
		if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalln(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(webdCmd)

	defaults := params.DefaultWebDaemonConfig()

	pFlags := webdCmd.PersistentFlags()
	pFlags.StringVar(&optHTTPAddr, "address", defaults.Address, "HTTP address to listen on")
}
