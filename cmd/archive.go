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
	"log"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rotblauer/aistrust/common"
	"github.com/rotblauer/aistrust/params"
	"github.com/rotblauer/aistrust/scoredb"
	"github.com/spf13/cobra"
)

var optArchiveBucket string
var optArchiveKey string

// archiveCmd represents the archive command
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Upload all stored records to S3 as gzipped JSON lines",
	Long: `Dumps the score history to S3.

Credentials and region come from the usual AWS environment and shared config.
The bucket defaults to $AWS_BUCKETNAME.

Example:

  aistrust archive --bucket my-bucket --key aistrust/2024-09-09.ndjson.gz
`,
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)
		if optArchiveBucket == "" {
			log.Fatalln("no bucket; set --bucket or AWS_BUCKETNAME")
		}

		store, err := scoredb.Open(viperDatadir(), true)
		if err != nil {
			log.Fatalln(err)
		}
		defer store.Close()

		ctx, cancel := common.InterruptedContext(context.Background())
		defer cancel()

		start := time.Now()
		n, err := store.Archive(ctx, scoredb.NewS3Uploader(), optArchiveBucket, optArchiveKey)
		if err != nil {
			log.Fatalln(err)
		}
		slog.Warn("Archived records", "n", humanize.Comma(int64(n)),
			"bucket", optArchiveBucket, "key", optArchiveKey,
			"elapsed", time.Since(start).Round(time.Millisecond))
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)

	archiveCmd.Flags().StringVar(&optArchiveBucket, "bucket", params.AWS_BUCKETNAME, "S3 bucket")
	archiveCmd.Flags().StringVar(&optArchiveKey, "key", params.DefaultArchiveS3Key, "S3 object key")
}
