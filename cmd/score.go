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
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/rotblauer/aistrust/score"
	"github.com/rotblauer/aistrust/scorer"
	"github.com/rotblauer/aistrust/types/vesseltrack"
	"github.com/spf13/cobra"
)

var optScoreBreakdown bool
var optScoreGeoJSON bool

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score [file|-]",
	Short: "Score one request read from a file or stdin",
	Long: `Reads a single scoring request and prints the resulting record as JSON.

The request carries its own data:

  {"mmsi": 219019887, "messages": [...], "trajectory": "<base64 payload>", "encoding": "wkb", "algorithm": "simple"}

With --geojson the output is instead a FeatureCollection of the trajectory
and its per-window fit scores, for viewing on a map. Only the simple algorithm has one.

Examples:

  aistrust score job.json
  cat job.json | aistrust score --breakdown=false
  aistrust score --geojson job.json > explain.geojson
`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)

		var in io.Reader = os.Stdin
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				log.Fatalln(err)
			}
			defer f.Close()
			in = f
		}
		req, err := readScoreRequest(in)
		if err != nil {
			log.Fatalln(err)
		}

		rec, err := scorer.NewStrategies().Score(context.Background(), req)
		if err != nil {
			log.Fatalln(err)
		}

		enc := json.NewEncoder(os.Stdout)
		if optScoreGeoJSON {
			if rec.Breakdown == nil {
				log.Fatalf("algorithm %s has no breakdown to explain", rec.Algorithm)
			}
			vt, err := vesseltrack.New(req.MMSI, req.Messages, req.Trajectory, req.Encoding)
			if err != nil {
				log.Fatalln(err)
			}
			if err := enc.Encode(score.Explain(vt, rec.Breakdown)); err != nil {
				log.Fatalln(err)
			}
			return
		}
		if !optScoreBreakdown {
			rec.Breakdown = nil
		}
		if err := enc.Encode(rec); err != nil {
			log.Fatalln(err)
		}
	},
}

func readScoreRequest(r io.Reader) (*scorer.Request, error) {
	req := &scorer.Request{}
	if err := json.NewDecoder(r).Decode(req); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	if req.Algorithm == "" {
		req.Algorithm = scorer.TagSimple
	}
	tag, err := scorer.ParseTag(string(req.Algorithm))
	if err != nil {
		return nil, err
	}
	req.Algorithm = tag
	req.Encoding, err = vesseltrack.ParseEncoding(string(req.Encoding))
	if err != nil {
		return nil, err
	}
	return req, nil
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().BoolVar(&optScoreBreakdown, "breakdown", true, "Include the per-dimension breakdown")
	scoreCmd.Flags().BoolVar(&optScoreGeoJSON, "geojson", false, "Print a GeoJSON explanation instead of the record")
}
