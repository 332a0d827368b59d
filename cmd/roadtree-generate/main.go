// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package main

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/patterntrack/roadfinder/metrics"
	"github.com/patterntrack/roadfinder/pattern"
	"github.com/patterntrack/roadfinder/store"
	"github.com/patterntrack/roadfinder/tree"
)

func main() {

	var (
		flagMaxDepth int
		flagWidth    int32
		flagZPos     string
		flagMaxSlope float64
		flagStore    string
		flagLog      string
		flagMetrics  string
	)

	pflag.IntVarP(&flagMaxDepth, "max-depth", "d", 8, "maximum resolution depth")
	pflag.Int32VarP(&flagWidth, "width", "w", 64, "maximum raw bit spread per pattern")
	pflag.StringVarP(&flagZPos, "zpos", "z", "", "comma-separated detector plane z-positions")
	pflag.Float64VarP(&flagMaxSlope, "max-slope", "s", 1.0, "maximum allowed slope")
	pflag.StringVarP(&flagStore, "store", "o", store.DefaultStoragePath, "database directory for the generated tree")
	pflag.StringVarP(&flagLog, "log", "l", "info", "log output level")
	pflag.StringVarP(&flagMetrics, "metrics", "m", "", "address to serve Prometheus metrics on, empty to disable")

	pflag.Parse()

	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	level, err := zerolog.ParseLevel(flagLog)
	if err != nil {
		log.Fatal().Err(err).Msg("could not parse log level")
	}
	log = log.Level(level)

	if flagMetrics != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			log.Info().Str("address", flagMetrics).Msg("serving metrics")
			if err := http.ListenAndServe(flagMetrics, nil); err != nil {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	zpos, err := parseZPos(flagZPos)
	if err != nil {
		log.Fatal().Err(err).Msg("could not parse zpos")
	}

	params := pattern.Params{
		MaxDepth: flagMaxDepth,
		Width:    flagWidth,
		ZPos:     zpos,
		MaxSlope: flagMaxSlope,
	}

	log.Info().
		Int("max_depth", params.MaxDepth).
		Int32("width", params.Width).
		Int("n_planes", params.NPlanes()).
		Float64("max_slope", params.MaxSlope).
		Msg("Roadtree Generator starting")

	start := time.Now()
	built, stats, err := tree.Generate(params)
	if err != nil {
		log.Fatal().Err(err).Msg("could not generate pattern tree")
	}
	duration := time.Since(start)
	metrics.BuildDuration.Observe(duration.Seconds())
	metrics.LinksReused.Add(float64(stats.LinksReused))
	metrics.PatternsCreated.WithLabelValues(strconv.Itoa(params.MaxDepth)).Add(float64(stats.PatternsCreated))
	initialBuckets := 1 << uint(params.NLevels()-1)
	metrics.HashTableLoadFactor.Set(float64(built.PatternCount()) / float64(initialBuckets))

	log.Info().
		Int("patterns_created", stats.PatternsCreated).
		Int("links_reused", stats.LinksReused).
		Int("links_created", stats.LinksCreated).
		Int("nodes_visited", stats.NodesVisited).
		Int("total_patterns", built.PatternCount()).
		Str("duration", duration.Round(time.Millisecond).String()).
		Msg("pattern tree built")

	db, err := store.NewStore(log, store.WithStoragePath(flagStore))
	if err != nil {
		log.Fatal().Err(err).Msg("could not open tree store")
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("could not close tree store cleanly")
		}
	}()

	key, err := db.SaveTree(built)
	if err != nil {
		log.Fatal().Err(err).Msg("could not persist pattern tree")
	}

	log.Info().Str("key", key).Msg("Roadtree Generator done")
}

// parseZPos splits a comma-separated list of floats into a slice.
func parseZPos(raw string) ([]float64, error) {
	fields := strings.Split(raw, ",")
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
