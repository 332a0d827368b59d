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
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/patterntrack/roadfinder/event"
	"github.com/patterntrack/roadfinder/metrics"
	"github.com/patterntrack/roadfinder/road"
	"github.com/patterntrack/roadfinder/store"
	"github.com/patterntrack/roadfinder/tree"
)

func main() {

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	var (
		flagStore      string
		flagKey        string
		flagHits       string
		flagWorkers    int
		flagMaxMissing int
		flagWireCount  int32
		flagCluster    int
		flagLog        string
		flagMetrics    string
	)

	pflag.StringVarP(&flagStore, "store", "o", store.DefaultStoragePath, "database directory holding the generated tree")
	pflag.StringVarP(&flagKey, "key", "k", "", "storage key of the tree to match against")
	pflag.StringVarP(&flagHits, "hits", "i", "", "file of event hits, blank-line separated")
	pflag.IntVarP(&flagWorkers, "workers", "j", 4, "number of events to process concurrently")
	pflag.IntVarP(&flagMaxMissing, "max-missing", "m", 1, "maximum unrepresented planes per accepted match")
	pflag.Int32VarP(&flagWireCount, "wires", "n", 256, "number of wires per plane")
	pflag.IntVarP(&flagCluster, "cluster", "c", 1, "neighbor bins smeared around each hit")
	pflag.StringVarP(&flagLog, "log", "l", "info", "log output level")
	pflag.StringVarP(&flagMetrics, "metrics", "p", "", "address to serve Prometheus metrics on, empty to disable")

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

	db, err := store.NewStore(log, store.WithStoragePath(flagStore))
	if err != nil {
		log.Fatal().Err(err).Msg("could not open tree store")
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("could not close tree store cleanly")
		}
	}()

	patternTree, err := db.LoadTree(flagKey)
	if err != nil {
		log.Fatal().Err(err).Msg("could not load pattern tree")
	}

	file, err := os.Open(flagHits)
	if err != nil {
		log.Fatal().Err(err).Msg("could not open hits file")
	}
	defer file.Close()

	events, err := readEvents(file)
	if err != nil {
		log.Fatal().Err(err).Msg("could not parse hits file")
	}

	log.Info().
		Int("events", len(events)).
		Int("workers", flagWorkers).
		Int("n_planes", patternTree.NumPlanes()).
		Msg("Roadtree Matcher starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		<-sig
		log.Warn().Msg("stopping early on interrupt")
		cancel()
	}()

	queue := event.NewQueue()
	for _, hits := range events {
		queue.Push(hits)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	builder := road.NewBuilder(patternTree.NumPlanes(), flagMaxMissing)

	for w := 0; w < flagWorkers; w++ {
		w := w
		group.Go(func() error {
			for {
				select {
				case <-groupCtx.Done():
					return groupCtx.Err()
				default:
				}

				hits, ok := queue.Pop()
				if !ok {
					return nil
				}

				start := time.Now()
				roads := processEvent(patternTree, hits, flagWireCount, flagCluster, flagMaxMissing, builder)
				metrics.EventDuration.Observe(time.Since(start).Seconds())

				for _, r := range roads {
					metrics.RoadsBuilt.WithLabelValues(strconv.Itoa(r.Len())).Inc()
				}
				log.Debug().Int("worker", w).Int("hits", len(hits)).Int("roads", len(roads)).Msg("event processed")
			}
		})
	}

	if err := group.Wait(); err != nil {
		log.Error().Err(err).Msg("Roadtree Matcher stopped early")
		os.Exit(1)
	}

	log.Info().Msg("Roadtree Matcher done")
}

// processEvent builds the event's Hitpattern, matches it against the tree,
// and clusters the resulting matches into roads.
func processEvent(t *tree.PatternTree, hits []*event.Hit, wireCount int32, cluster, maxMissing int, builder *road.Builder) []*road.Road {
	hp := event.NewHitpattern(t.NumPlanes(), t.NumLevels()-1, float64(wireCount), cluster)
	for _, h := range hits {
		_ = hp.SetHit(h.PlaneIndex, h)
	}

	compare := event.NewComparePattern(hp, t.NumLevels()-1, maxMissing)
	t.Walk(compare)

	return builder.Build(compare.Matches)
}

// readEvents parses a hits file into a slice of events, each a slice of
// hits. Events are separated by a blank line; each hit line has the form
// "planeType planeIndex wireNumber driftTime".
func readEvents(r *os.File) ([][]*event.Hit, error) {
	var events [][]*event.Hit
	var current []*event.Hit

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			if len(current) > 0 {
				events = append(events, current)
				current = nil
			}
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, fmt.Errorf("line %d: expected 4 fields, got %d", lineNo, len(fields))
		}

		planeType, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid plane type: %w", lineNo, err)
		}
		planeIndex, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid plane index: %w", lineNo, err)
		}
		wireNumber, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid wire number: %w", lineNo, err)
		}
		driftTime, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid drift time: %w", lineNo, err)
		}

		current = append(current, &event.Hit{
			PlaneType:  planeType,
			PlaneIndex: planeIndex,
			WireNumber: wireNumber,
			DriftTime:  driftTime,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(current) > 0 {
		events = append(events, current)
	}

	return events, nil
}
