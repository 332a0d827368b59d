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

// Package metrics exposes Prometheus instrumentation for both halves of the
// system: pattern generation (build time) and road building (serve time).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PatternsCreated counts distinct patterns added to the tree, labelled
	// with the maximum depth of the build that created them.
	PatternsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roadtree_patterns_created_total",
		Help: "Total distinct patterns created, by the build's maximum depth",
	}, []string{"depth"})

	// LinksReused counts parent-child links that pointed at an
	// already-existing pattern instead of a newly created one.
	LinksReused = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roadtree_links_reused_total",
		Help: "Total links that reused an already-existing pattern",
	})

	// HashTableLoadFactor tracks the generator's dedup table occupancy at
	// the end of a build, as stored-pattern-count divided by bucket count.
	HashTableLoadFactor = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "roadtree_hashtable_load_factor",
		Help: "Pattern hash table occupancy at the end of the last build",
	})

	// BuildDuration measures how long a full pattern generation run takes.
	BuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "roadtree_build_duration_seconds",
		Help:    "Time taken to build a pattern tree",
		Buckets: prometheus.DefBuckets,
	})

	// RoadsBuilt counts roads produced per event, by how many matches they
	// absorbed.
	RoadsBuilt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roadtree_roads_built_total",
		Help: "Total roads built, by match count",
	}, []string{"matches"})

	// MatchesRejected counts tree nodes visited during matching that failed
	// the plane-coverage test.
	MatchesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roadtree_matches_rejected_total",
		Help: "Total tree nodes rejected for missing too many planes",
	})

	// MissingPlanes histograms, per matched node, how many planes lacked a
	// corresponding hit.
	MissingPlanes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "roadtree_missing_planes",
		Help:    "Distribution of unrepresented planes per accepted match",
		Buckets: []float64{0, 1, 2, 3, 4},
	})

	// EventDuration measures how long road building takes for one event.
	EventDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "roadtree_event_duration_seconds",
		Help:    "Time taken to build roads for one event",
		Buckets: prometheus.DefBuckets,
	})
)
