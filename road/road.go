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

// Package road assembles matched pattern-tree nodes into roads: clusters
// that share a narrowing common set of hits across an increasing number of
// detector planes, the candidate straight-line tracks of an event.
package road

import "github.com/patterntrack/roadfinder/event"

// Road is one candidate track: an ordered sequence of pattern matches that
// all agree on a common, monotonically shrinking set of hits.
type Road struct {
	matches    []*event.Match
	common     event.HitSet
	all        event.HitSet
	nPlanes    int
	maxMissing int
	finished   bool
}

// NewRoad creates an empty Road for a detector with nPlanes planes, tolerant
// of at most maxMissing planes lacking a common hit.
func NewRoad(nPlanes, maxMissing int) *Road {
	return &Road{
		nPlanes:    nPlanes,
		maxMissing: maxMissing,
		all:        event.NewHitSet(),
	}
}

// Add tries to absorb m into the road. Every match, including the first,
// must cover at least nPlanes-maxMissing distinct planes once intersected
// with the road's current common hit set; if it does, the narrower
// intersection becomes the road's new common set and m joins the road.
// Otherwise Add returns false and leaves the road untouched.
func (r *Road) Add(m *event.Match) bool {
	if r.finished {
		return false
	}

	if len(r.matches) == 0 {
		if !r.coversEnoughPlanes(m.Hits) {
			return false
		}
		r.matches = append(r.matches, m)
		r.common = m.Hits.Clone()
		r.all = r.all.Union(m.Hits)
		return true
	}

	candidate := r.common.Intersect(m.Hits)
	if !r.coversEnoughPlanes(candidate) {
		return false
	}

	r.common = candidate
	r.all = r.all.Union(m.Hits)
	r.matches = append(r.matches, m)
	return true
}

func (r *Road) coversEnoughPlanes(hits event.HitSet) bool {
	planes := make(map[int]struct{}, len(hits))
	for h := range hits {
		planes[h.PlaneIndex] = struct{}{}
	}
	missing := r.nPlanes - len(planes)
	return missing <= r.maxMissing
}

// Finish freezes the road and marks every absorbed match's Used state. A
// match is fully consumed only if all of its hits survived into the road's
// final common set; if the common set narrowed past some of its hits
// (other matches in the road ruled them out), it is only partially
// consumed and remains eligible to seed or join another road.
func (r *Road) Finish() {
	if r.finished {
		return
	}
	r.finished = true

	for _, m := range r.matches {
		used := event.PartiallyConsumed
		if m.Hits.Difference(r.common).Len() == 0 {
			used = event.FullyConsumed
		}
		if m.Used < used {
			m.Used = used
		}
	}
}

// Matches returns the matches absorbed into the road, in the order they
// were added.
func (r *Road) Matches() []*event.Match {
	return r.matches
}

// CommonHits returns the road's current common hit set.
func (r *Road) CommonHits() event.HitSet {
	return r.common
}

// AllHits returns the union of every hit set absorbed into the road.
func (r *Road) AllHits() event.HitSet {
	return r.all
}

// Len returns the number of matches absorbed into the road.
func (r *Road) Len() int {
	return len(r.matches)
}
