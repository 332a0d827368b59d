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

package road

import (
	"sort"

	"github.com/patterntrack/roadfinder/event"
)

// Projection describes the event-side inputs of one detector projection: the
// fired-wire bitmap to match against, and the detector's layer and plane
// counts. Builder does not take a Projection; it is given the plane count and
// missing-plane tolerance directly.
type Projection interface {
	Hitpattern() *event.Hitpattern
	NLayers() int
	NPlanes() int
}

// Builder turns a flat list of pattern matches into a set of roads. Matches
// are processed finest-first, so a road is always anchored by its most
// specific (deepest) member, with coarser matches absorbed only if they are
// still compatible with the hits the anchor already claimed.
type Builder struct {
	nPlanes    int
	maxMissing int
}

// NewBuilder creates a Builder for a detector with nPlanes planes, tolerant
// of at most maxMissing unrepresented planes per road.
func NewBuilder(nPlanes, maxMissing int) *Builder {
	return &Builder{nPlanes: nPlanes, maxMissing: maxMissing}
}

// Build clusters matches into roads. Matches already fully consumed are
// skipped. Every other match is absorbed by exactly one road (the first one
// it is compatible with, in finest-first order) or seeds a new one; a match
// that covers too few planes to seed a road is dropped. It returns the
// finished roads.
func (b *Builder) Build(matches []*event.Match) []*Road {
	ordered := make([]*event.Match, len(matches))
	copy(ordered, matches)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Node.Depth > ordered[j].Node.Depth
	})

	var roads []*Road
	for _, m := range ordered {
		if m.Used == event.FullyConsumed {
			continue
		}

		placed := false
		for _, r := range roads {
			if r.Add(m) {
				placed = true
				break
			}
		}
		if !placed {
			r := NewRoad(b.nPlanes, b.maxMissing)
			if r.Add(m) {
				roads = append(roads, r)
			}
		}
	}

	for _, r := range roads {
		r.Finish()
	}

	return roads
}
