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

package event

import (
	"github.com/patterntrack/roadfinder/metrics"
	"github.com/patterntrack/roadfinder/tree"
)

// used states for a Match, tracked outside of tree.NodeDescriptor to avoid an
// import cycle between tree and event: the tree package describes the
// static DAG, the event package owns everything about how a given event's
// hits consume it.
const (
	NotConsumed        = 0
	PartiallyConsumed  = 1
	FullyConsumed      = 2
)

// Match pairs a tree node with the hits it matched for one event, and
// tracks how much of it a Road has since consumed.
type Match struct {
	Node *tree.NodeDescriptor
	Hits HitSet
	Used int
}

// ComparePattern walks a PatternTree and records every node whose bins are
// compatible with a Hitpattern, allowing up to MaxMissing planes to be
// unrepresented. It implements tree.Visitor and always recurses: a coarser
// node's partial match can be refined, narrowed or rejected by its children.
type ComparePattern struct {
	hp         *Hitpattern
	maxDepth   int
	maxMissing int
	Matches    []*Match
}

// NewComparePattern creates a ComparePattern testing tree nodes against hp,
// tolerating up to maxMissing planes without a matching hit at each node.
func NewComparePattern(hp *Hitpattern, maxDepth, maxMissing int) *ComparePattern {
	return &ComparePattern{hp: hp, maxDepth: maxDepth, maxMissing: maxMissing}
}

// Visit implements tree.Visitor.
func (c *ComparePattern) Visit(nd *tree.NodeDescriptor) tree.VisitResult {
	bits := nd.Link.Child.Bits()
	width := nd.Link.Child.Width()

	missing := 0
	hitset := make(HitSet)
	scale := c.maxDepth - nd.Depth
	if scale < 0 {
		scale = 0
	}
	rangeWidth := 1 << uint(scale)

	for p := 0; p < c.hp.NPlanes() && p < len(bits); p++ {
		b := bits[p]
		if nd.Mirrored {
			b = width - b
		}
		lo := (int(nd.Shift) + int(b)) << uint(scale)
		hits := c.hp.RangeHits(p, lo, rangeWidth)
		if len(hits) == 0 {
			missing++
			continue
		}
		for _, h := range hits {
			hitset.Add(h)
		}
	}

	if missing > c.maxMissing {
		metrics.MatchesRejected.Inc()
		return tree.Recurse
	}

	metrics.MissingPlanes.Observe(float64(missing))
	c.Matches = append(c.Matches, &Match{Node: nd, Hits: hitset})

	return tree.Recurse
}
