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

package tree

import (
	"fmt"

	"github.com/patterntrack/roadfinder/pattern"
	"github.com/patterntrack/roadfinder/pattern/phash"
)

// Stats collects build-time statistics from Generate.
type Stats struct {
	PatternsCreated int
	LinksReused     int
	LinksCreated    int
	NodesVisited    int
}

// Generate builds the full pattern DAG for the given parameters and returns
// the resulting PatternTree together with build-time statistics.
//
// Generation never aborts mid-build: the only failure mode is a parameter
// error, reported before any work begins.
func Generate(params pattern.Params) (*PatternTree, Stats, error) {
	if err := params.Validate(); err != nil {
		return nil, Stats{}, err
	}

	nPlanes := params.NPlanes()
	tableSize := 1 << uint(params.NLevels()-1)
	table := phash.NewTable(tableSize)
	zpos := params.NormalizedZPos()

	root := pattern.New(make([]int32, nPlanes))
	table.Insert(root, 0)

	var stats Stats
	// MaxDepth=1 is the degenerate single-resolution case: the root is
	// already the finest level there is, so it gets no children.
	if params.MaxDepth > 1 {
		makeChildNodes(root, 1, params, zpos, table, &stats)
	} else {
		stats.NodesVisited = 1
	}

	return New(root, params, table.Len()), stats, nil
}

// makeChildNodes grows the children of parent that live at resolution
// level depth, then recurses into grandchildren. depth is the level being
// produced; parent itself lives at depth-1.
func makeChildNodes(parent *pattern.Pattern, depth int, params pattern.Params, zpos []float64, table *phash.Table, stats *Stats) {
	stats.NodesVisited++

	parentNode := table.Lookup(parent.Bits())
	if parentNode == nil {
		panic(fmt.Sprintf("invariant violated: pattern %v visited by the generator but absent from its hash table", parent.Bits()))
	}
	if depth-1 < parentNode.MinDepth {
		parentNode.MinDepth = depth - 1
	}

	if depth >= params.NLevels() {
		return
	}

	if !parent.HasChildren() {
		it := pattern.NewChildIter(parent, params.Width)
		for {
			bits, typ, ok := it.Next()
			if !ok {
				break
			}

			existing := table.Lookup(bits)
			if existing != nil {
				if depth >= existing.MinDepth || pattern.SlopeCheck(existing.Pattern, depth, params.MaxSlope) {
					parent.AddLink(existing.Pattern, typ)
					stats.LinksReused++
					stats.LinksCreated++
				}
				continue
			}

			child := pattern.New(bits)
			if pattern.SlopeCheck(child, depth, params.MaxSlope) && pattern.LineCheck(child, zpos) {
				table.Insert(child, depth)
				parent.AddLink(child, typ)
				stats.PatternsCreated++
				stats.LinksCreated++
			}
		}
	}

	for _, link := range parent.Links() {
		childNode := table.Lookup(link.Child.Bits())
		if childNode == nil {
			panic(fmt.Sprintf("invariant violated: linked pattern %v absent from hash table", link.Child.Bits()))
		}
		if !link.Child.HasChildren() || childNode.MinDepth > depth {
			makeChildNodes(link.Child, depth+1, params, zpos, table, stats)
		}
	}
}
