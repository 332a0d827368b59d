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

import "fmt"

// Hitpattern is the per-plane fired-wire bitmap built from an event's raw
// hits, at the pattern tree's finest resolution (2^maxDepth bins per plane,
// root at depth 0). ComparePattern walks a tree against a Hitpattern to find
// matching roads.
type Hitpattern struct {
	nPlanes        int
	nBins          int
	width          float64
	clusterMaxDist int
	bins           [][]bool
	hits           [][][]*Hit
}

// NewHitpattern creates an empty Hitpattern sized for nPlanes planes, a tree
// whose deepest nodes live at the given maxDepth (root is depth 0, so the
// finest resolution is 2^maxDepth bins per plane), and a detector width of
// width wire-units. clusterMaxDist additionally marks the clusterMaxDist
// bins on either side of a hit's own bin, so that a slightly mis-binned hit
// can still match a neighboring pattern bin.
func NewHitpattern(nPlanes, maxDepth int, width float64, clusterMaxDist int) *Hitpattern {
	nBins := 1 << uint(maxDepth)
	bins := make([][]bool, nPlanes)
	hits := make([][][]*Hit, nPlanes)
	for p := 0; p < nPlanes; p++ {
		bins[p] = make([]bool, nBins)
		hits[p] = make([][]*Hit, nBins)
	}
	return &Hitpattern{
		nPlanes:        nPlanes,
		nBins:          nBins,
		width:          width,
		clusterMaxDist: clusterMaxDist,
		bins:           bins,
		hits:           hits,
	}
}

// NPlanes returns the number of detector planes the pattern covers.
func (hp *Hitpattern) NPlanes() int {
	return hp.nPlanes
}

// NBins returns the number of bins per plane, at the tree's finest
// resolution.
func (hp *Hitpattern) NBins() int {
	return hp.nBins
}

// Clear resets every bin and discards all recorded hits, so the Hitpattern
// can be reused for the next event without reallocating.
func (hp *Hitpattern) Clear() {
	for p := 0; p < hp.nPlanes; p++ {
		for b := range hp.bins[p] {
			hp.bins[p][b] = false
			hp.hits[p][b] = nil
		}
	}
}

// binFor maps a raw wire position in [0, width) to its bin index.
func (hp *Hitpattern) binFor(pos float64) int {
	return int(pos * float64(hp.nBins) / hp.width)
}

// SetHit marks plane's bin (and its clusterMaxDist neighbors) as fired by h.
func (hp *Hitpattern) SetHit(plane int, h *Hit) error {
	if plane < 0 || plane >= hp.nPlanes {
		return fmt.Errorf("plane %d out of range [0,%d)", plane, hp.nPlanes)
	}
	center := hp.binFor(float64(h.WireNumber))
	hp.setBin(plane, center, h)
	for d := 1; d <= hp.clusterMaxDist; d++ {
		hp.setBin(plane, center-d, h)
		hp.setBin(plane, center+d, h)
	}
	return nil
}

func (hp *Hitpattern) setBin(plane, bin int, h *Hit) {
	if bin < 0 || bin >= hp.nBins {
		return
	}
	hp.bins[plane][bin] = true
	hp.hits[plane][bin] = append(hp.hits[plane][bin], h)
}

// IsSet reports whether the given plane/bin is fired.
func (hp *Hitpattern) IsSet(plane, bin int) bool {
	if bin < 0 || bin >= hp.nBins {
		return false
	}
	return hp.bins[plane][bin]
}

// HitsAt returns the hits recorded against the given plane/bin, nil if none.
func (hp *Hitpattern) HitsAt(plane, bin int) []*Hit {
	if bin < 0 || bin >= hp.nBins {
		return nil
	}
	return hp.hits[plane][bin]
}

// RangeHits returns the union of hits set anywhere in [lo, lo+width) for the
// given plane, used by ComparePattern to test a tree node that represents a
// coarser-than-finest-resolution bin range.
func (hp *Hitpattern) RangeHits(plane int, lo, width int) []*Hit {
	var out []*Hit
	for b := lo; b < lo+width; b++ {
		out = append(out, hp.HitsAt(plane, b)...)
	}
	return out
}
