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

// PairResult is one emitted pair from a HitPairIter. A nil A or B means the
// other side had no match within maxDist and is emitted as a singleton.
type PairResult struct {
	A *Hit
	B *Hit
}

type pairIterState int

const (
	pairStateNormal pairIterState = iota
	pairStateScanning
	pairStateDone
)

// HitPairIter merges two hit slices, already sorted by Hit.Less, pairing
// hits that lie within maxDist wires of each other on the same plane.
// Unpaired hits on either side are emitted as singletons; no hit is ever
// dropped. A run is formed from the A hits within maxDist of the run's first
// B hit and the B hits within maxDist of the run's first A hit, and every
// A/B combination of the run is emitted as a pair (the multi-match case). A
// hit past the end of the other side's run is not paired with the run's
// hits, even if it lies within maxDist of one of them.
//
// HitPairIter is driven one step at a time via Next, rather than building
// the whole result up front: pairStateNormal advances the two merge cursors
// until it finds a run of mutually-equal hits on both sides, at which point
// it computes that run's cross product into a small pending buffer and
// switches to pairStateScanning to drain it.
type HitPairIter struct {
	a, b       []*Hit
	ai, bi     int
	maxDist    int
	state      pairIterState
	pending    []PairResult
	pendingIdx int
}

// NewHitPairIter creates an iterator pairing hits from a and b, both assumed
// sorted by Hit.Less, treating hits within maxDist wires as a match.
func NewHitPairIter(a, b []*Hit, maxDist int) *HitPairIter {
	return &HitPairIter{a: a, b: b, maxDist: maxDist}
}

// Next returns the next pair and true, or a zero PairResult and false once
// every hit on both sides has been emitted.
func (it *HitPairIter) Next() (PairResult, bool) {
	for {
		switch it.state {
		case pairStateDone:
			return PairResult{}, false

		case pairStateScanning:
			if it.pendingIdx < len(it.pending) {
				r := it.pending[it.pendingIdx]
				it.pendingIdx++
				return r, true
			}
			it.pending = nil
			it.pendingIdx = 0
			it.state = pairStateNormal

		case pairStateNormal:
			aDone := it.ai >= len(it.a)
			bDone := it.bi >= len(it.b)

			switch {
			case aDone && bDone:
				it.state = pairStateDone

			case aDone:
				r := PairResult{B: it.b[it.bi]}
				it.bi++
				return r, true

			case bDone:
				r := PairResult{A: it.a[it.ai]}
				it.ai++
				return r, true

			default:
				cmp := compareWithin(it.a[it.ai], it.b[it.bi], it.maxDist)
				switch {
				case cmp < 0:
					r := PairResult{A: it.a[it.ai]}
					it.ai++
					return r, true
				case cmp > 0:
					r := PairResult{B: it.b[it.bi]}
					it.bi++
					return r, true
				default:
					it.beginScan()
				}
			}
		}
	}
}

// beginScan locates the runs of mutually-equal hits starting at the current
// cursors on both sides, fills pending with their cross product, advances
// both cursors past the runs, and switches to pairStateScanning.
func (it *HitPairIter) beginScan() {
	aStart, bStart := it.ai, it.bi

	aEnd := aStart
	for aEnd < len(it.a) && compareWithin(it.a[aEnd], it.b[bStart], it.maxDist) == 0 {
		aEnd++
	}
	bEnd := bStart
	for bEnd < len(it.b) && compareWithin(it.a[aStart], it.b[bEnd], it.maxDist) == 0 {
		bEnd++
	}

	for i := aStart; i < aEnd; i++ {
		for j := bStart; j < bEnd; j++ {
			it.pending = append(it.pending, PairResult{A: it.a[i], B: it.b[j]})
		}
	}

	it.ai, it.bi = aEnd, bEnd
	it.state = pairStateScanning
}
