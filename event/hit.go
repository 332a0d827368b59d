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

// Package event holds the per-event data: fired-wire hits, the per-plane
// Hitpattern bitmap built from them, the visitor that matches a pattern tree
// against a Hitpattern, and the hit-pairing iterator used by companion-plane
// lookups.
package event

// Hit is a single detected ionization on a specific wire plane.
type Hit struct {
	PlaneType  int
	PlaneIndex int
	WireNumber int
	Resolution float64
	DriftTime  float64
	PosLeft    float64
	PosRight   float64
}

// Less implements the strict lexicographic ordering on
// (planeType, planeIndex, wireNumber, driftTime).
func (h *Hit) Less(other *Hit) bool {
	if h.PlaneType != other.PlaneType {
		return h.PlaneType < other.PlaneType
	}
	if h.PlaneIndex != other.PlaneIndex {
		return h.PlaneIndex < other.PlaneIndex
	}
	if h.WireNumber != other.WireNumber {
		return h.WireNumber < other.WireNumber
	}
	return h.DriftTime < other.DriftTime
}

// WireDistLess reports whether h is strictly ordered before other once hits
// within maxDist wires (on the same plane) are treated as equivalent.
func WireDistLess(h, other *Hit, maxDist int) bool {
	return compareWithin(h, other, maxDist) < 0
}

// compareWithin returns -1, 0 or 1 depending on whether h sorts before,
// within maxDist wires of, or after other, comparing plane identity first
// and wire proximity second.
func compareWithin(h, other *Hit, maxDist int) int {
	if h.PlaneType != other.PlaneType {
		if h.PlaneType < other.PlaneType {
			return -1
		}
		return 1
	}
	if h.PlaneIndex != other.PlaneIndex {
		if h.PlaneIndex < other.PlaneIndex {
			return -1
		}
		return 1
	}
	d := h.WireNumber - other.WireNumber
	if d < 0 {
		d = -d
	}
	if d <= maxDist {
		return 0
	}
	if h.WireNumber < other.WireNumber {
		return -1
	}
	return 1
}
