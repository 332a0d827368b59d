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

import "sort"

// HitSet is an unordered collection of distinct hits, keyed by pointer
// identity. Roads narrow a HitSet as they absorb new pattern matches, so the
// type favors cheap intersection and difference over ordered storage.
type HitSet map[*Hit]struct{}

// NewHitSet builds a HitSet from the given hits.
func NewHitSet(hits ...*Hit) HitSet {
	s := make(HitSet, len(hits))
	for _, h := range hits {
		s[h] = struct{}{}
	}
	return s
}

// Add inserts h into the set.
func (s HitSet) Add(h *Hit) {
	s[h] = struct{}{}
}

// Contains reports whether h is a member of the set.
func (s HitSet) Contains(h *Hit) bool {
	_, ok := s[h]
	return ok
}

// Len returns the number of hits in the set.
func (s HitSet) Len() int {
	return len(s)
}

// Clone returns an independent copy of the set.
func (s HitSet) Clone() HitSet {
	cp := make(HitSet, len(s))
	for h := range s {
		cp[h] = struct{}{}
	}
	return cp
}

// Intersect returns the hits present in both s and other.
func (s HitSet) Intersect(other HitSet) HitSet {
	small, big := s, other
	if len(big) < len(small) {
		small, big = big, small
	}
	result := make(HitSet, len(small))
	for h := range small {
		if _, ok := big[h]; ok {
			result[h] = struct{}{}
		}
	}
	return result
}

// Union returns the hits present in either s or other.
func (s HitSet) Union(other HitSet) HitSet {
	result := make(HitSet, len(s)+len(other))
	for h := range s {
		result[h] = struct{}{}
	}
	for h := range other {
		result[h] = struct{}{}
	}
	return result
}

// Difference returns the hits present in s but not in other.
func (s HitSet) Difference(other HitSet) HitSet {
	result := make(HitSet, len(s))
	for h := range s {
		if _, ok := other[h]; !ok {
			result[h] = struct{}{}
		}
	}
	return result
}

// Equal reports whether s and other contain exactly the same hits.
func (s HitSet) Equal(other HitSet) bool {
	if len(s) != len(other) {
		return false
	}
	for h := range s {
		if _, ok := other[h]; !ok {
			return false
		}
	}
	return true
}

// Slice returns the set's hits sorted by Hit.Less, for deterministic
// iteration (logging, tests, serialization of matched hits).
func (s HitSet) Slice() []*Hit {
	out := make([]*Hit, 0, len(s))
	for h := range s {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
