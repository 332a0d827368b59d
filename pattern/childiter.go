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

package pattern

// ChildIter enumerates the up to 2^N candidate children of a parent pattern
// under one resolution doubling. It is finite, yields candidates in
// decreasing trial-index order (part of the serialized file format's
// contract, since it drives link-discovery order), and is not restartable
// except by Reset.
type ChildIter struct {
	parent *Pattern
	width  int32
	n      int
	trial  int64 // next trial index to emit, or -1 when exhausted
	raw    []int32
}

// NewChildIter creates an iterator over the candidate children of parent,
// rejecting any candidate whose raw bit spread exceeds width (the
// generator's fixed width parameter, independent of depth).
func NewChildIter(parent *Pattern, width int32) *ChildIter {
	n := parent.N()
	return &ChildIter{
		parent: parent,
		width:  width,
		n:      n,
		trial:  int64(1)<<uint(n) - 1,
		raw:    make([]int32, n),
	}
}

// Reset rewinds the iterator to its first trial index.
func (c *ChildIter) Reset() {
	c.trial = int64(1)<<uint(c.n) - 1
}

// Next produces the next valid candidate child. It returns (bits, type,
// true) on success, or (nil, 0, false) once the trial space is exhausted.
// The returned bits slice is owned by the caller; it is not reused across
// calls.
func (c *ChildIter) Next() ([]int32, LinkType, bool) {
	parentBits := c.parent.Bits()
	for c.trial >= 0 {
		trial := c.trial
		c.trial--

		var trueMin, trueMax int32
		for i := 0; i < c.n; i++ {
			bit := int32((trial >> uint(i)) & 1)
			v := 2*parentBits[i] + bit
			c.raw[i] = v
			if i == 0 {
				trueMin, trueMax = v, v
				continue
			}
			if v < trueMin {
				trueMin = v
			}
			if v > trueMax {
				trueMax = v
			}
		}

		if trueMax-trueMin > c.width {
			continue
		}

		typ := LinkPlain
		pivot := c.raw[0]
		if pivot != 0 {
			for i := range c.raw {
				c.raw[i] -= pivot
			}
			typ |= LinkShift
		}

		// A negative directional width (bits[N-1] < bits[0] == 0) only
		// arises from the root, whose bits are all zero: any non-root
		// parent already has a non-negative bits[N-1], so 2*bits[N-1]+bit
		// cannot fall below the (also non-negative) pivot. Mirroring
		// reflects about the fixed point bits[0] == 0, which leaves it
		// untouched and restores the non-negative invariant.
		if c.raw[c.n-1] < 0 {
			typ |= LinkMirror
			for i := range c.raw {
				c.raw[i] = -c.raw[i]
			}
		}

		valid := true
		for _, v := range c.raw {
			if v < 0 {
				valid = false
				break
			}
		}
		if !valid {
			continue
		}

		out := make([]int32, c.n)
		copy(out, c.raw)
		return out, typ, true
	}
	return nil, 0, false
}
