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

// Package phash implements the deduplicating dictionary the generator uses to
// make sure every distinct bit tuple is stored exactly once, keyed on its bit
// content via a fast non-cryptographic hash.
package phash

import (
	"encoding/binary"

	"github.com/OneOfOne/xxhash"

	"github.com/patterntrack/roadfinder/pattern"
)

// Node wraps a stored Pattern with bucket-chaining and the shallowest depth
// at which the pattern has been validated as usable.
type Node struct {
	Pattern  *pattern.Pattern
	MinDepth int
	next     *Node
}

// Table is a chained hash table keyed on a Pattern's bit content. Bucket
// count is fixed at construction time, matching the generator's contract
// that table size is set to 2^(nLevels-1) on first use.
type Table struct {
	buckets []*Node
	count   int
}

// NewTable creates a hash table sized for the given number of levels. size
// must be a power of two; the generator computes it as 2^(nLevels-1).
func NewTable(size int) *Table {
	if size < 1 {
		size = 1
	}
	return &Table{buckets: make([]*Node, size)}
}

// Len returns the number of distinct patterns currently stored.
func (t *Table) Len() int {
	return t.count
}

func (t *Table) bucketIndex(bits []int32) int {
	buf := make([]byte, 4*len(bits))
	for i, b := range bits {
		binary.BigEndian.PutUint32(buf[4*i:], uint32(b))
	}
	sum := xxhash.Checksum64(buf)
	return int(sum % uint64(len(t.buckets)))
}

// Lookup returns the Node for a pattern with the given bits, or nil if none
// is stored. Patterns are compared by exact bit-tuple equality.
func (t *Table) Lookup(bits []int32) *Node {
	idx := t.bucketIndex(bits)
	for n := t.buckets[idx]; n != nil; n = n.next {
		if bitsEqual(n.Pattern.Bits(), bits) {
			return n
		}
	}
	return nil
}

// Insert stores a new Pattern at the given minimum validated depth and
// returns its Node. Insertion is head-of-bucket, which (together with
// Lookup's first-match semantics) makes bucket order, and therefore the
// serialized file, deterministic across runs for a fixed insertion order.
func (t *Table) Insert(p *pattern.Pattern, depth int) *Node {
	idx := t.bucketIndex(p.Bits())
	n := &Node{Pattern: p, MinDepth: depth, next: t.buckets[idx]}
	t.buckets[idx] = n
	t.count++
	return n
}

// Nodes returns every stored node across all buckets. Order is
// bucket-major, then head-to-tail within a bucket (most-recently-inserted
// first), which is the reverse of insertion order within a bucket.
func (t *Table) Nodes() []*Node {
	out := make([]*Node, 0, t.count)
	for _, head := range t.buckets {
		for n := head; n != nil; n = n.next {
			out = append(out, n)
		}
	}
	return out
}

func bitsEqual(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if b[i] != v {
			return false
		}
	}
	return true
}
