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

// Package pattern holds the bit-tuple pattern DAG: the Pattern node type, its
// Link edges, the candidate enumerator used to grow the tree one resolution
// level at a time, and the geometric predicates a candidate must pass before
// it is kept.
package pattern

import "fmt"

// LinkType encodes how a Link's child bits must be transformed to obtain the
// effective child pattern instance referenced by one particular parent.
type LinkType uint8

const (
	// LinkPlain references the child pattern unmodified.
	LinkPlain LinkType = 0
	// LinkShift means the child bits must be shifted right by one bit.
	LinkShift LinkType = 1
	// LinkMirror means the child bits must be mirrored across their width.
	LinkMirror LinkType = 2
)

// Shift reports whether the link applies the shift-right-by-one transform.
func (t LinkType) Shift() bool {
	return t&LinkShift != 0
}

// Mirror reports whether the link applies the mirror-across-width transform.
func (t LinkType) Mirror() bool {
	return t&LinkMirror != 0
}

func (t LinkType) String() string {
	switch t {
	case LinkPlain:
		return "plain"
	case LinkShift:
		return "shift"
	case LinkMirror:
		return "mirror"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Link is a directed, typed reference from a parent Pattern to a child
// Pattern. Links are stored in a singly-linked list off of the parent, in the
// order they were first discovered by the generator; that order is part of
// the serialized file format's contract.
type Link struct {
	Child *Pattern
	Type  LinkType
	next  *Link
}

// Pattern is a canonical, depth-independent N-tuple of non-negative plane bin
// indices. Two Patterns with the same bit tuple are, by construction, the
// same object: the hash table in package phash is responsible for that
// deduplication, Pattern itself only stores the bits and the outgoing links.
type Pattern struct {
	bits  []int32
	links *Link
	last  *Link // tail of the links list, for O(1) append
}

// New creates a Pattern from the given bits. The caller is responsible for
// the bits already being in canonical form (bits[0] == 0, width >= 0); New
// does not validate this, since candidate bits are canonicalized by ChildIter
// before a Pattern is ever constructed from them.
func New(bits []int32) *Pattern {
	cp := make([]int32, len(bits))
	copy(cp, bits)
	return &Pattern{bits: cp}
}

// Bits returns the pattern's bit tuple. The returned slice must not be
// mutated by the caller.
func (p *Pattern) Bits() []int32 {
	return p.bits
}

// N returns the number of planes the pattern spans.
func (p *Pattern) N() int {
	return len(p.bits)
}

// Width returns max(bits) - min(bits). For a canonical, stored Pattern this
// is always non-negative.
func (p *Pattern) Width() int32 {
	if len(p.bits) == 0 {
		return 0
	}
	lo, hi := p.bits[0], p.bits[0]
	for _, b := range p.bits[1:] {
		if b < lo {
			lo = b
		}
		if b > hi {
			hi = b
		}
	}
	return hi - lo
}

// AddLink appends a new Link to the child pattern with the given transform
// type. Links are appended, never prepended, so that iteration order matches
// discovery order, which the serializer and deserializer depend on.
func (p *Pattern) AddLink(child *Pattern, typ LinkType) *Link {
	l := &Link{Child: child, Type: typ}
	if p.last == nil {
		p.links = l
		p.last = l
		return l
	}
	p.last.next = l
	p.last = l
	return l
}

// Links returns the pattern's outgoing links as a slice, in discovery order.
func (p *Pattern) Links() []*Link {
	var out []*Link
	for l := p.links; l != nil; l = l.next {
		out = append(out, l)
	}
	return out
}

// HasChildren reports whether the pattern has at least one outgoing link.
func (p *Pattern) HasChildren() bool {
	return p.links != nil
}

// Equal reports whether two patterns have identical bit tuples.
func (p *Pattern) Equal(other *Pattern) bool {
	if p == other {
		return true
	}
	if len(p.bits) != len(other.bits) {
		return false
	}
	for i, b := range p.bits {
		if other.bits[i] != b {
			return false
		}
	}
	return true
}

func (p *Pattern) String() string {
	return fmt.Sprintf("%v", p.bits)
}
