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
	"io"

	"github.com/patterntrack/roadfinder/pattern"
)

// CountVisitor counts distinct patterns visited (by identity, not by
// bit-content, since the DAG can reference the same pattern from several
// parents) and the total number of node visits, including repeats through
// shared children.
type CountVisitor struct {
	seen    map[*pattern.Pattern]struct{}
	Visits  int
	Distinct int
}

// NewCountVisitor creates a CountVisitor ready for use.
func NewCountVisitor() *CountVisitor {
	return &CountVisitor{seen: make(map[*pattern.Pattern]struct{})}
}

// Visit implements Visitor.
func (v *CountVisitor) Visit(nd *NodeDescriptor) VisitResult {
	v.Visits++
	if _, ok := v.seen[nd.Link.Child]; !ok {
		v.seen[nd.Link.Child] = struct{}{}
		v.Distinct++
	}
	return Recurse
}

// PrintVisitor writes one line per visited node to an io.Writer, prefixed
// by depth for readability.
type PrintVisitor struct {
	w   io.Writer
	err error
}

// NewPrintVisitor creates a PrintVisitor writing to w.
func NewPrintVisitor(w io.Writer) *PrintVisitor {
	return &PrintVisitor{w: w}
}

// Err returns the first write error encountered, if any.
func (v *PrintVisitor) Err() error {
	return v.err
}

// Visit implements Visitor.
func (v *PrintVisitor) Visit(nd *NodeDescriptor) VisitResult {
	if v.err != nil {
		return Terminate
	}
	_, err := fmt.Fprintf(v.w, "%*sdepth=%d shift=%d mirrored=%t bits=%v children=%d\n",
		2*nd.Depth, "", nd.Depth, nd.Shift, nd.Mirrored, nd.Link.Child.Bits(), len(nd.Link.Child.Links()))
	if err != nil {
		v.err = err
		return Terminate
	}
	return Recurse
}

// CopyVisitor rebuilds an independent in-memory DAG, isomorphic to the one
// being walked. It reuses the same first-occurrence index map discipline the
// serializer uses, so a pattern referenced from multiple parents in the
// source DAG is copied once and shared in the destination.
type CopyVisitor struct {
	index map[*pattern.Pattern]*pattern.Pattern
	Root  *pattern.Pattern
}

// NewCopyVisitor creates a CopyVisitor.
func NewCopyVisitor() *CopyVisitor {
	return &CopyVisitor{index: make(map[*pattern.Pattern]*pattern.Pattern)}
}

// Visit implements Visitor. Pre-order traversal guarantees a node's parent
// has already been visited (and therefore already has a copy in the index)
// by the time the node itself is visited, so each edge can be recreated
// eagerly with no need to revisit parents after their children are done.
func (v *CopyVisitor) Visit(nd *NodeDescriptor) VisitResult {
	orig := nd.Link.Child
	cp, exists := v.index[orig]
	if !exists {
		cp = pattern.New(orig.Bits())
		v.index[orig] = cp
	}

	if nd.Depth == 0 {
		v.Root = cp
		return Recurse
	}

	parentCopy := v.index[nd.Parent]
	parentCopy.AddLink(cp, nd.Link.Type)

	if exists {
		// Already copied with its own links on its first visit.
		return SkipChildren
	}
	return Recurse
}
