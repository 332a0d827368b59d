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
	"github.com/gammazero/deque"

	"github.com/patterntrack/roadfinder/pattern"
)

// VisitResult is a visitor's instruction to the walker after visiting one
// node.
type VisitResult int

const (
	// Recurse descends into the node's children.
	Recurse VisitResult = iota
	// SkipChildren prunes the subtree rooted at the current node.
	SkipChildren
	// Terminate aborts the walk entirely.
	Terminate
)

// Status is the outcome of a completed or aborted walk.
type Status int

const (
	// StatusDone means the walk visited the whole reachable DAG.
	StatusDone Status = iota
	// StatusTerminated means a visitor returned Terminate.
	StatusTerminated
)

// Visitor is dispatched to at every node of a depth-first pre-order
// traversal. It carries no further state of its own; any accumulation
// (counts, copies, serialized bytes) lives on the concrete visitor type.
type Visitor interface {
	Visit(nd *NodeDescriptor) VisitResult
}

// Walk performs a depth-first, pre-order traversal starting at rootLink,
// dispatching to visitor at every node. Traversal order is part of the
// contract: it is the same order the serializer uses to assign indices, so
// changing it changes the file format.
//
// The descent stack is explicit (rather than recursive) so that walking a
// tree of maxDepth levels does not require call-stack depth proportional to
// maxDepth.
func Walk(rootLink *pattern.Link, visitor Visitor) Status {
	stack := deque.New(64)
	stack.PushBack(&NodeDescriptor{Link: rootLink})

	for stack.Len() > 0 {
		nd := stack.PopBack().(*NodeDescriptor)

		switch visitor.Visit(nd) {
		case Terminate:
			return StatusTerminated
		case SkipChildren:
			continue
		}

		children := nd.Link.Child.Links()
		for i := len(children) - 1; i >= 0; i-- {
			stack.PushBack(nd.descend(children[i]))
		}
	}

	return StatusDone
}
