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

// Package tree holds the in-memory PatternTree, the depth-first walker and
// visitor contract over its DAG, and the binary serializer/deserializer.
package tree

import "github.com/patterntrack/roadfinder/pattern"

// PatternTree is the in-memory, read-only mirror of a generated pattern DAG,
// together with the detector geometry it was built for. It implements the
// PatternTree API expected by downstream projection code: Walk, NumLevels,
// NumPlanes, ZPos, and a read-only root link.
type PatternTree struct {
	root     *pattern.Pattern
	rootLink *pattern.Link
	params   pattern.Params
	zpos     []float64
	patterns int
}

// New wraps a generated root pattern together with the parameters it was
// built from into a PatternTree. patterns is the total number of distinct
// Pattern objects in the DAG (the hash table's final size), used by the
// serializer to pick a back-reference index width.
func New(root *pattern.Pattern, params pattern.Params, patterns int) *PatternTree {
	return &PatternTree{
		root:     root,
		rootLink: &pattern.Link{Child: root, Type: pattern.LinkPlain},
		params:   params,
		zpos:     params.NormalizedZPos(),
		patterns: patterns,
	}
}

// NumLevels returns maxDepth + 1.
func (t *PatternTree) NumLevels() int {
	return t.params.NLevels()
}

// NumPlanes returns the number of detector planes.
func (t *PatternTree) NumPlanes() int {
	return t.params.NPlanes()
}

// ZPos returns the normalized plane z-positions, in [0, 1].
func (t *PatternTree) ZPos() []float64 {
	return t.zpos
}

// Params returns the generation parameters the tree was built from.
func (t *PatternTree) Params() pattern.Params {
	return t.params
}

// RootLink returns the tree's synthetic root link: a plain reference to the
// root pattern, which itself has no incoming link of its own.
func (t *PatternTree) RootLink() *pattern.Link {
	return t.rootLink
}

// PatternCount returns the total number of distinct patterns in the DAG.
func (t *PatternTree) PatternCount() int {
	return t.patterns
}

// Walk performs a depth-first, pre-order traversal of the tree, dispatching
// to visitor at every node.
func (t *PatternTree) Walk(visitor Visitor) Status {
	return Walk(t.rootLink, visitor)
}
