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

package store_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patterntrack/roadfinder/pattern"
	"github.com/patterntrack/roadfinder/store"
	"github.com/patterntrack/roadfinder/tree"
)

func testParams() pattern.Params {
	return pattern.Params{MaxDepth: 1, Width: 1, ZPos: []float64{0, 1}, MaxSlope: 100}
}

func buildTestTree() *tree.PatternTree {
	root := pattern.New([]int32{0, 0})
	child := pattern.New([]int32{0, 1})
	root.AddLink(child, pattern.LinkPlain)
	return tree.New(root, testParams(), 2)
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewStore(zerolog.Nop(), store.WithStoragePath(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestKey_IsDeterministic(t *testing.T) {
	k1, err := store.Key(testParams())
	require.NoError(t, err)
	k2, err := store.Key(testParams())
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
}

func TestKey_DiffersOnParams(t *testing.T) {
	k1, err := store.Key(testParams())
	require.NoError(t, err)

	other := testParams()
	other.MaxSlope = 5
	k2, err := store.Key(other)
	require.NoError(t, err)

	assert.NotEqual(t, k1, k2)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	pt := buildTestTree()

	key, err := s.SaveTree(pt)
	require.NoError(t, err)

	loaded, err := s.LoadTree(key)
	require.NoError(t, err)

	assert.Equal(t, pt.PatternCount(), loaded.PatternCount())
	assert.Equal(t, pt.Params(), loaded.Params())

	var gotBits [][]int32
	status := loaded.Walk(visitorFunc(func(nd *tree.NodeDescriptor) tree.VisitResult {
		gotBits = append(gotBits, nd.Link.Child.Bits())
		return tree.Recurse
	}))
	require.Equal(t, tree.StatusDone, status)
	assert.Equal(t, [][]int32{{0, 0}, {0, 1}}, gotBits)
}

func TestStore_LoadTree_UnknownKeyErrors(t *testing.T) {
	s := newTestStore(t)
	_, err := s.LoadTree("0000000000000000")
	assert.Error(t, err)
}

func TestStore_SaveTree_PrimesCacheForImmediateLoad(t *testing.T) {
	s := newTestStore(t)
	pt := buildTestTree()

	key, err := s.SaveTree(pt)
	require.NoError(t, err)

	loaded, err := s.LoadTree(key)
	require.NoError(t, err)

	// The cached entry is the exact same *tree.PatternTree SaveTree was
	// given, not a deserialized copy, since LoadTree hits the decode cache
	// before ever touching badger.
	assert.Same(t, pt, loaded)
}

// visitorFunc adapts a plain function to the tree.Visitor interface.
type visitorFunc func(*tree.NodeDescriptor) tree.VisitResult

func (f visitorFunc) Visit(nd *tree.NodeDescriptor) tree.VisitResult {
	return f(nd)
}
