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

package road_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patterntrack/roadfinder/event"
	"github.com/patterntrack/roadfinder/road"
	"github.com/patterntrack/roadfinder/tree"
)

func TestRoad_FirstMatchSeedsCommonSet_WhenItCoversEnoughPlanes(t *testing.T) {
	r := road.NewRoad(3, 1)
	h1 := &event.Hit{PlaneIndex: 0}
	h2 := &event.Hit{PlaneIndex: 1}
	m := &event.Match{Node: &tree.NodeDescriptor{Depth: 2}, Hits: event.NewHitSet(h1, h2)}

	ok := r.Add(m)

	assert.True(t, ok)
	assert.Equal(t, 1, r.Len())
	assert.True(t, r.CommonHits().Equal(event.NewHitSet(h1, h2)))
}

func TestRoad_RejectsFirstMatchBelowCoverageFloor(t *testing.T) {
	r := road.NewRoad(3, 1)
	h1 := &event.Hit{PlaneIndex: 0}

	m := &event.Match{Node: &tree.NodeDescriptor{Depth: 1}, Hits: event.NewHitSet(h1)}
	ok := r.Add(m)

	assert.False(t, ok, "a seed covering only one of three planes is one short of the nPlanes-maxMissing=2 floor")
	assert.Equal(t, 0, r.Len())
}

func TestRoad_RejectsCandidateBelowCoverageFloor(t *testing.T) {
	r := road.NewRoad(3, 1)
	h1 := &event.Hit{PlaneIndex: 0}
	h2 := &event.Hit{PlaneIndex: 1}
	h3 := &event.Hit{PlaneIndex: 2}

	first := &event.Match{Node: &tree.NodeDescriptor{Depth: 2}, Hits: event.NewHitSet(h1, h2)}
	require.True(t, r.Add(first))

	// Shares only h2 with the road's common set: common would narrow to
	// {h2}, covering a single plane, which is one plane short of the
	// nPlanes-maxMissing=2 floor.
	second := &event.Match{Node: &tree.NodeDescriptor{Depth: 1}, Hits: event.NewHitSet(h2, h3)}
	ok := r.Add(second)

	assert.False(t, ok)
	assert.Equal(t, 1, r.Len(), "a rejected candidate must not be absorbed")
	assert.True(t, r.CommonHits().Equal(event.NewHitSet(h1, h2)), "rejection must leave the common set untouched")
}

func TestRoad_AcceptsCandidateAtCoverageFloor(t *testing.T) {
	r := road.NewRoad(3, 1)
	h1 := &event.Hit{PlaneIndex: 0}
	h2 := &event.Hit{PlaneIndex: 1}
	h4 := &event.Hit{PlaneIndex: 2}

	first := &event.Match{Node: &tree.NodeDescriptor{Depth: 2}, Hits: event.NewHitSet(h1, h2)}
	require.True(t, r.Add(first))

	second := &event.Match{Node: &tree.NodeDescriptor{Depth: 1}, Hits: event.NewHitSet(h1, h2, h4)}
	ok := r.Add(second)

	assert.True(t, ok)
	assert.Equal(t, 2, r.Len())
	assert.True(t, r.CommonHits().Equal(event.NewHitSet(h1, h2)))
	assert.True(t, r.AllHits().Equal(event.NewHitSet(h1, h2, h4)))
}

func TestRoad_Finish_SingleMatchIsFullyConsumed(t *testing.T) {
	r := road.NewRoad(1, 0)
	m := &event.Match{Node: &tree.NodeDescriptor{Depth: 1}, Hits: event.NewHitSet(&event.Hit{PlaneIndex: 0})}
	require.True(t, r.Add(m))

	r.Finish()

	assert.Equal(t, event.FullyConsumed, m.Used, "a match's hits always equal a single-match road's common set, so it is fully consumed")
}

func TestRoad_Finish_ConsumptionFollowsCommonSetMembershipNotRoadSize(t *testing.T) {
	r := road.NewRoad(3, 1)
	h1 := &event.Hit{PlaneIndex: 0}
	h2 := &event.Hit{PlaneIndex: 1}
	h3 := &event.Hit{PlaneIndex: 2}

	m1 := &event.Match{Node: &tree.NodeDescriptor{Depth: 1}, Hits: event.NewHitSet(h1, h2, h3)}
	require.True(t, r.Add(m1))

	// Narrows the road's common set to {h1,h2}, dropping h3 out of it.
	m2 := &event.Match{Node: &tree.NodeDescriptor{Depth: 2}, Hits: event.NewHitSet(h1, h2)}
	require.True(t, r.Add(m2))

	r.Finish()

	assert.Equal(t, event.PartiallyConsumed, m1.Used, "m1's hit h3 fell out of the final common set, so m1 is only partially consumed")
	assert.Equal(t, event.FullyConsumed, m2.Used, "m2's hits are a subset of the final common set")
}

func TestRoad_Finish_NeverDowngrades(t *testing.T) {
	h1 := &event.Hit{PlaneIndex: 0}
	h2 := &event.Hit{PlaneIndex: 1}
	m := &event.Match{Node: &tree.NodeDescriptor{Depth: 1}, Hits: event.NewHitSet(h1, h2)}

	full := road.NewRoad(2, 1)
	require.True(t, full.Add(m))
	full.Finish()
	require.Equal(t, event.FullyConsumed, m.Used)

	// A second road narrows its common set past one of m's hits, which in
	// isolation would only partially consume m.
	partial := road.NewRoad(2, 1)
	require.True(t, partial.Add(m))
	narrower := &event.Match{Node: &tree.NodeDescriptor{Depth: 2}, Hits: event.NewHitSet(h1)}
	require.True(t, partial.Add(narrower))
	partial.Finish()

	assert.Equal(t, event.FullyConsumed, m.Used, "a later road must never downgrade a match's consumption state")
}

func TestRoad_Finish_IsIdempotent(t *testing.T) {
	r := road.NewRoad(1, 0)
	m := &event.Match{Node: &tree.NodeDescriptor{Depth: 1}, Hits: event.NewHitSet(&event.Hit{PlaneIndex: 0})}
	require.True(t, r.Add(m))

	r.Finish()
	r.Finish()

	assert.Equal(t, event.FullyConsumed, m.Used)
}

func TestRoad_Add_RejectsAfterFinish(t *testing.T) {
	r := road.NewRoad(1, 0)
	m1 := &event.Match{Node: &tree.NodeDescriptor{Depth: 1}, Hits: event.NewHitSet(&event.Hit{PlaneIndex: 0})}
	require.True(t, r.Add(m1))
	r.Finish()

	m2 := &event.Match{Node: &tree.NodeDescriptor{Depth: 1}, Hits: event.NewHitSet(&event.Hit{PlaneIndex: 0})}
	assert.False(t, r.Add(m2))
}
