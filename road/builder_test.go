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

func TestBuilder_Build_CoarserMatchJoinsFinestAnchor(t *testing.T) {
	hA := &event.Hit{PlaneIndex: 0}
	hB := &event.Hit{PlaneIndex: 1}

	fine := &event.Match{Node: &tree.NodeDescriptor{Depth: 2}, Hits: event.NewHitSet(hA, hB)}
	coarse := &event.Match{Node: &tree.NodeDescriptor{Depth: 1}, Hits: event.NewHitSet(hA, hB)}

	b := road.NewBuilder(2, 0)
	roads := b.Build([]*event.Match{coarse, fine})

	require.Len(t, roads, 1, "two fully-overlapping matches must merge into a single road")
	assert.Equal(t, 2, roads[0].Len())
	assert.Equal(t, event.FullyConsumed, fine.Used)
	assert.Equal(t, event.FullyConsumed, coarse.Used)
}

func TestBuilder_Build_IncompatibleMatchesSeedSeparateRoads(t *testing.T) {
	hA := &event.Hit{PlaneIndex: 0}
	hB := &event.Hit{PlaneIndex: 1}
	hC := &event.Hit{PlaneIndex: 0}
	hD := &event.Hit{PlaneIndex: 1}

	anchor := &event.Match{Node: &tree.NodeDescriptor{Depth: 2}, Hits: event.NewHitSet(hA, hB)}
	disjoint := &event.Match{Node: &tree.NodeDescriptor{Depth: 1}, Hits: event.NewHitSet(hC, hD)}

	b := road.NewBuilder(2, 0)
	roads := b.Build([]*event.Match{anchor, disjoint})

	require.Len(t, roads, 2, "matches sharing no hits must not be forced into the same road")
	for _, r := range roads {
		assert.Equal(t, 1, r.Len())
	}
	// Each seeds its own road alone, so its hits trivially equal that
	// road's common set.
	assert.Equal(t, event.FullyConsumed, anchor.Used)
	assert.Equal(t, event.FullyConsumed, disjoint.Used)
}

func TestBuilder_Build_SkipsFullyConsumedMatches(t *testing.T) {
	already := &event.Match{
		Node: &tree.NodeDescriptor{Depth: 3},
		Hits: event.NewHitSet(&event.Hit{PlaneIndex: 0}),
		Used: event.FullyConsumed,
	}
	fresh := &event.Match{Node: &tree.NodeDescriptor{Depth: 1}, Hits: event.NewHitSet(&event.Hit{PlaneIndex: 0})}

	b := road.NewBuilder(1, 0)
	roads := b.Build([]*event.Match{already, fresh})

	require.Len(t, roads, 1, "a pre-consumed match must not seed or join any road")
	assert.Len(t, roads[0].Matches(), 1)
	assert.Same(t, fresh, roads[0].Matches()[0])
}

func TestBuilder_Build_TriesEveryExistingRoadBeforeSeedingANewOne(t *testing.T) {
	hA := &event.Hit{PlaneIndex: 0}
	hB := &event.Hit{PlaneIndex: 1}
	hC := &event.Hit{PlaneIndex: 0}
	hD := &event.Hit{PlaneIndex: 1}

	roadOneAnchor := &event.Match{Node: &tree.NodeDescriptor{Depth: 2}, Hits: event.NewHitSet(hA, hB)}
	roadTwoAnchor := &event.Match{Node: &tree.NodeDescriptor{Depth: 2}, Hits: event.NewHitSet(hC, hD)}
	// Compatible only with roadTwoAnchor's hits; Build must not stop at the
	// first (incompatible) road and must fall through to the second.
	joiner := &event.Match{Node: &tree.NodeDescriptor{Depth: 1}, Hits: event.NewHitSet(hC, hD)}

	b := road.NewBuilder(2, 0)
	roads := b.Build([]*event.Match{roadOneAnchor, roadTwoAnchor, joiner})

	require.Len(t, roads, 2)
	lengths := []int{roads[0].Len(), roads[1].Len()}
	assert.ElementsMatch(t, []int{1, 2}, lengths)
}

func TestBuilder_Build_EmptyInput(t *testing.T) {
	b := road.NewBuilder(2, 0)
	roads := b.Build(nil)
	assert.Empty(t, roads)
}
