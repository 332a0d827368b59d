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

package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/patterntrack/roadfinder/event"
)

func TestHit_Less(t *testing.T) {
	a := &event.Hit{PlaneType: 0, PlaneIndex: 0, WireNumber: 5, DriftTime: 1}
	b := &event.Hit{PlaneType: 0, PlaneIndex: 0, WireNumber: 5, DriftTime: 2}
	c := &event.Hit{PlaneType: 0, PlaneIndex: 1, WireNumber: 0, DriftTime: 0}

	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.True(t, b.Less(c), "plane index outranks wire number and drift time")
	assert.False(t, a.Less(a))
}

func TestWireDistLess_TreatsNearbyWiresAsEqual(t *testing.T) {
	a := &event.Hit{PlaneType: 0, PlaneIndex: 0, WireNumber: 10}
	near := &event.Hit{PlaneType: 0, PlaneIndex: 0, WireNumber: 11}
	far := &event.Hit{PlaneType: 0, PlaneIndex: 0, WireNumber: 20}

	assert.False(t, event.WireDistLess(a, near, 1), "wires within maxDist compare equal, not less")
	assert.False(t, event.WireDistLess(near, a, 1))
	assert.True(t, event.WireDistLess(a, far, 1))
	assert.False(t, event.WireDistLess(far, a, 1))
}

func TestWireDistLess_DifferentPlaneAlwaysOrders(t *testing.T) {
	a := &event.Hit{PlaneType: 0, PlaneIndex: 0, WireNumber: 100}
	b := &event.Hit{PlaneType: 0, PlaneIndex: 1, WireNumber: 0}

	assert.True(t, event.WireDistLess(a, b, 1000))
	assert.False(t, event.WireDistLess(b, a, 1000))
}
