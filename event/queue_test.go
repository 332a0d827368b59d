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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patterntrack/roadfinder/event"
)

func TestQueue_PushPopFIFO(t *testing.T) {
	q := event.NewQueue()
	assert.Equal(t, 0, q.Len())

	first := []*event.Hit{{WireNumber: 1}}
	second := []*event.Hit{{WireNumber: 2}}

	q.Push(first)
	q.Push(second)
	assert.Equal(t, 2, q.Len())

	got, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, first, got)

	got, ok = q.Pop()
	require.True(t, ok)
	assert.Equal(t, second, got)

	_, ok = q.Pop()
	assert.False(t, ok)
}

func TestQueue_PushFromGoroutineThenPopAll(t *testing.T) {
	q := event.NewQueue()
	const n = 200

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			q.Push([]*event.Hit{{WireNumber: i}})
		}
	}()
	wg.Wait()

	seen := 0
	for {
		_, ok := q.Pop()
		if !ok {
			break
		}
		seen++
	}
	assert.Equal(t, n, seen)
}
