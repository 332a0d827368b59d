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

package event

import (
	"sync"

	"github.com/gammazero/deque"
)

// Queue is a concurrency-safe FIFO of pending events (each a slice of
// hits), shared by a pool of worker goroutines that each pop their next
// event to process as soon as they are free, rather than being handed a
// fixed pre-split share of the input up front.
type Queue struct {
	mutex *sync.Mutex
	deque *deque.Deque
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	return &Queue{
		mutex: &sync.Mutex{},
		deque: deque.New(64),
	}
}

// Len returns the number of events still queued.
func (q *Queue) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.deque.Len()
}

// Push appends an event to the back of the queue.
func (q *Queue) Push(hits []*Hit) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.deque.PushBack(hits)
}

// Pop removes and returns the event at the front of the queue, and false if
// the queue was empty.
func (q *Queue) Pop() ([]*Hit, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.deque.Len() == 0 {
		return nil, false
	}
	return q.deque.PopFront().([]*Hit), true
}
