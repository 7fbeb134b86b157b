// Copyright 2025 Patrick J. Scruggs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logdrain

import "sync"

// message is the unit carried by the dispatch queue: either one owned record
// plus its contextual field list, or the shutdown marker.
type message struct {
	rec      *Record
	kv       *Context
	shutdown bool
}

// queue is the unbounded FIFO channel between producers and the worker. Go
// channels are always bounded, so the unbounded contract is implemented as a
// mutex-guarded slice with a condition variable for the single consumer.
//
// push appends under a short critical section and never waits for the
// consumer; pop blocks until a message is available. Once closed, push fails
// and pop returns nothing further: close models the receiving end being torn
// down, discarding whatever is still buffered (only messages enqueued after
// the shutdown marker can be affected, because the worker consumes
// everything ahead of the marker before closing).
type queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []message
	head   int
	closed bool
}

func newQueue() *queue {
	q := &queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push enqueues m, reporting ErrClosed when the receiving end is gone. The
// append is atomic with respect to other producers: one complete enqueue
// always wholly precedes or follows another.
func (q *queue) push(m message) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.items = append(q.items, m)
	q.mu.Unlock()
	q.cond.Signal()
	return nil
}

// pop blocks until a message is available and returns it. The second result
// is false once the queue has been closed.
func (q *queue) pop() (message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.head == len(q.items) {
		if q.closed {
			return message{}, false
		}
		q.cond.Wait()
	}
	m := q.items[q.head]
	// Zero the slot so the consumed record is collectable while the rest
	// of the batch drains.
	q.items[q.head] = message{}
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return m, true
}

// close tears down the receiving end: subsequent push calls fail and any
// buffered messages are discarded.
func (q *queue) close() {
	q.mu.Lock()
	q.closed = true
	q.items = nil
	q.head = 0
	q.mu.Unlock()
	q.cond.Broadcast()
}

// buffered reports the number of undelivered messages.
func (q *queue) buffered() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}
