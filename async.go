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

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrClosed reports an enqueue attempted after the dispatch channel's
// receiving end was torn down. Under normal use this cannot happen while the
// Async is still reachable, but defensive callers should treat it as
// terminal: the adapter is shutting down or its worker has aborted.
var ErrClosed = errors.New("logdrain: dispatch channel closed")

// Async dispatches records to a wrapped [Sink] from a single background
// worker goroutine. Calling Log captures the event into a fully owned record
// and enqueues it; the worker replays records into the sink strictly in
// enqueue order. Log never waits for the sink: the queue is unbounded, so a
// slow sink grows memory rather than blocking producers.
//
// Close sends a shutdown marker and then blocks until the worker has
// replayed every record enqueued before the close began. Callers must invoke
// Close; an Async that is garbage collected without it simply strands its
// worker along with any undelivered records.
//
// Async is itself a Sink, so adapters can be stacked in front of it.
type Async struct {
	sink Sink
	q    *queue

	// refSender is the canonical send handle, guarded by senderMu. Each
	// producer goroutine clones it once into senders on first use and
	// reuses the clone for the rest of its lifetime, so the lock is taken
	// at most once per goroutine.
	senderMu  sync.Mutex
	refSender *sender
	senders   sync.Map // goroutine id -> *sender
	clones    atomic.Int64

	done      chan struct{}
	closeOnce sync.Once

	errWriter io.Writer
}

// sender is a cloneable capability to enqueue messages.
type sender struct {
	q *queue
}

func (s *sender) send(m message) error { return s.q.push(m) }

func (s *sender) clone() *sender { return &sender{q: s.q} }

// AsyncOption customizes an Async adapter.
type AsyncOption func(*Async)

// WithErrorWriter directs the adapter's own fault reports (sink contract
// violations observed by the worker) to w before the worker aborts. The
// default is os.Stderr; nil silences reporting.
func WithErrorWriter(w io.Writer) AsyncOption {
	return func(a *Async) { a.errWriter = w }
}

// NewAsync returns an Async dispatching into sink and starts its worker
// goroutine. It does not wait for the worker to begin polling; the queue
// buffers anything sent in the meantime. NewAsync panics if sink is nil.
func NewAsync(sink Sink, opts ...AsyncOption) *Async {
	if sink == nil {
		panic("logdrain: NewAsync called with nil sink")
	}
	a := &Async{
		sink:      sink,
		q:         newQueue(),
		done:      make(chan struct{}),
		errWriter: os.Stderr,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	a.refSender = &sender{q: a.q}
	go a.worker()
	return a
}

// Log captures r into an owned record and enqueues it for the worker. It
// returns once the record is queued, without waiting for replay.
//
// A field that fails to render aborts this one call with the capture error.
// After shutdown has begun, Log fails with [ErrClosed].
func (a *Async) Log(r *Record, kv *Context) error {
	fields, err := captureFields(r.Fields)
	if err != nil {
		return fmt.Errorf("logdrain: capture fields: %w", err)
	}
	owned := &Record{
		Level:   r.Level,
		Message: r.Message,
		Source:  r.Source, // interned, shared by reference
		Target:  r.Target,
		Fields:  fields,
	}
	return a.cachedSender().send(message{rec: owned, kv: kv})
}

// Close sends the shutdown marker and blocks until the worker goroutine has
// exited, guaranteeing every previously enqueued record has been replayed
// into the wrapped sink. It is idempotent; only the first call waits. The
// send is best-effort: if the channel is already gone (the worker aborted),
// Close still joins the worker and returns.
//
// Close stalls for as long as the sink needs to drain the backlog. Callers
// sensitive to that delay should close from a non-latency-critical
// goroutine.
func (a *Async) Close() error {
	a.closeOnce.Do(func() {
		_ = a.cachedSender().send(message{shutdown: true})
		<-a.done
		a.senders.Clear()
	})
	return nil
}

// worker is the single consumer. It replays records into the wrapped sink
// in delivery order and exits on the shutdown marker, closing the queue so
// later sends fail fast.
func (a *Async) worker() {
	defer close(a.done)
	defer a.q.close()
	for {
		m, ok := a.q.pop()
		if !ok || m.shutdown {
			return
		}
		if err := a.sink.Log(m.rec, m.kv); err != nil {
			// The sink broke its infallible contract. Aborting is
			// deliberate: continuing would silently lose a record
			// that was already dequeued.
			a.reportf("logdrain: sink failed during replay: %v\n", err)
			panic(fmt.Sprintf("logdrain: sink violated infallible contract: %v", err))
		}
	}
}

// cachedSender returns this goroutine's send handle, cloning the canonical
// handle under senderMu on first use. Cached handles are retained until
// Close, so a very large number of short-lived producer goroutines trades
// map growth for lock avoidance.
func (a *Async) cachedSender() *sender {
	id := goroutineID()
	if cached, ok := a.senders.Load(id); ok {
		return cached.(*sender)
	}

	a.senderMu.Lock()
	s := a.refSender.clone()
	a.senderMu.Unlock()
	a.clones.Add(1)

	actual, _ := a.senders.LoadOrStore(id, s)
	return actual.(*sender)
}

// reportf writes an adapter fault report to the configured error writer.
func (a *Async) reportf(format string, args ...any) {
	if a.errWriter == nil {
		return
	}
	_, _ = fmt.Fprintf(a.errWriter, format, args...)
}

// goroutineID extracts the current goroutine's id from its stack header.
// Go offers no goroutine-local storage, so the per-goroutine handle cache is
// keyed on this identity instead, as a concurrent map.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// The header is "goroutine 123 [running]:".
	const prefix = len("goroutine ")
	var id uint64
	for _, c := range buf[prefix:n] {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + uint64(c-'0')
	}
	return id
}
