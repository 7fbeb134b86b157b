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
	"sync"
	"testing"
	"time"
)

// recordingSink is a Sink test double that retains every replayed record.
// An optional gate channel blocks replay until closed.
type recordingSink struct {
	mu      sync.Mutex
	records []*Record
	kvs     []*Context
	gate    <-chan struct{}
}

func (s *recordingSink) Log(r *Record, kv *Context) error {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
	s.kvs = append(s.kvs, kv)
	return nil
}

func (s *recordingSink) snapshot() []*Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Record, len(s.records))
	copy(out, s.records)
	return out
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *recordingSink) snapshotContexts() []*Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Context, len(s.kvs))
	copy(out, s.kvs)
	return out
}

// messages extracts the record messages in replay order.
func (s *recordingSink) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.records))
	for i, r := range s.records {
		out[i] = r.Message
	}
	return out
}

var _ Sink = (*Async)(nil) // Async must itself be stackable as a Sink

func TestAsyncDeliversInOrder(t *testing.T) {
	sink := &recordingSink{}
	a := NewAsync(sink)

	const n = 100
	for i := range n {
		rec := &Record{Level: LevelInfo, Message: fmt.Sprintf("msg-%03d", i)}
		if err := a.Log(rec, nil); err != nil {
			t.Fatalf("Log(%d) failed: %v", i, err)
		}
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	msgs := sink.messages()
	if len(msgs) != n {
		t.Fatalf("sink saw %d records, want %d", len(msgs), n)
	}
	for i, msg := range msgs {
		if want := fmt.Sprintf("msg-%03d", i); msg != want {
			t.Fatalf("record %d = %q, want %q", i, msg, want)
		}
	}
}

func TestAsyncCloseDrainsBacklog(t *testing.T) {
	gate := make(chan struct{})
	sink := &recordingSink{gate: gate}
	a := NewAsync(sink)

	const n = 50
	for i := range n {
		if err := a.Log(&Record{Message: fmt.Sprintf("r%d", i)}, nil); err != nil {
			t.Fatalf("Log(%d) failed: %v", i, err)
		}
	}

	// The sink has not consumed anything yet; Close must block until the
	// whole backlog is replayed.
	close(gate)
	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if got := sink.count(); got != n {
		t.Fatalf("Close returned with %d records replayed, want %d", got, n)
	}
}

func TestAsyncCloseBlocksUntilWorkerFinishes(t *testing.T) {
	gate := make(chan struct{})
	sink := &recordingSink{gate: gate}
	a := NewAsync(sink)

	for range 10 {
		if err := a.Log(&Record{Message: "pending"}, nil); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	closed := make(chan struct{})
	go func() {
		_ = a.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned while the sink was still blocked")
	case <-time.After(50 * time.Millisecond):
	}

	close(gate)
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return after the sink drained")
	}
	if got := sink.count(); got != 10 {
		t.Fatalf("drained %d records, want 10", got)
	}
}

func TestAsyncConcurrentProducersKeepPerGoroutineOrder(t *testing.T) {
	sink := &recordingSink{}
	a := NewAsync(sink)

	// The canonical interleaving scenario: goroutine A logs a1 then a2,
	// goroutine B logs b1 concurrently.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = a.Log(&Record{Message: "a1"}, nil)
		_ = a.Log(&Record{Message: "a2"}, nil)
	}()
	go func() {
		defer wg.Done()
		_ = a.Log(&Record{Message: "b1"}, nil)
	}()
	wg.Wait()
	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	msgs := sink.messages()
	if len(msgs) != 3 {
		t.Fatalf("sink saw %d records, want 3", len(msgs))
	}
	idx := make(map[string]int, 3)
	for i, m := range msgs {
		idx[m] = i
	}
	for _, m := range []string{"a1", "a2", "b1"} {
		if _, ok := idx[m]; !ok {
			t.Fatalf("record %q missing from %v", m, msgs)
		}
	}
	if idx["a1"] > idx["a2"] {
		t.Fatalf("per-goroutine order violated: %v", msgs)
	}
}

func TestAsyncManyProducersLinearize(t *testing.T) {
	sink := &recordingSink{}
	a := NewAsync(sink)

	const producers = 8
	const perProducer = 200

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perProducer {
				rec := &Record{Message: fmt.Sprintf("p%d-%04d", p, i)}
				if err := a.Log(rec, nil); err != nil {
					t.Errorf("Log failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	msgs := sink.messages()
	if len(msgs) != producers*perProducer {
		t.Fatalf("sink saw %d records, want %d", len(msgs), producers*perProducer)
	}
	// Exactly-once delivery and per-producer program order.
	seen := make(map[string]bool, len(msgs))
	next := make([]int, producers)
	for _, m := range msgs {
		if seen[m] {
			t.Fatalf("record %q delivered twice", m)
		}
		seen[m] = true
		var p, i int
		if _, err := fmt.Sscanf(m, "p%d-%d", &p, &i); err != nil {
			t.Fatalf("unexpected record %q: %v", m, err)
		}
		if i != next[p] {
			t.Fatalf("producer %d order violated: got %d, want %d", p, i, next[p])
		}
		next[p]++
	}
}

func TestAsyncLogAfterCloseReturnsErrClosed(t *testing.T) {
	a := NewAsync(Discard)
	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	err := a.Log(&Record{Message: "late"}, nil)
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("Log after Close = %v, want ErrClosed", err)
	}
}

func TestAsyncCloseIsIdempotent(t *testing.T) {
	sink := &recordingSink{}
	a := NewAsync(sink)
	if err := a.Log(&Record{Message: "only"}, nil); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	for range 3 {
		if err := a.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}
	if got := sink.count(); got != 1 {
		t.Fatalf("sink saw %d records, want exactly 1", got)
	}
}

func TestAsyncSenderHandleCachedPerGoroutine(t *testing.T) {
	a := NewAsync(Discard)
	defer a.Close()

	const m = 500
	for range m {
		if err := a.Log(&Record{Message: "x"}, nil); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}
	if got := a.clones.Load(); got != 1 {
		t.Fatalf("canonical handle cloned %d times for one goroutine, want 1", got)
	}

	const producers = 4
	var wg sync.WaitGroup
	for range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				_ = a.Log(&Record{Message: "y"}, nil)
			}
		}()
	}
	wg.Wait()
	// The main goroutine plus each producer clones at most once. LoadOrStore
	// can race two clones for the same goroutine only across distinct
	// goroutines, which does not apply here.
	if got := a.clones.Load(); got != producers+1 {
		t.Fatalf("canonical handle cloned %d times, want %d", got, producers+1)
	}
}

func TestAsyncCaptureErrorAbortsSingleCall(t *testing.T) {
	sink := &recordingSink{}
	a := NewAsync(sink)

	bad := &Record{Message: "bad", Fields: []Field{Any("k", failingMarshaler{})}}
	if err := a.Log(bad, nil); err == nil {
		t.Fatal("Log with failing field succeeded, want capture error")
	}

	if err := a.Log(&Record{Message: "good"}, nil); err != nil {
		t.Fatalf("Log after capture error failed: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	msgs := sink.messages()
	if len(msgs) != 1 || msgs[0] != "good" {
		t.Fatalf("sink saw %v, want only the good record", msgs)
	}
}

func TestAsyncOwnsFieldsAtEnqueue(t *testing.T) {
	sink := &recordingSink{}
	a := NewAsync(sink)

	val := &mutableStringer{s: "before"}
	if err := a.Log(&Record{Message: "m", Fields: []Field{Stringer("k", val)}}, nil); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	// Mutating the source after Log returns must not affect the record.
	val.s = "after"
	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	recs := sink.snapshot()
	if len(recs) != 1 {
		t.Fatalf("sink saw %d records, want 1", len(recs))
	}
	f := recs[0].Fields[0]
	if f.Kind != KindFormatted || f.Text() != "before" {
		t.Fatalf("field = %v kind %v, want captured text %q", f.Value(), f.Kind, "before")
	}
}

func TestAsyncContextSharedByReference(t *testing.T) {
	sink := &recordingSink{}
	a := NewAsync(sink)

	kv := NewContext(String("service", "api"))
	for range 3 {
		if err := a.Log(&Record{Message: "m"}, kv); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.kvs) != 3 {
		t.Fatalf("sink saw %d records, want 3", len(sink.kvs))
	}
	for i, got := range sink.kvs {
		if got != kv {
			t.Fatalf("record %d carries a different Context pointer", i)
		}
	}
}

type mutableStringer struct {
	s string
}

func (m *mutableStringer) String() string { return m.s }

type failingMarshaler struct{}

func (failingMarshaler) MarshalText() ([]byte, error) {
	return nil, errors.New("refusing to marshal")
}
