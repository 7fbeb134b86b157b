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
	"bytes"
	"io"
	"sync"
	"time"

	"github.com/go-logfmt/logfmt"
)

// WriterSink renders records as logfmt lines to an io.Writer. It satisfies
// the infallible [Sink] contract: write and encoding errors are reported to
// the optional error callback instead of being returned, so WriterSink is
// safe to wrap with [Async] directly.
//
// The output destination can be swapped atomically with SetOutput, which
// cooperates with external log rotation without rebuilding the sink. Each
// record is encoded into a private buffer and written with a single Write
// call, so lines are never interleaved even when the writer is shared.
//
// Timestamps are taken when the record is written. Behind [Async] that is
// the replay time on the worker goroutine, not the time of the originating
// call.
type WriterSink struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time

	onError func(error)
}

// WriterSinkOption customizes a WriterSink.
type WriterSinkOption func(*WriterSink)

// WithWriteErrorHandler registers fn to observe write and encoding errors.
// By default such errors are dropped.
func WithWriteErrorHandler(fn func(error)) WriterSinkOption {
	return func(s *WriterSink) { s.onError = fn }
}

// withClock injects a clock for tests.
func withClock(now func() time.Time) WriterSinkOption {
	return func(s *WriterSink) { s.now = now }
}

// NewWriterSink returns a WriterSink writing to w. A nil w discards output.
func NewWriterSink(w io.Writer, opts ...WriterSinkOption) *WriterSink {
	if w == nil {
		w = io.Discard
	}
	s := &WriterSink{w: w, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// SetOutput atomically replaces the destination writer. The previous writer
// is not closed; its lifecycle belongs to the caller. A nil w discards
// subsequent output.
func (s *WriterSink) SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	s.mu.Lock()
	s.w = w
	s.mu.Unlock()
}

// Log encodes one record as a logfmt line. It always returns nil.
func (s *WriterSink) Log(r *Record, kv *Context) error {
	var buf bytes.Buffer
	enc := logfmt.NewEncoder(&buf)

	s.keyval(enc, "ts", s.now().Format(time.RFC3339Nano))
	s.keyval(enc, "level", r.Level.String())
	s.keyval(enc, "msg", r.Message)
	if target := r.Target; target != "" {
		s.keyval(enc, "target", target)
	} else if r.Source != nil && r.Source.Module != "" {
		s.keyval(enc, "target", r.Source.Module)
	}
	for _, f := range r.Fields {
		s.keyval(enc, f.Key, encodableValue(f))
	}
	kv.Visit(func(f Field) {
		s.keyval(enc, f.Key, encodableValue(f))
	})
	if err := enc.EndRecord(); err != nil {
		s.report(err)
		return nil
	}

	s.mu.Lock()
	_, err := s.w.Write(buf.Bytes())
	s.mu.Unlock()
	if err != nil {
		s.report(err)
	}
	return nil
}

// keyval encodes one pair, funneling encoder errors to the error callback.
func (s *WriterSink) keyval(enc *logfmt.Encoder, key string, value any) {
	if err := enc.EncodeKeyval(key, value); err != nil {
		s.report(err)
	}
}

// report forwards an error to the configured callback, if any.
func (s *WriterSink) report(err error) {
	if s.onError != nil && err != nil {
		s.onError(err)
	}
}

// encodableValue maps a field value onto types the logfmt encoder accepts.
// Deferred kinds are rendered here so the sink also works without an [Async]
// in front of it; behind Async the fields arrive already captured and this
// is a no-op.
func encodableValue(f Field) any {
	if cf, err := captureField(f); err == nil {
		f = cf
	} else {
		return "!ERROR:" + err.Error()
	}
	switch f.Kind {
	case KindUnit:
		return ""
	case KindNone:
		return nil
	case KindChar:
		return string(rune(uint32(f.num)))
	case KindTime:
		return f.t.Format(time.RFC3339Nano)
	case KindDuration:
		return time.Duration(f.num).String()
	default:
		return f.Value()
	}
}
