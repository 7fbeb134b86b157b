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

// Sink is the final consumer of log records.
//
// A Sink wrapped by [Async] is contractually infallible: Log must handle its
// own error conditions and return nil. The error return exists because
// replay surfaces (encoders, bridges) can fail for reasons outside the
// sink's control; the Async worker treats a non-nil error as a broken
// contract and aborts rather than silently dropping a dequeued record.
//
// A Sink wrapped by [Async] must also be safe to invoke from the worker
// goroutine; Async guarantees Log is never called concurrently with itself.
type Sink interface {
	// Log consumes one record together with the contextual fields of the
	// logger that emitted it. kv may be nil.
	Log(r *Record, kv *Context) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(r *Record, kv *Context) error

// Log calls f.
func (f SinkFunc) Log(r *Record, kv *Context) error { return f(r, kv) }

// Discard is a Sink that drops every record.
var Discard Sink = SinkFunc(func(*Record, *Context) error { return nil })
