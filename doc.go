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

// Package logdrain decouples the goroutine that produces a structured log
// event from the goroutine that formats and writes it. Its centerpiece is
// [Async], an adapter that wraps any [Sink], captures each log event into a
// fully owned [Record], and hands it to a single background worker goroutine
// over an unbounded FIFO queue. Producers therefore never block on the I/O
// performed by the wrapped sink.
//
// The package is self-contained: it defines its own [Level], [Field],
// [Record], [Context], and [Sink] types rather than building on another
// logging façade, so the dispatch mechanism carries no policy about
// formatting or destinations. Bridges to the wider ecosystem live in
// subpackages:
//
//   - [github.com/pjscruggs/logdrain/slogbridge] adapts a [Sink] into a
//     standard [log/slog.Handler].
//   - [github.com/pjscruggs/logdrain/http] provides net/http middleware that
//     emits one request-summary record per request.
//   - [github.com/pjscruggs/logdrain/grpc] provides unary client and server
//     interceptors with optional payload size capture.
//
// # Quick Start
//
//	sink := logdrain.NewWriterSink(os.Stdout)
//	async := logdrain.NewAsync(sink)
//	defer async.Close() // drains the queue, then joins the worker
//
//	logger := logdrain.NewLogger(async)
//	logger.Info("application started", logdrain.String("version", "1.2.3"))
//
// # Ordering and Shutdown
//
// Records reach the wrapped sink in the exact order their enqueue steps
// completed, across all producer goroutines. [Async.Close] sends a shutdown
// marker and then blocks until the worker has replayed every record enqueued
// before the close began; no record is dropped and none is duplicated. The
// queue is unbounded, so a sink that cannot keep up costs memory rather than
// producer latency.
//
// The wrapped sink is contractually infallible: [Sink.Log] must return nil.
// A non-nil error observed by the worker is a contract violation and aborts
// the worker with a panic rather than silently losing an already-dequeued
// event.
package logdrain
