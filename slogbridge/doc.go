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

// Package slogbridge adapts a logdrain [logdrain.Sink] into a standard
// [log/slog.Handler], so applications built on log/slog can route their
// records through the asynchronous dispatch adapter:
//
//	async := logdrain.NewAsync(logdrain.NewWriterSink(os.Stdout))
//	defer async.Close()
//
//	logger := slog.New(slogbridge.New(async))
//	logger.Info("ready", slog.Int("port", 8080))
//
// Attributes added with Logger.With map onto the sink's shared contextual
// field list, and per-call attributes become per-record fields, preserving
// slog group prefixes as dotted keys. The record's program counter resolves
// to logdrain source metadata. An slog.Record's timestamp is dropped: behind
// an [logdrain.Async] the wrapped sink stamps records at replay time.
package slogbridge
