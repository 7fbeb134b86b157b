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
	"context"

	"go.opentelemetry.io/otel/trace"
)

// Field keys used for trace correlation attributes.
const (
	// TraceIDKey carries the 32-char lowercase hex trace id.
	TraceIDKey = "trace_id"
	// SpanIDKey carries the 16-char lowercase hex span id.
	SpanIDKey = "span_id"
	// TraceSampledKey carries the sampling decision.
	TraceSampledKey = "trace_sampled"
)

// TraceFields snapshots the OpenTelemetry span context in ctx into owned
// fields. It returns nil when ctx carries no valid span context.
//
// The snapshot must happen on the producer goroutine: a context.Context is
// scoped to the calling request and is never handed across the dispatch
// queue, so trace identity is captured into the record instead.
func TraceFields(ctx context.Context) []Field {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []Field{
		String(TraceIDKey, sc.TraceID().String()),
		String(SpanIDKey, sc.SpanID().String()),
		Bool(TraceSampledKey, sc.IsSampled()),
	}
}
