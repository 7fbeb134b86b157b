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
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestLoggerLevelFiltering(t *testing.T) {
	sink := &recordingSink{}
	l := NewLogger(sink, WithMinLevel(LevelWarn))

	if l.Enabled(LevelInfo) {
		t.Fatal("Enabled(Info) = true under a Warn threshold")
	}
	if !l.Enabled(LevelError) {
		t.Fatal("Enabled(Error) = false under a Warn threshold")
	}

	if err := l.Info("dropped"); err != nil {
		t.Fatalf("filtered Info returned %v", err)
	}
	if err := l.Warn("kept"); err != nil {
		t.Fatalf("Warn failed: %v", err)
	}
	if err := l.Error("kept too"); err != nil {
		t.Fatalf("Error failed: %v", err)
	}

	got := sink.messages()
	if len(got) != 2 || got[0] != "kept" || got[1] != "kept too" {
		t.Fatalf("delivered messages = %v", got)
	}
}

func TestLoggerDynamicLevel(t *testing.T) {
	sink := &recordingSink{}
	var lv slog.LevelVar
	lv.Set(slog.LevelError)
	l := NewLogger(sink, WithMinLevel(&lv))

	l.Info("dropped")
	lv.Set(slog.LevelDebug)
	l.Info("kept")

	got := sink.messages()
	if len(got) != 1 || got[0] != "kept" {
		t.Fatalf("delivered messages = %v", got)
	}
}

func TestLoggerWithSharesContextByReference(t *testing.T) {
	sink := &recordingSink{}
	parent := NewLogger(sink)
	child := parent.With(String("request", "r-1"))

	child.Info("first")
	child.Info("second")

	kvs := sink.snapshotContexts()
	if len(kvs) != 2 {
		t.Fatalf("got %d records", len(kvs))
	}
	if kvs[0] != kvs[1] {
		t.Fatal("records from one logger should share the same *Context")
	}
	if kvs[0].Len() != 1 {
		t.Fatalf("context length = %d, want 1", kvs[0].Len())
	}
}

func TestLoggerWithDoesNotAffectParent(t *testing.T) {
	sink := &recordingSink{}
	parent := NewLogger(sink)
	_ = parent.With(String("child", "only"))

	parent.Info("from parent")
	kvs := sink.snapshotContexts()
	if len(kvs) != 1 || kvs[0].Len() != 0 {
		t.Fatal("deriving a child changed the parent's context")
	}
}

func TestLoggerTargetFallsBackToModule(t *testing.T) {
	sink := &recordingSink{}
	l := NewLogger(sink)
	l.Info("m")

	recs := sink.snapshot()
	if len(recs) != 1 {
		t.Fatalf("got %d records", len(recs))
	}
	r := recs[0]
	if r.Source == nil {
		t.Fatal("source capture is on by default; Source is nil")
	}
	if r.Target != r.Source.Module {
		t.Fatalf("target = %q, want the caller's package %q", r.Target, r.Source.Module)
	}
	if !strings.HasSuffix(r.Source.File, "logger_test.go") {
		t.Fatalf("source file = %q", r.Source.File)
	}
	if !strings.Contains(r.Source.Function, "TestLoggerTargetFallsBackToModule") {
		t.Fatalf("source function = %q", r.Source.Function)
	}
}

func TestLoggerExplicitTarget(t *testing.T) {
	sink := &recordingSink{}
	l := NewLogger(sink, WithTarget("billing"))
	l.Info("m")

	recs := sink.snapshot()
	if recs[0].Target != "billing" {
		t.Fatalf("target = %q, want billing", recs[0].Target)
	}
}

func TestLoggerSourceCaptureDisabled(t *testing.T) {
	sink := &recordingSink{}
	l := NewLogger(sink, WithSourceCapture(false))
	l.Info("m")

	if recs := sink.snapshot(); recs[0].Source != nil {
		t.Fatalf("Source = %+v, want nil when capture is off", recs[0].Source)
	}
}

func TestLoggerEnvOverlay(t *testing.T) {
	t.Setenv("LOGDRAIN_LEVEL", "error")
	t.Setenv("LOGDRAIN_SOURCE", "false")

	sink := &recordingSink{}
	l := NewLogger(sink, WithLoggerEnv())

	l.Warn("dropped")
	l.Error("kept")

	recs := sink.snapshot()
	if len(recs) != 1 || recs[0].Message != "kept" {
		t.Fatalf("records = %+v", recs)
	}
	if recs[0].Source != nil {
		t.Fatal("LOGDRAIN_SOURCE=false was ignored")
	}
}

func TestLoggerEnvOverlayIgnoresMalformed(t *testing.T) {
	t.Setenv("LOGDRAIN_LEVEL", "loudest")
	t.Setenv("LOGDRAIN_SOURCE", "sometimes")

	sink := &recordingSink{}
	l := NewLogger(sink, WithLoggerEnv())

	l.Debug("dropped")
	l.Info("kept")

	recs := sink.snapshot()
	if len(recs) != 1 || recs[0].Message != "kept" {
		t.Fatalf("records = %+v", recs)
	}
	if recs[0].Source == nil {
		t.Fatal("malformed LOGDRAIN_SOURCE should leave capture on")
	}
}

func TestLoggerContextAppendsTraceFields(t *testing.T) {
	sink := &recordingSink{}
	l := NewLogger(sink)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10},
		SpanID:     trace.SpanID{0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17, 0x18},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	shared := []Field{String("k", "v")}
	l.InfoContext(ctx, "traced", shared...)

	recs := sink.snapshot()
	fields := recs[0].Fields
	if len(fields) != 4 {
		t.Fatalf("got %d fields, want the original plus three trace fields", len(fields))
	}
	byKey := map[string]Field{}
	for _, f := range fields[1:] {
		byKey[f.Key] = f
	}
	if got := byKey[TraceIDKey].Text(); got != "0102030405060708090a0b0c0d0e0f10" {
		t.Errorf("%s = %q", TraceIDKey, got)
	}
	if got := byKey[SpanIDKey].Text(); got != "1112131415161718" {
		t.Errorf("%s = %q", SpanIDKey, got)
	}
	if sampled, ok := byKey[TraceSampledKey].Value().(bool); !ok || !sampled {
		t.Errorf("%s = %v, want true", TraceSampledKey, byKey[TraceSampledKey].Value())
	}
	// The append must not grow into the caller's slice.
	if len(shared) != 1 {
		t.Fatalf("caller slice length changed to %d", len(shared))
	}
}

func TestLoggerContextWithoutSpan(t *testing.T) {
	sink := &recordingSink{}
	l := NewLogger(sink)
	l.InfoContext(context.Background(), "untraced", String("k", "v"))

	recs := sink.snapshot()
	if len(recs[0].Fields) != 1 {
		t.Fatalf("fields = %+v, want just the caller's field", recs[0].Fields)
	}
}

func TestNewLoggerNilSinkPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewLogger(nil) did not panic")
		}
	}()
	NewLogger(nil)
}
