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
	"os"
	"strconv"
	"strings"
)

// Logger is the producer-facing front end over a [Sink]. It carries the
// contextual field list, the minimum level, the target string, and call-site
// capture policy; every leveled method assembles a [Record] and hands it to
// the sink.
//
// Loggers are immutable: With derives a child sharing the same sink, so a
// Logger is safe for concurrent use from any number of goroutines.
type Logger struct {
	sink      Sink
	kv        *Context
	min       slog.Leveler
	target    string
	addSource bool
}

// LoggerOption customizes a Logger.
type LoggerOption func(*Logger)

// WithMinLevel sets the minimum level the logger emits. Pass a [Level] for a
// fixed threshold or an *slog.LevelVar for a dynamically adjustable one. The
// default is [LevelInfo].
func WithMinLevel(min slog.Leveler) LoggerOption {
	return func(l *Logger) {
		if min != nil {
			l.min = min
		}
	}
}

// WithTarget sets the target (subsystem/category) recorded on every event.
// When unset, the record's target falls back to the call site's package
// path.
func WithTarget(target string) LoggerOption {
	return func(l *Logger) { l.target = target }
}

// WithSourceCapture toggles call-site capture. It defaults to on; turning it
// off removes the runtime.Callers cost from every log call and leaves
// Record.Source nil.
func WithSourceCapture(enabled bool) LoggerOption {
	return func(l *Logger) { l.addSource = enabled }
}

// WithContextFields seeds the logger's contextual field list.
func WithContextFields(kv *Context) LoggerOption {
	return func(l *Logger) {
		if kv != nil {
			l.kv = kv
		}
	}
}

// WithLoggerEnv overlays logger settings from the environment:
// LOGDRAIN_LEVEL (a level name accepted by [ParseLevel]) and
// LOGDRAIN_SOURCE (a boolean toggling source capture). Unset or malformed
// variables leave the current values alone.
func WithLoggerEnv() LoggerOption {
	return func(l *Logger) {
		if raw := strings.TrimSpace(os.Getenv("LOGDRAIN_LEVEL")); raw != "" {
			if lvl, err := ParseLevel(raw); err == nil {
				l.min = lvl
			}
		}
		if raw := strings.TrimSpace(os.Getenv("LOGDRAIN_SOURCE")); raw != "" {
			if enabled, err := strconv.ParseBool(raw); err == nil {
				l.addSource = enabled
			}
		}
	}
}

// NewLogger returns a Logger emitting into sink. NewLogger panics if sink is
// nil.
func NewLogger(sink Sink, opts ...LoggerOption) *Logger {
	if sink == nil {
		panic("logdrain: NewLogger called with nil sink")
	}
	l := &Logger{
		sink:      sink,
		min:       LevelInfo,
		addSource: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// With returns a child logger whose contextual field list is the receiver's
// extended by fields. The parent is unchanged and both share the sink.
func (l *Logger) With(fields ...Field) *Logger {
	if len(fields) == 0 {
		return l
	}
	child := *l
	child.kv = l.kv.With(fields...)
	return &child
}

// Enabled reports whether events at level would be emitted.
func (l *Logger) Enabled(level Level) bool {
	return level.Level() >= l.min.Level()
}

// Log emits one event at the given level. It returns nil once the event has
// been accepted by the sink (for [Async], once enqueued), a capture error if
// a field failed to render, or [ErrClosed] after the sink's dispatch channel
// is gone.
func (l *Logger) Log(level Level, msg string, fields ...Field) error {
	return l.log(nil, level, msg, fields)
}

// LogContext is Log with producer-side trace capture: if ctx carries a valid
// OpenTelemetry span context, trace fields are appended to the event before
// it crosses into the worker.
func (l *Logger) LogContext(ctx context.Context, level Level, msg string, fields ...Field) error {
	return l.log(ctx, level, msg, fields)
}

// Debug emits at LevelDebug.
func (l *Logger) Debug(msg string, fields ...Field) error {
	return l.log(nil, LevelDebug, msg, fields)
}

// Info emits at LevelInfo.
func (l *Logger) Info(msg string, fields ...Field) error {
	return l.log(nil, LevelInfo, msg, fields)
}

// Notice emits at LevelNotice.
func (l *Logger) Notice(msg string, fields ...Field) error {
	return l.log(nil, LevelNotice, msg, fields)
}

// Warn emits at LevelWarn.
func (l *Logger) Warn(msg string, fields ...Field) error {
	return l.log(nil, LevelWarn, msg, fields)
}

// Error emits at LevelError.
func (l *Logger) Error(msg string, fields ...Field) error {
	return l.log(nil, LevelError, msg, fields)
}

// Critical emits at LevelCritical.
func (l *Logger) Critical(msg string, fields ...Field) error {
	return l.log(nil, LevelCritical, msg, fields)
}

// Alert emits at LevelAlert.
func (l *Logger) Alert(msg string, fields ...Field) error {
	return l.log(nil, LevelAlert, msg, fields)
}

// Emergency emits at LevelEmergency.
func (l *Logger) Emergency(msg string, fields ...Field) error {
	return l.log(nil, LevelEmergency, msg, fields)
}

// DebugContext emits at LevelDebug with trace capture from ctx.
func (l *Logger) DebugContext(ctx context.Context, msg string, fields ...Field) error {
	return l.log(ctx, LevelDebug, msg, fields)
}

// InfoContext emits at LevelInfo with trace capture from ctx.
func (l *Logger) InfoContext(ctx context.Context, msg string, fields ...Field) error {
	return l.log(ctx, LevelInfo, msg, fields)
}

// WarnContext emits at LevelWarn with trace capture from ctx.
func (l *Logger) WarnContext(ctx context.Context, msg string, fields ...Field) error {
	return l.log(ctx, LevelWarn, msg, fields)
}

// ErrorContext emits at LevelError with trace capture from ctx.
func (l *Logger) ErrorContext(ctx context.Context, msg string, fields ...Field) error {
	return l.log(ctx, LevelError, msg, fields)
}

// log assembles the record. Every exported method is exactly one frame above;
// callerSource depends on that depth.
func (l *Logger) log(ctx context.Context, level Level, msg string, fields []Field) error {
	if !l.Enabled(level) {
		return nil
	}

	var src *Source
	if l.addSource {
		src = callerSource(2)
	}

	target := l.target
	if target == "" && src != nil {
		target = src.Module
	}

	if ctx != nil {
		if tf := TraceFields(ctx); len(tf) > 0 {
			fields = append(fields[:len(fields):len(fields)], tf...)
		}
	}

	return l.sink.Log(&Record{
		Level:   level,
		Message: msg,
		Source:  src,
		Target:  target,
		Fields:  fields,
	}, l.kv)
}
