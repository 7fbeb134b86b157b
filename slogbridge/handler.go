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

package slogbridge

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pjscruggs/logdrain"
)

// Handler implements slog.Handler on top of a logdrain Sink.
type Handler struct {
	sink   logdrain.Sink
	kv     *logdrain.Context
	groups []string
	min    slog.Leveler
	target string
}

// Option customizes a Handler.
type Option func(*Handler)

// WithMinLevel sets the minimum level the handler reports as enabled. The
// default is slog.LevelInfo.
func WithMinLevel(min slog.Leveler) Option {
	return func(h *Handler) {
		if min != nil {
			h.min = min
		}
	}
}

// WithTarget sets the target recorded on every event. When unset, the
// record's target falls back to the call site's package path.
func WithTarget(target string) Option {
	return func(h *Handler) { h.target = target }
}

// New returns a Handler dispatching into sink. New panics if sink is nil.
func New(sink logdrain.Sink, opts ...Option) *Handler {
	if sink == nil {
		panic("slogbridge: New called with nil sink")
	}
	h := &Handler{
		sink: sink,
		min:  slog.LevelInfo,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Enabled reports whether records at level should be handled.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.min.Level()
}

// Handle converts rec into a logdrain record and hands it to the sink. Trace
// correlation fields are captured from ctx here, on the producer goroutine.
func (h *Handler) Handle(ctx context.Context, rec slog.Record) error {
	fields := make([]logdrain.Field, 0, rec.NumAttrs()+3)
	rec.Attrs(func(a slog.Attr) bool {
		fields = appendAttr(fields, h.groups, a)
		return true
	})
	if ctx != nil {
		fields = append(fields, logdrain.TraceFields(ctx)...)
	}

	src := logdrain.SourceForPC(rec.PC)
	target := h.target
	if target == "" && src != nil {
		target = src.Module
	}

	return h.sink.Log(&logdrain.Record{
		Level:   logdrain.Level(rec.Level),
		Message: rec.Message,
		Source:  src,
		Target:  target,
		Fields:  fields,
	}, h.kv)
}

// WithAttrs folds attrs into the shared contextual field list. The returned
// handler dispatches into the same sink.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	fields := make([]logdrain.Field, 0, len(attrs))
	for _, a := range attrs {
		fields = appendAttr(fields, h.groups, a)
	}
	child := *h
	child.kv = h.kv.With(fields...)
	return &child
}

// WithGroup qualifies subsequent attribute keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	child := *h
	child.groups = append(h.groups[:len(h.groups):len(h.groups)], name)
	return &child
}

// appendAttr converts one attribute, flattening groups into dotted keys the
// way the closed field kind set requires.
func appendAttr(fields []logdrain.Field, groups []string, a slog.Attr) []logdrain.Field {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return fields
	}

	if a.Value.Kind() == slog.KindGroup {
		gattrs := a.Value.Group()
		if len(gattrs) == 0 {
			return fields
		}
		if a.Key != "" {
			groups = append(groups[:len(groups):len(groups)], a.Key)
		}
		for _, ga := range gattrs {
			fields = appendAttr(fields, groups, ga)
		}
		return fields
	}

	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}

	switch a.Value.Kind() {
	case slog.KindBool:
		return append(fields, logdrain.Bool(key, a.Value.Bool()))
	case slog.KindInt64:
		return append(fields, logdrain.Int64(key, a.Value.Int64()))
	case slog.KindUint64:
		return append(fields, logdrain.Uint64(key, a.Value.Uint64()))
	case slog.KindFloat64:
		return append(fields, logdrain.Float64(key, a.Value.Float64()))
	case slog.KindString:
		return append(fields, logdrain.String(key, a.Value.String()))
	case slog.KindTime:
		return append(fields, logdrain.Time(key, a.Value.Time()))
	case slog.KindDuration:
		return append(fields, logdrain.Duration(key, a.Value.Duration()))
	default:
		return append(fields, logdrain.Any(key, a.Value.Any()))
	}
}
