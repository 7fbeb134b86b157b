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

// Record is one log event. Inside the dispatch path a Record is fully owned:
// the message is rendered text, Source points at interned static metadata,
// and Fields have been captured, so the record references nothing with a
// lifetime shorter than itself and may be handed to the worker goroutine.
type Record struct {
	// Level is the event severity.
	Level Level
	// Message is the rendered message text.
	Message string
	// Source identifies the call site; may be nil when source capture is
	// disabled or unavailable.
	Source *Source
	// Target names the subsystem or category the event belongs to. When
	// empty, sinks typically fall back to Source.Module.
	Target string
	// Fields are the key/value pairs attached to this specific event, in
	// emission order.
	Fields []Field
}

// Context is an immutable list of contextual fields attached to a logger
// rather than to one event. It is shared by reference across every record
// the logger emits: dispatch never copies it, and the worker goroutine reads
// it concurrently with producers, which is safe because a Context never
// changes after construction.
//
// Deferred field kinds (Err, Stringer, Any, Formatted) are rendered to owned
// text at construction; a value that fails to render is kept as its error
// message so that construction stays infallible.
type Context struct {
	fields []Field
}

// NewContext builds a contextual field list. The fields are captured
// immediately so the Context owns all of its data.
func NewContext(fields ...Field) *Context {
	return (*Context)(nil).With(fields...)
}

// With returns a new Context holding the receiver's fields followed by the
// given ones. The receiver is not modified; a nil receiver is treated as
// empty.
func (c *Context) With(fields ...Field) *Context {
	var base []Field
	if c != nil {
		base = c.fields
	}
	if len(fields) == 0 {
		if c != nil {
			return c
		}
		return &Context{}
	}

	owned := make([]Field, 0, len(base)+len(fields))
	owned = append(owned, base...)
	for _, f := range fields {
		cf, err := captureField(f)
		if err != nil {
			// Keep construction infallible: record the rendering
			// failure in place of the value.
			cf = Field{Key: f.Key, Kind: KindFormatted, str: "!ERROR:" + err.Error()}
		}
		owned = append(owned, cf)
	}
	return &Context{fields: owned}
}

// Len returns the number of contextual fields.
func (c *Context) Len() int {
	if c == nil {
		return 0
	}
	return len(c.fields)
}

// Visit calls fn for each contextual field in order.
func (c *Context) Visit(fn func(Field)) {
	if c == nil {
		return
	}
	for _, f := range c.fields {
		fn(f)
	}
}

// Fields returns a copy of the contextual fields. Sinks on a hot path should
// prefer Visit, which does not allocate.
func (c *Context) Fields() []Field {
	if c == nil || len(c.fields) == 0 {
		return nil
	}
	out := make([]Field, len(c.fields))
	copy(out, c.fields)
	return out
}
