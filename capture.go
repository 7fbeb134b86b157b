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
	"encoding"
	"fmt"
)

// captureFields copies fields into a fully owned slice, preserving order.
// Primitive kinds are copied by value. The deferred kinds (Formatted with
// pending arguments, Error, Stringer, Any) are rendered to owned text here,
// on the calling goroutine, so the result references nothing from the
// caller's frame and may be handed to the worker.
//
// Rendering a value that implements encoding.TextMarshaler can fail; that
// error aborts the whole capture and is reported to the caller of Log. Every
// other kind is defined to succeed.
func captureFields(fields []Field) ([]Field, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	owned := make([]Field, len(fields))
	for i, f := range fields {
		cf, err := captureField(f)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Key, err)
		}
		owned[i] = cf
	}
	return owned, nil
}

// captureField resolves one field to its owned representation.
func captureField(f Field) (Field, error) {
	switch f.Kind {
	case KindFormatted:
		df, ok := f.iface.(deferredFormat)
		if !ok {
			// Already rendered.
			return f, nil
		}
		return Field{Key: f.Key, Kind: KindFormatted, str: fmt.Sprintf(df.format, df.args...)}, nil
	case KindError:
		return Field{Key: f.Key, Kind: KindFormatted, str: errorText(f.iface)}, nil
	case KindStringer:
		return Field{Key: f.Key, Kind: KindFormatted, str: stringerText(f.iface)}, nil
	case KindAny:
		text, err := renderAny(f.iface)
		if err != nil {
			return Field{}, err
		}
		return Field{Key: f.Key, Kind: KindFormatted, str: text}, nil
	default:
		// Primitives, text, time, duration: the struct copy is the
		// owned representation.
		return f, nil
	}
}

// renderAny converts an arbitrary value to owned text. TextMarshaler is
// honored first because it is the one rendering path that can report an
// error; everything else falls through to fmt.
func renderAny(v any) (string, error) {
	switch tv := v.(type) {
	case nil:
		return "<nil>", nil
	case encoding.TextMarshaler:
		b, err := tv.MarshalText()
		if err != nil {
			return "", fmt.Errorf("marshal text: %w", err)
		}
		return string(b), nil
	case string:
		return tv, nil
	case error:
		return tv.Error(), nil
	case fmt.Stringer:
		return tv.String(), nil
	default:
		return fmt.Sprint(v), nil
	}
}

// errorText renders an error field value, tolerating a nil error.
func errorText(v any) string {
	err, ok := v.(error)
	if !ok || err == nil {
		return "<nil>"
	}
	return err.Error()
}

// stringerText renders a Stringer field value, tolerating a nil value.
func stringerText(v any) string {
	s, ok := v.(fmt.Stringer)
	if !ok || s == nil {
		return "<nil>"
	}
	return s.String()
}
