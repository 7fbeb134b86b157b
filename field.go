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
	"fmt"
	"math"
	"time"
)

// Kind identifies the concrete value stored in a Field. The set of kinds is
// closed: every field a caller can construct maps to exactly one kind, and
// capture never fails with an "unsupported kind".
type Kind uint8

const (
	// KindBool holds a boolean.
	KindBool Kind = iota + 1
	// KindUnit holds no value at all; the key alone is the information.
	KindUnit
	// KindNone marks an optional value that was absent.
	KindNone
	// KindChar holds a single rune.
	KindChar
	// KindInt8 through KindInt64 hold signed integers of that width.
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	// KindUint8 through KindUint64 hold unsigned integers of that width.
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	// KindFloat32 and KindFloat64 hold floating point values.
	KindFloat32
	KindFloat64
	// KindString holds owned text.
	KindString
	// KindFormatted holds text rendered from a deferred source (format
	// arguments, a Stringer, an error, or an arbitrary value) during
	// capture.
	KindFormatted
	// KindTime holds a time.Time.
	KindTime
	// KindDuration holds a time.Duration.
	KindDuration

	// The kinds below exist only before capture. captureFields resolves
	// each of them to KindFormatted so that a captured field holds no live
	// reference into the calling frame.

	// KindError holds an error pending capture.
	KindError
	// KindStringer holds a fmt.Stringer pending capture.
	KindStringer
	// KindAny holds an arbitrary value pending capture.
	KindAny
)

// String returns a short name for the kind, used in diagnostics.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindUnit:
		return "unit"
	case KindNone:
		return "none"
	case KindChar:
		return "char"
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindUint8:
		return "uint8"
	case KindUint16:
		return "uint16"
	case KindUint32:
		return "uint32"
	case KindUint64:
		return "uint64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindFormatted:
		return "formatted"
	case KindTime:
		return "time"
	case KindDuration:
		return "duration"
	case KindError:
		return "error"
	case KindStringer:
		return "stringer"
	case KindAny:
		return "any"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// deferredFormat carries Sprintf arguments until capture renders them.
type deferredFormat struct {
	format string
	args   []any
}

// Field is a typed key/value pair attached to a log event. Fields are
// reflection-free for all primitive kinds: the value lives inline in num or
// str. Only the deferred kinds (Error, Stringer, Any, and unformatted
// Formatted) carry an interface value, and capture resolves those to owned
// text before a field crosses into the worker goroutine.
type Field struct {
	Key  string
	Kind Kind

	num   uint64
	str   string
	t     time.Time
	iface any
}

// Bool returns a boolean field.
func Bool(key string, v bool) Field {
	var n uint64
	if v {
		n = 1
	}
	return Field{Key: key, Kind: KindBool, num: n}
}

// Unit returns a field whose presence is the entire value.
func Unit(key string) Field { return Field{Key: key, Kind: KindUnit} }

// None returns a field recording an absent optional value.
func None(key string) Field { return Field{Key: key, Kind: KindNone} }

// Char returns a single-rune field.
func Char(key string, v rune) Field {
	return Field{Key: key, Kind: KindChar, num: uint64(uint32(v))}
}

// Int8 returns a signed 8-bit integer field.
func Int8(key string, v int8) Field {
	return Field{Key: key, Kind: KindInt8, num: uint64(v)}
}

// Int16 returns a signed 16-bit integer field.
func Int16(key string, v int16) Field {
	return Field{Key: key, Kind: KindInt16, num: uint64(v)}
}

// Int32 returns a signed 32-bit integer field.
func Int32(key string, v int32) Field {
	return Field{Key: key, Kind: KindInt32, num: uint64(v)}
}

// Int64 returns a signed 64-bit integer field.
func Int64(key string, v int64) Field {
	return Field{Key: key, Kind: KindInt64, num: uint64(v)}
}

// Int returns a signed integer field stored at 64-bit width.
func Int(key string, v int) Field { return Int64(key, int64(v)) }

// Uint8 returns an unsigned 8-bit integer field.
func Uint8(key string, v uint8) Field {
	return Field{Key: key, Kind: KindUint8, num: uint64(v)}
}

// Uint16 returns an unsigned 16-bit integer field.
func Uint16(key string, v uint16) Field {
	return Field{Key: key, Kind: KindUint16, num: uint64(v)}
}

// Uint32 returns an unsigned 32-bit integer field.
func Uint32(key string, v uint32) Field {
	return Field{Key: key, Kind: KindUint32, num: uint64(v)}
}

// Uint64 returns an unsigned 64-bit integer field.
func Uint64(key string, v uint64) Field {
	return Field{Key: key, Kind: KindUint64, num: v}
}

// Uint returns an unsigned integer field stored at 64-bit width.
func Uint(key string, v uint) Field { return Uint64(key, uint64(v)) }

// Float32 returns a 32-bit floating point field.
func Float32(key string, v float32) Field {
	return Field{Key: key, Kind: KindFloat32, num: uint64(math.Float32bits(v))}
}

// Float64 returns a 64-bit floating point field.
func Float64(key string, v float64) Field {
	return Field{Key: key, Kind: KindFloat64, num: math.Float64bits(v)}
}

// String returns a text field. The string is referenced as-is; Go strings
// are immutable, so no copy is required for ownership.
func String(key, v string) Field {
	return Field{Key: key, Kind: KindString, str: v}
}

// Formatted returns a field whose text is rendered from format and args by
// capture, before the field crosses a goroutine boundary. Until then the
// arguments are retained as given.
func Formatted(key, format string, args ...any) Field {
	return Field{Key: key, Kind: KindFormatted, iface: deferredFormat{format: format, args: args}}
}

// Time returns a time field.
func Time(key string, v time.Time) Field {
	return Field{Key: key, Kind: KindTime, t: v}
}

// Duration returns a duration field.
func Duration(key string, v time.Duration) Field {
	return Field{Key: key, Kind: KindDuration, num: uint64(v)}
}

// Err returns an error field under the conventional "error" key. The error's
// message is rendered during capture.
func Err(err error) Field {
	return Field{Key: "error", Kind: KindError, iface: err}
}

// Stringer returns a field rendered from v.String() during capture.
func Stringer(key string, v fmt.Stringer) Field {
	return Field{Key: key, Kind: KindStringer, iface: v}
}

// Any returns a field holding an arbitrary value, rendered to text during
// capture. Values implementing encoding.TextMarshaler are marshalled and may
// surface a capture error; everything else renders via fmt.Sprint.
func Any(key string, v any) Field {
	return Field{Key: key, Kind: KindAny, iface: v}
}

// Value returns the field's value as its natural Go type: bool for
// KindBool, rune for KindChar, int8..int64 and uint8..uint64 for the integer
// kinds, float32/float64 for the float kinds, string for text, nil for
// KindNone, and struct{}{} for KindUnit. Deferred kinds return the value
// they were constructed with until capture resolves them.
func (f Field) Value() any {
	switch f.Kind {
	case KindBool:
		return f.num != 0
	case KindUnit:
		return struct{}{}
	case KindNone:
		return nil
	case KindChar:
		return rune(uint32(f.num))
	case KindInt8:
		return int8(f.num)
	case KindInt16:
		return int16(f.num)
	case KindInt32:
		return int32(f.num)
	case KindInt64:
		return int64(f.num)
	case KindUint8:
		return uint8(f.num)
	case KindUint16:
		return uint16(f.num)
	case KindUint32:
		return uint32(f.num)
	case KindUint64:
		return f.num
	case KindFloat32:
		return math.Float32frombits(uint32(f.num))
	case KindFloat64:
		return math.Float64frombits(f.num)
	case KindString:
		return f.str
	case KindFormatted:
		if f.iface != nil {
			return f.iface
		}
		return f.str
	case KindTime:
		return f.t
	case KindDuration:
		return time.Duration(f.num)
	case KindError, KindStringer, KindAny:
		return f.iface
	default:
		return nil
	}
}

// Text returns the field's text for KindString and captured KindFormatted
// fields, and "" for every other kind.
func (f Field) Text() string { return f.str }
