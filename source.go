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
	"runtime"
	"strings"
	"sync"
)

// Source describes the call site that produced a log event. Instances are
// interned per program counter and shared by pointer: the metadata is static
// for the life of the process, so a Record carries a reference rather than a
// copy.
type Source struct {
	// File is the full path of the source file.
	File string
	// Line is the line number within File.
	Line int
	// Column is the column within Line. The Go runtime does not expose
	// column information, so it is zero unless supplied by a bridge.
	Column int
	// Function is the fully qualified function name.
	Function string
	// Module is the package path portion of Function.
	Module string
}

// sourceCache interns Source values by program counter.
var sourceCache sync.Map // uintptr -> *Source

// callerSource resolves and interns the Source for the caller skip frames up
// the stack. It returns nil when the caller cannot be resolved.
func callerSource(skip int) *Source {
	var pcs [1]uintptr
	if runtime.Callers(skip+2, pcs[:]) == 0 {
		return nil
	}
	return SourceForPC(pcs[0])
}

// SourceForPC resolves and interns the Source for a program counter, for
// bridges that already hold one (such as an slog.Record's PC). It returns
// nil for a zero pc.
func SourceForPC(pc uintptr) *Source {
	if pc == 0 {
		return nil
	}
	if cached, ok := sourceCache.Load(pc); ok {
		return cached.(*Source)
	}

	frames := runtime.CallersFrames([]uintptr{pc})
	frame, _ := frames.Next()
	src := &Source{
		File:     frame.File,
		Line:     frame.Line,
		Function: frame.Function,
		Module:   modulePath(frame.Function),
	}

	actual, _ := sourceCache.LoadOrStore(pc, src)
	return actual.(*Source)
}

// modulePath extracts the package path from a fully qualified function name,
// e.g. "github.com/acme/svc/internal/api.(*Server).Start" yields
// "github.com/acme/svc/internal/api".
func modulePath(function string) string {
	if function == "" {
		return ""
	}
	// The package path ends at the first dot after the final slash.
	slash := strings.LastIndexByte(function, '/')
	dot := strings.IndexByte(function[slash+1:], '.')
	if dot < 0 {
		return function
	}
	return function[:slash+1+dot]
}
