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
	"os"
	"sync"
)

type contextKey int

const loggerContextKey contextKey = iota

// ContextWithLogger returns a child context carrying logger, so middleware
// can hand request-scoped loggers down the call chain.
func ContextWithLogger(ctx context.Context, logger *Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerContextKey, logger)
}

// FromContext retrieves a logger stored via ContextWithLogger. If ctx
// carries none, the package default logger is returned so callers always
// receive a usable logger.
func FromContext(ctx context.Context) *Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(loggerContextKey).(*Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

var defaultLogger = sync.OnceValue(func() *Logger {
	// Synchronous on purpose: the default logger exists as a fallback
	// and must not own a worker goroutine nobody will ever close.
	return NewLogger(NewWriterSink(os.Stderr))
})

// Default returns the process-wide fallback logger, a synchronous logfmt
// logger on stderr. Applications wanting asynchronous dispatch should build
// their own [Async] and pass loggers explicitly or via ContextWithLogger.
func Default() *Logger {
	return defaultLogger()
}
