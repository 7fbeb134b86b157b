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

package http

import (
	stdhttp "net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/pjscruggs/logdrain"
)

const instrumentationName = "github.com/pjscruggs/logdrain/http"

// Middleware returns middleware that logs one summary record per request
// through the configured logger and stores a request-scoped logger in the
// request context for handlers to use.
func Middleware(opts ...Option) func(stdhttp.Handler) stdhttp.Handler {
	cfg := applyOptions(opts)
	logdrain.EnsurePropagation()

	return func(next stdhttp.Handler) stdhttp.Handler {
		if next == nil {
			next = stdhttp.NotFoundHandler()
		}

		loggingHandler := stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
			start := time.Now()
			logger := cfg.logger
			if logger == nil {
				logger = logdrain.Default()
			}

			reqLogger := logger.With(
				logdrain.String("http.method", r.Method),
				logdrain.String("http.path", r.URL.Path),
			)
			r = r.WithContext(logdrain.ContextWithLogger(r.Context(), reqLogger))

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			if cfg.filter != nil && !cfg.filter(r) {
				return
			}

			status := rec.status
			if status == 0 {
				status = stdhttp.StatusOK
			}
			// LogContext snapshots the span context opened by otelhttp
			// before the record crosses into the worker.
			_ = logger.LogContext(r.Context(), summaryLevel(cfg.level, status),
				r.Method+" "+r.URL.Path,
				logdrain.String("http.method", r.Method),
				logdrain.String("http.path", r.URL.Path),
				logdrain.Int("http.status", status),
				logdrain.Int64("http.bytes", rec.written),
				logdrain.Duration("http.duration", time.Since(start)),
				logdrain.String("http.remote", r.RemoteAddr),
			)
		})

		handler := stdhttp.Handler(loggingHandler)
		if cfg.enableOTel {
			var otelOpts []otelhttp.Option
			if cfg.tracerProvider != nil {
				otelOpts = append(otelOpts, otelhttp.WithTracerProvider(cfg.tracerProvider))
			}
			if cfg.propagatorsSet && cfg.propagators != nil {
				otelOpts = append(otelOpts, otelhttp.WithPropagators(cfg.propagators))
			}
			handler = otelhttp.NewHandler(handler, instrumentationName, otelOpts...)
		}
		return handler
	}
}

// summaryLevel escalates the configured level for error statuses.
func summaryLevel(base logdrain.Level, status int) logdrain.Level {
	switch {
	case status >= 500:
		return logdrain.LevelError
	case status >= 400:
		if base > logdrain.LevelWarn {
			return base
		}
		return logdrain.LevelWarn
	default:
		return base
	}
}

// statusRecorder captures the status code and body size. Unwrap lets
// http.ResponseController reach the underlying writer for flushing,
// hijacking, and deadlines.
type statusRecorder struct {
	stdhttp.ResponseWriter
	status  int
	written int64
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = stdhttp.StatusOK
	}
	n, err := r.ResponseWriter.Write(p)
	r.written += int64(n)
	return n, err
}

func (r *statusRecorder) Unwrap() stdhttp.ResponseWriter {
	return r.ResponseWriter
}
