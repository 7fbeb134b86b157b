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

// Package http provides net/http server middleware that emits one
// request-summary record per request through a logdrain [logdrain.Logger].
// The summary is produced after the handler returns, so with an
// [logdrain.Async] sink the request path never waits on log I/O.
//
//	logger := logdrain.NewLogger(async)
//	mux := http.NewServeMux()
//	srv := ldhttp.Middleware(ldhttp.WithLogger(logger))(mux)
//
// Handlers can retrieve a request-scoped logger carrying the request's
// fields via [logdrain.FromContext]. When OpenTelemetry instrumentation is
// enabled (the default), the middleware is wrapped in otelhttp and the
// emitted record carries trace correlation fields.
package http
