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

	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/pjscruggs/logdrain"
)

// Option customizes the middleware.
type Option func(*config)

type config struct {
	logger         *logdrain.Logger
	level          logdrain.Level
	enableOTel     bool
	tracerProvider trace.TracerProvider
	propagators    propagation.TextMapPropagator
	propagatorsSet bool
	filter         func(*stdhttp.Request) bool
}

func defaultConfig() *config {
	return &config{
		level:      logdrain.LevelInfo,
		enableOTel: true,
	}
}

func applyOptions(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithLogger sets the logger requests are summarized through. The default is
// [logdrain.Default].
func WithLogger(logger *logdrain.Logger) Option {
	return func(cfg *config) { cfg.logger = logger }
}

// WithLevel sets the level for successful request summaries. Responses with
// 4xx statuses log at Warn and 5xx at Error regardless.
func WithLevel(level logdrain.Level) Option {
	return func(cfg *config) { cfg.level = level }
}

// WithOTel toggles otelhttp instrumentation around the middleware. Enabled
// by default.
func WithOTel(enabled bool) Option {
	return func(cfg *config) { cfg.enableOTel = enabled }
}

// WithTracerProvider overrides the tracer provider used by otelhttp.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *config) { cfg.tracerProvider = tp }
}

// WithPropagators overrides the propagators used by otelhttp.
func WithPropagators(p propagation.TextMapPropagator) Option {
	return func(cfg *config) {
		cfg.propagators = p
		cfg.propagatorsSet = true
	}
}

// WithFilter suppresses summaries for requests where filter returns false;
// typical use is muting health-check endpoints.
func WithFilter(filter func(*stdhttp.Request) bool) Option {
	return func(cfg *config) { cfg.filter = filter }
}
