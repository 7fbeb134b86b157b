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

package grpc

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/pjscruggs/logdrain"
)

// Option customizes the interceptors.
type Option func(*config)

type config struct {
	logger         *logdrain.Logger
	level          logdrain.Level
	includePeer    bool
	includeSizes   bool
	enableOTel     bool
	tracerProvider trace.TracerProvider
	propagators    propagation.TextMapPropagator
	propagatorsSet bool
}

func defaultConfig() *config {
	return &config{
		level:       logdrain.LevelInfo,
		includePeer: true,
		enableOTel:  true,
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

// WithLogger sets the logger RPCs are summarized through. The default is
// [logdrain.Default].
func WithLogger(logger *logdrain.Logger) Option {
	return func(cfg *config) { cfg.logger = logger }
}

// WithLevel sets the level for successful RPC summaries. Failed RPCs
// escalate to Warn or Error based on the status code regardless.
func WithLevel(level logdrain.Level) Option {
	return func(cfg *config) { cfg.level = level }
}

// WithPeerInfo toggles recording of the remote peer address on server
// summaries. Enabled by default.
func WithPeerInfo(enabled bool) Option {
	return func(cfg *config) { cfg.includePeer = enabled }
}

// WithPayloadSizes toggles recording of serialized request and response
// sizes, measured via proto.Size for protobuf messages. Disabled by default
// because sizing re-walks the message.
func WithPayloadSizes(enabled bool) Option {
	return func(cfg *config) { cfg.includeSizes = enabled }
}

// WithOTel toggles installing otelgrpc stats handlers from [ServerOptions]
// and [DialOptions]. Enabled by default.
func WithOTel(enabled bool) Option {
	return func(cfg *config) { cfg.enableOTel = enabled }
}

// WithTracerProvider overrides the tracer provider used by otelgrpc.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *config) { cfg.tracerProvider = tp }
}

// WithPropagators overrides the propagators used by otelgrpc.
func WithPropagators(p propagation.TextMapPropagator) Option {
	return func(cfg *config) {
		cfg.propagators = p
		cfg.propagatorsSet = true
	}
}

// statsHandlerOptions converts the config into otelgrpc options.
func statsHandlerOptions(cfg *config) []otelgrpc.Option {
	var opts []otelgrpc.Option
	if cfg.tracerProvider != nil {
		opts = append(opts, otelgrpc.WithTracerProvider(cfg.tracerProvider))
	}
	if cfg.propagatorsSet && cfg.propagators != nil {
		opts = append(opts, otelgrpc.WithPropagators(cfg.propagators))
	}
	return opts
}
