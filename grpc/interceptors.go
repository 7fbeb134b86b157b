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
	"context"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"

	"github.com/pjscruggs/logdrain"
)

// UnaryServerInterceptor returns an interceptor that logs one summary record
// per unary RPC and attaches a request-scoped logger to the handler context.
func UnaryServerInterceptor(opts ...Option) grpc.UnaryServerInterceptor {
	cfg := applyOptions(opts)
	logdrain.EnsurePropagation()

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		logger := cfg.logger
		if logger == nil {
			logger = logdrain.Default()
		}

		fields := []logdrain.Field{
			logdrain.String("rpc.method", info.FullMethod),
		}
		if cfg.includePeer {
			if addr, ok := peerAddress(ctx); ok {
				fields = append(fields, logdrain.String("rpc.peer", addr))
			}
		}
		if cfg.includeSizes {
			if n, ok := messageSize(req); ok {
				fields = append(fields, logdrain.Int64("rpc.request_bytes", n))
			}
		}

		ctx = logdrain.ContextWithLogger(ctx, logger.With(fields...))
		resp, err := handler(ctx, req)

		code := status.Code(err)
		fields = append(fields,
			logdrain.String("rpc.code", code.String()),
			logdrain.Duration("rpc.duration", time.Since(start)),
		)
		if err != nil {
			fields = append(fields, logdrain.String("rpc.error", err.Error()))
		}
		if cfg.includeSizes && err == nil {
			if n, ok := messageSize(resp); ok {
				fields = append(fields, logdrain.Int64("rpc.response_bytes", n))
			}
		}
		_ = logger.LogContext(ctx, codeLevel(cfg.level, code), info.FullMethod, fields...)
		return resp, err
	}
}

// UnaryClientInterceptor returns an interceptor that logs one summary record
// per outgoing unary RPC.
func UnaryClientInterceptor(opts ...Option) grpc.UnaryClientInterceptor {
	cfg := applyOptions(opts)
	logdrain.EnsurePropagation()

	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, callOpts ...grpc.CallOption) error {
		start := time.Now()
		logger := cfg.logger
		if logger == nil {
			logger = logdrain.Default()
		}

		err := invoker(ctx, method, req, reply, cc, callOpts...)

		code := status.Code(err)
		fields := []logdrain.Field{
			logdrain.String("rpc.method", method),
			logdrain.String("rpc.code", code.String()),
			logdrain.Duration("rpc.duration", time.Since(start)),
			logdrain.String("rpc.target", cc.Target()),
		}
		if err != nil {
			fields = append(fields, logdrain.String("rpc.error", err.Error()))
		}
		if cfg.includeSizes {
			if n, ok := messageSize(req); ok {
				fields = append(fields, logdrain.Int64("rpc.request_bytes", n))
			}
			if err == nil {
				if n, ok := messageSize(reply); ok {
					fields = append(fields, logdrain.Int64("rpc.response_bytes", n))
				}
			}
		}
		_ = logger.LogContext(ctx, codeLevel(cfg.level, code), method, fields...)
		return err
	}
}

// ServerOptions bundles the unary server interceptor with an otelgrpc stats
// handler (unless disabled) for grpc.NewServer.
func ServerOptions(opts ...Option) []grpc.ServerOption {
	cfg := applyOptions(opts)
	serverOpts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(UnaryServerInterceptor(opts...)),
	}
	if cfg.enableOTel {
		serverOpts = append(serverOpts, grpc.StatsHandler(otelgrpc.NewServerHandler(statsHandlerOptions(cfg)...)))
	}
	return serverOpts
}

// DialOptions bundles the unary client interceptor with an otelgrpc stats
// handler (unless disabled) for grpc.NewClient.
func DialOptions(opts ...Option) []grpc.DialOption {
	cfg := applyOptions(opts)
	dialOpts := []grpc.DialOption{
		grpc.WithChainUnaryInterceptor(UnaryClientInterceptor(opts...)),
	}
	if cfg.enableOTel {
		dialOpts = append(dialOpts, grpc.WithStatsHandler(otelgrpc.NewClientHandler(statsHandlerOptions(cfg)...)))
	}
	return dialOpts
}

// codeLevel maps a status code to a summary severity, never below base.
func codeLevel(base logdrain.Level, code codes.Code) logdrain.Level {
	var lvl logdrain.Level
	switch code {
	case codes.OK:
		lvl = base
	case codes.Canceled, codes.InvalidArgument, codes.NotFound, codes.AlreadyExists,
		codes.PermissionDenied, codes.Unauthenticated, codes.FailedPrecondition,
		codes.OutOfRange, codes.ResourceExhausted, codes.Aborted:
		lvl = logdrain.LevelWarn
	default:
		lvl = logdrain.LevelError
	}
	if lvl < base {
		lvl = base
	}
	return lvl
}

// peerAddress extracts the remote address from the RPC context.
func peerAddress(ctx context.Context) (string, bool) {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return "", false
	}
	return p.Addr.String(), true
}

// messageSize reports the serialized size of a protobuf message; non-proto
// payloads (custom codecs) report no size.
func messageSize(msg any) (int64, bool) {
	pm, ok := msg.(proto.Message)
	if !ok {
		return 0, false
	}
	return int64(proto.Size(pm)), true
}
