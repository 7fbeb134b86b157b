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

// Package grpc provides unary client and server interceptors that emit one
// RPC-summary record per call through a logdrain [logdrain.Logger]. Summary
// severity follows the status code, payload sizes are measured with
// protobuf when enabled, and [ServerOptions] / [DialOptions] bundle the
// interceptors with otelgrpc stats handlers for trace propagation.
//
//	srv := grpc.NewServer(ldgrpc.ServerOptions(ldgrpc.WithLogger(logger))...)
//
// Handlers can retrieve a request-scoped logger carrying the RPC's fields
// via [logdrain.FromContext].
package grpc
