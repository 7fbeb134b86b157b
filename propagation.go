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
	"os"
	"strconv"
	"strings"
	"sync"

	gcppropagator "github.com/GoogleCloudPlatform/opentelemetry-operations-go/propagator"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

var installPropagatorOnce sync.Once

// EnsurePropagation installs a composite OpenTelemetry text map propagator
// that prefers W3C Trace Context headers while accepting Google Cloud's
// legacy X-Cloud-Trace-Context header on ingress. Without a propagator,
// [TraceFields] never sees an inbound span context and trace correlation
// fields stay absent from dispatched records.
//
// The configuration is applied at most once per process and can be
// suppressed by setting LOGDRAIN_DISABLE_PROPAGATOR_AUTOSET to a truthy
// value. The http and grpc subpackages call this on first use; applications
// remain free to override the global propagator afterwards via
// otel.SetTextMapPropagator.
func EnsurePropagation() {
	installPropagatorOnce.Do(func() {
		if propagatorAutoSetDisabled() {
			return
		}
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			gcppropagator.CloudTraceOneWayPropagator{},
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	})
}

// propagatorAutoSetDisabled reports whether the env kill-switch is set.
func propagatorAutoSetDisabled() bool {
	raw := strings.TrimSpace(os.Getenv("LOGDRAIN_DISABLE_PROPAGATOR_AUTOSET"))
	if raw == "" {
		return false
	}
	disabled, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return disabled
}
