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
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/compute/metadata"
)

// RuntimeInfo captures metadata about the current execution environment,
// suitable for seeding a logger's contextual field list.
type RuntimeInfo struct {
	// Service is the deployed service name.
	Service string
	// Revision is the service revision or version.
	Revision string
	// Region is the deployment region, when known.
	Region string
	// ProjectID is the owning cloud project, when running on GCP.
	ProjectID string
}

var (
	runtimeInfo     RuntimeInfo
	runtimeInfoOnce sync.Once
)

// DetectRuntimeInfo inspects well-known environment variables and, on GCE,
// the metadata server to infer service identity. Results are cached for the
// life of the process; the metadata lookups are bounded by a short timeout
// so detection never stalls startup on a non-GCP host.
func DetectRuntimeInfo() RuntimeInfo {
	runtimeInfoOnce.Do(func() {
		runtimeInfo = detectRuntimeInfo()
	})
	return runtimeInfo
}

// RuntimeContext returns a contextual field list built from
// DetectRuntimeInfo, containing only the attributes that were resolved. It
// may be empty, never nil, and is safe to share across loggers.
func RuntimeContext() *Context {
	info := DetectRuntimeInfo()
	var fields []Field
	if info.Service != "" {
		fields = append(fields, String("service", info.Service))
	}
	if info.Revision != "" {
		fields = append(fields, String("revision", info.Revision))
	}
	if info.Region != "" {
		fields = append(fields, String("region", info.Region))
	}
	if info.ProjectID != "" {
		fields = append(fields, String("project_id", info.ProjectID))
	}
	return NewContext(fields...)
}

// detectRuntimeInfo reads env vars first (covering Cloud Run, Cloud
// Functions, and App Engine conventions plus logdrain's own overrides) and
// falls back to the metadata server for project and region.
func detectRuntimeInfo() RuntimeInfo {
	info := RuntimeInfo{
		Service: firstNonEmptyEnv(
			"LOGDRAIN_SERVICE", "K_SERVICE", "GAE_SERVICE", "FUNCTION_TARGET",
		),
		Revision: firstNonEmptyEnv(
			"LOGDRAIN_REVISION", "K_REVISION", "GAE_VERSION",
		),
		Region: firstNonEmptyEnv(
			"LOGDRAIN_REGION", "FUNCTION_REGION",
		),
		ProjectID: firstNonEmptyEnv(
			"LOGDRAIN_PROJECT_ID", "GOOGLE_CLOUD_PROJECT", "GCLOUD_PROJECT", "GCP_PROJECT",
		),
	}

	if (info.ProjectID == "" || info.Region == "") && metadata.OnGCE() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if info.ProjectID == "" {
			if id, err := metadata.ProjectIDWithContext(ctx); err == nil {
				info.ProjectID = strings.TrimSpace(id)
			}
		}
		if info.Region == "" {
			if zone, err := metadata.ZoneWithContext(ctx); err == nil {
				info.Region = regionFromZone(zone)
			}
		}
	}

	return info
}

// regionFromZone trims the zone suffix, e.g. "us-central1-b" -> "us-central1".
func regionFromZone(zone string) string {
	zone = strings.TrimSpace(zone)
	if i := strings.LastIndexByte(zone, '-'); i > 0 {
		return zone[:i]
	}
	return zone
}

// firstNonEmptyEnv returns the first of the named env vars with a non-blank
// value.
func firstNonEmptyEnv(names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}
