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

package logdrain_test

import (
	"fmt"

	"github.com/pjscruggs/logdrain"
)

func ExampleNewAsync() {
	// A custom sink that prints each replayed record. Behind Async all
	// replays happen on one worker goroutine, so no locking is needed.
	printSink := logdrain.SinkFunc(func(r *logdrain.Record, kv *logdrain.Context) error {
		fmt.Printf("%s %s", r.Level, r.Message)
		for _, f := range r.Fields {
			fmt.Printf(" %s=%v", f.Key, f.Value())
		}
		fmt.Println()
		return nil
	})

	a := logdrain.NewAsync(printSink)
	logger := logdrain.NewLogger(a, logdrain.WithSourceCapture(false))

	logger.Info("request handled", logdrain.Int("status", 200))
	logger.Warn("cache miss", logdrain.String("key", "user:42"))

	// Close blocks until everything enqueued above has been replayed.
	a.Close()

	// Output:
	// INFO request handled status=200
	// WARN cache miss key=user:42
}

func ExampleLogger_With() {
	sink := logdrain.SinkFunc(func(r *logdrain.Record, kv *logdrain.Context) error {
		fmt.Printf("%s", r.Message)
		kv.Visit(func(f logdrain.Field) {
			fmt.Printf(" %s=%v", f.Key, f.Value())
		})
		fmt.Println()
		return nil
	})

	base := logdrain.NewLogger(sink, logdrain.WithSourceCapture(false))
	request := base.With(logdrain.String("request_id", "r-7"))

	request.Info("accepted")
	request.Info("completed")

	// Output:
	// accepted request_id=r-7
	// completed request_id=r-7
}
