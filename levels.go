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
	"fmt"
	"log/slog"
	"strings"
)

// Level represents the severity of a log event. The integer values are
// compatible with slog.Level so that the two can be converted freely, with
// extra levels interleaved above Error for alerting-grade severities.
type Level int

// Severity constants, ordered from least to most severe. The spacing matches
// the slog convention so intermediate values remain meaningful.
const (
	// LevelDefault sorts below Debug; events at this level carry no
	// severity judgement at all.
	LevelDefault Level = -8

	// LevelDebug matches slog.LevelDebug.
	LevelDebug Level = Level(slog.LevelDebug) // -4

	// LevelInfo matches slog.LevelInfo and is the zero value.
	LevelInfo Level = Level(slog.LevelInfo) // 0

	// LevelNotice sits between Info and Warn for normal but significant
	// events.
	LevelNotice Level = 2

	// LevelWarn matches slog.LevelWarn.
	LevelWarn Level = Level(slog.LevelWarn) // 4

	// LevelError matches slog.LevelError.
	LevelError Level = Level(slog.LevelError) // 8

	// LevelCritical is above Error.
	LevelCritical Level = 12

	// LevelAlert is above Critical.
	LevelAlert Level = 16

	// LevelEmergency is the highest severity.
	LevelEmergency Level = 20
)

// String returns the canonical name of the level ("DEBUG", "NOTICE",
// "ERROR", ...). Intermediate values render as the nearest lower named level
// plus an offset, such as "INFO+1".
func (l Level) String() string {
	name, base := l.nearest()
	if offset := int(l - base); offset != 0 {
		return fmt.Sprintf("%s+%d", name, offset)
	}
	return name
}

// nearest returns the name and value of the closest named level at or below l.
func (l Level) nearest() (string, Level) {
	switch {
	case l < LevelDefault:
		// Below the named range; fall back to slog's rendering base.
		return slog.Level(l).String(), l
	case l < LevelDebug:
		return "DEFAULT", LevelDefault
	case l < LevelInfo:
		return "DEBUG", LevelDebug
	case l < LevelNotice:
		return "INFO", LevelInfo
	case l < LevelWarn:
		return "NOTICE", LevelNotice
	case l < LevelError:
		return "WARN", LevelWarn
	case l < LevelCritical:
		return "ERROR", LevelError
	case l < LevelAlert:
		return "CRITICAL", LevelCritical
	case l < LevelEmergency:
		return "ALERT", LevelAlert
	default:
		return "EMERGENCY", LevelEmergency
	}
}

// Level returns the underlying slog.Level value, letting Level satisfy the
// slog.Leveler interface so it can be used with slog.HandlerOptions and the
// slogbridge subpackage.
func (l Level) Level() slog.Level {
	return slog.Level(l)
}

// ParseLevel converts a level name such as "debug" or "CRITICAL" to its
// Level value. It accepts the names produced by [Level.String], matched
// case-insensitively, plus "warning" as an alias for WARN.
func ParseLevel(name string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEFAULT":
		return LevelDefault, nil
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "NOTICE":
		return LevelNotice, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	case "CRITICAL":
		return LevelCritical, nil
	case "ALERT":
		return LevelAlert, nil
	case "EMERGENCY":
		return LevelEmergency, nil
	default:
		return LevelInfo, fmt.Errorf("logdrain: unknown level %q", name)
	}
}
