// SPDX-License-Identifier: MIT

// Package logging builds the leveled slog loggers used across the module.
// Library packages never log on their own: callers hand them a logger
// (ensemble.WithLogger) and Discard is the default.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// LevelTrace sits below Debug and enables per-row enforcement detail.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps "trace", "debug", "info", "warn" or "error"
// (case-insensitive) to a slog.Level. Unknown values map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a text-handler logger writing to w at the named level.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if l, ok := a.Value.Any().(slog.Level); ok && l == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// OrDiscard returns l, or Discard when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}

	return l
}
