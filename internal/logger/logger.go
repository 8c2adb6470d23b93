// Package logger builds the service's structured loggers and records
// security events without leaking credentials.
package logger

import (
	"io"
	"log/slog"
)

// New returns a JSON logger writing to w at level
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
