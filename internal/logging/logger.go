// Package logging configures slog for the service: JSON to stdout, a fan-out
// handler, an audit sink for ERROR+ records, and the retention sweep for it.
package logging

import (
	"log/slog"
	"os"
)

// Setup installs the default JSON logger. main swaps it for a MultiHandler
// once the database is up, so the audit sink can join in.
func Setup() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}
