// Package logging builds the process-wide slog logger: colorized console
// output for dev builds, JSON for released ones.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/parth2411/sepa-iot-platform/internal/version"
)

// New creates the logger for one binary and installs it as the slog
// default.
func New(level slog.Level, app string) *slog.Logger {
	var logger *slog.Logger
	if version.Version == "dev" {
		h := tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
		logger = slog.New(h).With("app", app)
	} else {
		h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
		logger = slog.New(h).With("app", app, "version", version.Version)
	}
	slog.SetDefault(logger)
	return logger
}

// ParseLevel reads a log level name.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q (allowed: debug, info, warn, error)", s)
	}
}
