package utils

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLogLevel parses a string log level into a slog.Level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
}

// SetupLogging builds a structured text logger at the given level and
// installs it as the process default. Unknown levels fall back to INFO.
func SetupLogging(level string, output io.Writer) *slog.Logger {
	if output == nil {
		output = os.Stderr
	}
	lvl, err := ParseLogLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}
