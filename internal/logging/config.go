// Package logging provides structured logging for rmk.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Level represents log severity levels.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of a log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel converts a string to a Level. Unknown values map to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Config holds logging configuration.
type Config struct {
	// Level is the minimum level for console output.
	Level Level

	// LogDir is the directory for session log files. Empty disables the file sink.
	LogDir string

	// Verbose forces debug-level console output.
	Verbose bool
}

// DefaultLogDir is the default directory for session logs (relative to cwd).
const DefaultLogDir = ".rmk/logs"

// ConfigFromEnv creates a Config from environment variables.
//
// Environment variables:
//   - RMK_DEBUG: "1" enables debug console output
//   - RMK_LOG_LEVEL: console log level (debug, info, warn, error)
//   - RMK_LOG_DIR: override the session log directory
//
// The console defaults to warn so log lines do not interleave with the REPL.
func ConfigFromEnv() Config {
	cfg := Config{
		Level:  LevelWarn,
		LogDir: DefaultLogDir,
	}

	if level := os.Getenv("RMK_LOG_LEVEL"); level != "" {
		cfg.Level = ParseLevel(level)
	}
	if os.Getenv("RMK_DEBUG") == "1" {
		cfg.Level = LevelDebug
	}
	if dir := os.Getenv("RMK_LOG_DIR"); dir != "" {
		cfg.LogDir = dir
	}

	return cfg
}

// WithVerbose returns a copy of the config with verbose mode enabled.
func (c Config) WithVerbose(enabled bool) Config {
	c.Verbose = enabled
	if enabled {
		c.Level = LevelDebug
	}
	return c
}

// WithLevel returns a copy of the config with the specified level.
func (c Config) WithLevel(level Level) Config {
	c.Level = level
	return c
}
