// Package logging provides structured logging for rmk on top of zap.
//
// Two sinks are teed together:
//   - Console (stderr): human-readable, filtered by Config.Level
//   - File (.rmk/logs/session_<ts>.log): JSON lines, always at debug
//
// Usage:
//
//	log, err := logging.Init(logging.ConfigFromEnv())
//	if err != nil {
//	    // handle error
//	}
//	defer log.Close()
//
//	log.Info("starting session", logging.SessionID(id))
//	log.Event(logging.EventToolStart, logging.ToolName("bash"))
package logging

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap logger with the rmk field helpers and session metrics.
type Logger struct {
	z       *zap.Logger
	level   zap.AtomicLevel
	file    *os.File
	logPath string
	metrics *Metrics
	prefix  string
}

var (
	globalLogger *Logger
	globalMu     sync.RWMutex
)

// Init initializes the global logger with the given configuration.
func Init(cfg Config) (*Logger, error) {
	logger, err := New(cfg)
	if err != nil {
		return nil, err
	}

	globalMu.Lock()
	globalLogger = logger
	globalMu.Unlock()
	return logger, nil
}

// New creates a Logger writing to stderr and, when cfg.LogDir is set, to a
// session file.
func New(cfg Config) (*Logger, error) {
	consoleLevel := cfg.Level
	if cfg.Verbose {
		consoleLevel = LevelDebug
	}
	level := zap.NewAtomicLevelAt(consoleLevel.zapLevel())

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encCfg.CallerKey = ""
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level),
	}

	l := &Logger{level: level, metrics: NewMetrics()}

	if cfg.LogDir != "" {
		file, path, err := openSessionFile(cfg.LogDir)
		if err != nil {
			return nil, err
		}
		l.file = file
		l.logPath = path
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(file),
			zapcore.DebugLevel,
		))
	}

	l.z = zap.New(zapcore.NewTee(cores...))
	return l, nil
}

// NewWithCore builds a Logger over an arbitrary zap core. Tests use it with
// zaptest/observer.
func NewWithCore(core zapcore.Core) *Logger {
	return &Logger{
		z:       zap.New(core),
		level:   zap.NewAtomicLevelAt(zapcore.DebugLevel),
		metrics: NewMetrics(),
	}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return NewWithCore(zapcore.NewNopCore())
}

// Global returns the global logger, or a no-op logger if Init has not run.
func Global() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger == nil {
		return Nop()
	}
	return globalLogger
}

// WithPrefix returns a logger whose entries are named prefix.
func (l *Logger) WithPrefix(prefix string) *Logger {
	if l == nil {
		return nil
	}
	c := *l
	c.prefix = prefix
	c.z = l.z.Named(prefix)
	return &c
}

// With returns a logger that adds fields to every entry.
func (l *Logger) With(fields ...Field) *Logger {
	if l == nil {
		return nil
	}
	c := *l
	c.z = l.z.With(toZap(fields)...)
	return &c
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...Field) {
	if l == nil {
		return
	}
	l.z.Debug(msg, toZap(fields)...)
}

// Info logs an informational message.
func (l *Logger) Info(msg string, fields ...Field) {
	if l == nil {
		return
	}
	l.z.Info(msg, toZap(fields)...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...Field) {
	if l == nil {
		return
	}
	l.z.Warn(msg, toZap(fields)...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...Field) {
	if l == nil {
		return
	}
	l.z.Error(msg, toZap(fields)...)
}

// Event logs a named event at debug level.
func (l *Logger) Event(event string, fields ...Field) {
	if l == nil {
		return
	}
	l.z.Debug(event, append(toZap(fields), zap.String("event", event))...)
}

// Metrics returns the session metrics collector.
func (l *Logger) Metrics() *Metrics {
	if l == nil {
		return nil
	}
	return l.metrics
}

// LogPath returns the session log file path, or "" without a file sink.
func (l *Logger) LogPath() string {
	if l == nil {
		return ""
	}
	return l.logPath
}

// SetLevel changes the console level at runtime.
func (l *Logger) SetLevel(level Level) {
	if l == nil {
		return
	}
	l.level.SetLevel(level.zapLevel())
}

// IsDebugEnabled reports whether debug entries reach the console.
func (l *Logger) IsDebugEnabled() bool {
	if l == nil {
		return false
	}
	return l.level.Enabled(zapcore.DebugLevel)
}

// Zap exposes the underlying zap logger.
func (l *Logger) Zap() *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l.z
}

// Close writes the session summary, flushes and closes the file sink.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.z.Debug(EventSessionEnd, zap.String("event", EventSessionEnd), zap.Any("metrics", l.metrics.Snapshot()))
	_ = l.z.Sync()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Debug logs a debug message to the global logger.
func Debug(msg string, fields ...Field) { Global().Debug(msg, fields...) }

// Info logs an informational message to the global logger.
func Info(msg string, fields ...Field) { Global().Info(msg, fields...) }

// Warn logs a warning message to the global logger.
func Warn(msg string, fields ...Field) { Global().Warn(msg, fields...) }

// LogError logs an error message to the global logger.
func LogError(msg string, fields ...Field) { Global().Error(msg, fields...) }

// LogEvent logs an event to the global logger.
func LogEvent(event string, fields ...Field) { Global().Event(event, fields...) }
