// Package logger provides leveled logging with support for debug, info, warn, and error levels.
// It wraps a zap SugaredLogger so callers keep a printf-style API while output is structured.
//
// Components that need a logger receive a *Logger at construction. The package-level
// functions operate on a default instance and are meant for cmd/ entry points.
package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents a logging level
type Level int

const (
	// DebugLevel logs are typically voluminous, and are usually disabled in production.
	DebugLevel Level = iota
	// InfoLevel is the default logging priority.
	InfoLevel
	// WarnLevel logs are more important than Info, but don't need individual human review.
	WarnLevel
	// ErrorLevel logs are high-priority. If an application is running smoothly, it shouldn't generate any error-level logs.
	ErrorLevel
)

// ParseLevel maps a level name to a Level. Unknown names map to InfoLevel.
func ParseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Logger provides leveled logging
type Logger struct {
	level Level
	sugar *zap.SugaredLogger
}

var defaultLogger *Logger

// New builds a Logger writing to stderr. format is "json" or "text".
func New(level string, format string) *Logger {
	l := ParseLevel(level)
	return NewWithCore(l, newCore(l, format, zapcore.Lock(os.Stderr)))
}

// NewWithCore builds a Logger on top of an existing zap core. Tests use this with an
// observer core to capture entries.
func NewWithCore(level Level, core zapcore.Core) *Logger {
	return &Logger{
		level: level,
		sugar: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar(),
	}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{level: ErrorLevel + 1, sugar: zap.NewNop().Sugar()}
}

func newCore(level Level, format string, out zapcore.WriteSyncer) zapcore.Core {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if strings.ToLower(format) == "text" {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}
	return zapcore.NewCore(enc, out, level.zapLevel())
}

// Init initializes the default logger with the specified level and format
func Init(level string, format string) {
	defaultLogger = New(level, format)
}

// Default returns the package-level logger, or a no-op logger when Init was never called.
func Default() *Logger {
	if defaultLogger == nil {
		return Nop()
	}
	return defaultLogger
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	if l == nil {
		return nil
	}
	return l.sugar.Sync()
}

// Debug logs a message at DebugLevel
func (l *Logger) Debug(format string, args ...interface{}) {
	if l != nil && l.level <= DebugLevel {
		l.sugar.Debugf(format, args...)
	}
}

// Info logs a message at InfoLevel
func (l *Logger) Info(format string, args ...interface{}) {
	if l != nil && l.level <= InfoLevel {
		l.sugar.Infof(format, args...)
	}
}

// Warn logs a message at WarnLevel
func (l *Logger) Warn(format string, args ...interface{}) {
	if l != nil && l.level <= WarnLevel {
		l.sugar.Warnf(format, args...)
	}
}

// Error logs a message at ErrorLevel
func (l *Logger) Error(format string, args ...interface{}) {
	if l != nil && l.level <= ErrorLevel {
		l.sugar.Errorf(format, args...)
	}
}

// Debug logs a message at DebugLevel on the default logger
func Debug(format string, args ...interface{}) {
	Default().Debug(format, args...)
}

// Info logs a message at InfoLevel on the default logger
func Info(format string, args ...interface{}) {
	Default().Info(format, args...)
}

// Warn logs a message at WarnLevel on the default logger
func Warn(format string, args ...interface{}) {
	Default().Warn(format, args...)
}

// Error logs a message at ErrorLevel on the default logger
func Error(format string, args ...interface{}) {
	Default().Error(format, args...)
}

// Fatal logs a message at ErrorLevel and exits
func Fatal(format string, args ...interface{}) {
	msg := fmt.Sprintf("[FATAL] "+format, args...)
	if defaultLogger != nil {
		defaultLogger.sugar.Error(msg)
		_ = defaultLogger.sugar.Sync()
	} else {
		fmt.Fprintln(os.Stderr, msg)
	}
	os.Exit(1)
}
