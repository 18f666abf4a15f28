package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{"warn", WarnLevel},
		{"error", ErrorLevel},
		{"verbose", InfoLevel},
		{"", InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewWithCore(WarnLevel, core)

	l.Debug("debug %d", 1)
	l.Info("info %d", 2)
	l.Warn("pillar %s failed", "events")
	l.Error("boom")

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "pillar events failed", entries[0].Message)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Equal(t, "boom", entries[1].Message)
	}
}

func TestNilAndNopLoggersAreSafe(t *testing.T) {
	var l *Logger
	l.Info("ignored")
	l.Warn("ignored")
	assert.NoError(t, l.Sync())

	n := Nop()
	n.Error("ignored")
}

func TestDefaultWithoutInit(t *testing.T) {
	defaultLogger = nil
	assert.NotNil(t, Default())
	Info("does not panic")
}
