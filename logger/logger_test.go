package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewHonoursLevel(t *testing.T) {
	log := New("warn")
	if log.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("info must be disabled at warn level")
	}
	if !log.Core().Enabled(zapcore.WarnLevel) {
		t.Fatal("warn must be enabled at warn level")
	}
}

func TestNewFallsBackToInfo(t *testing.T) {
	log := New("loud")
	if log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("unknown level must fall back to info")
	}
	if !log.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("info must be enabled")
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("expected a logger")
	}
}
