// Package logger builds the structured zap loggers used across goHawcx.
//
// The level is a zap level name (debug, info, warn, error); anything else falls
// back to info:
//
//	log := logger.New("debug")
//	client, err := goHawcx.New().WithLogger(log).WithBridge(bridge).Build()
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a production JSON logger at the given level.
func New(level string) *zap.Logger {
	log, err := build(level)
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func build(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zap.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true

	return cfg.Build(zap.Fields(zap.String("component", "hawcx")))
}

// OrNop returns log, or a no-op logger when log is nil.
func OrNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
