// Package telemetry builds the zap logger that cmd/mixerctl hands to
// the mixer's non-realtime packages (host, reaper). Nothing in this
// package is ever called from the mixer's Tick: logging belongs
// around the hot loop, not inside it.
package telemetry

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger at the given level. An empty level defaults to
// info, so an empty config.Config.LogLevel still yields a working
// logger.
func New(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if level == "" {
		lvl = zapcore.InfoLevel
	} else if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	return cfg.Build()
}

// Nop returns a logger that discards everything, for tests and
// callers that don't want to wire a real sink.
func Nop() *zap.Logger {
	return zap.NewNop()
}
