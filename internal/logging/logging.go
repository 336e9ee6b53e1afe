// Package logging constructs the zap logger used by the runner and CI
// packages. CLI-facing output (tables, JSON results) stays on stdout;
// structured logs go to stderr so the two never interleave in pipes.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a console logger writing to stderr. With verbose true the
// level drops to debug, which surfaces per-command execution events.
func New(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true

	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		// The development config only fails on invalid output paths,
		// which cannot happen with the fixed stderr sink.
		return zap.NewNop()
	}
	return logger
}
