package logging

import (
	"go.uber.org/zap"
)

// NewLogger builds the logger used by the CLI and integration helpers.
// Verbose drops the level to debug; the default shows warnings and errors
// only, so query output stays readable on a terminal.
func NewLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, _ := cfg.Build()
	return logger
}
