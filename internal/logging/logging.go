// Package logging builds the process logger. Logs go to stderr so that
// stdout carries only check output.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/groundcheck/internal/model"
)

// New builds a logger from cfg. Verbose forces debug level.
func New(cfg model.LoggingConfig) (*zap.Logger, error) {
	config, err := Config(cfg)
	if err != nil {
		return nil, err
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// Config returns the zap configuration New would build
func Config(cfg model.LoggingConfig) (zap.Config, error) {
	config := zap.NewProductionConfig()

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return zap.Config{}, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}
	if cfg.Verbose {
		level = zapcore.DebugLevel
	}
	config.Level = zap.NewAtomicLevelAt(level)

	switch cfg.Format {
	case "", "json":
	case "console":
		config.Encoding = "console"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		config.DisableStacktrace = !cfg.Verbose
	default:
		return zap.Config{}, fmt.Errorf("unknown log format %q (supported: json, console)", cfg.Format)
	}

	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	return config, nil
}
