package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/groundcheck/internal/model"
)

func TestConfig_Defaults(t *testing.T) {
	cfg, err := Config(model.DefaultConfig().Logging)
	require.NoError(t, err)

	assert.Equal(t, "console", cfg.Encoding)
	assert.Equal(t, zapcore.InfoLevel, cfg.Level.Level())
	assert.Equal(t, []string{"stderr"}, cfg.OutputPaths)
}

func TestConfig_VerboseForcesDebug(t *testing.T) {
	cfg, err := Config(model.LoggingConfig{Level: "warn", Format: "json", Verbose: true})
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Encoding)
	assert.Equal(t, zapcore.DebugLevel, cfg.Level.Level())
}

func TestConfig_Rejects(t *testing.T) {
	_, err := Config(model.LoggingConfig{Level: "loud"})
	assert.Error(t, err)

	_, err = Config(model.LoggingConfig{Format: "xml"})
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	logger, err := New(model.LoggingConfig{Level: "error", Format: "json"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.ErrorLevel))
}
