package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, "fact_check_history.csv", cfg.History.Path)
	assert.True(t, cfg.API.GoogleSearch)
	assert.False(t, cfg.Sources.VerifyLinks)
	assert.False(t, cfg.Cache.Enabled)
	assert.True(t, cfg.Sources.RespectRobots)
}

func TestConfig_Validate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }, "MaxAttempts"},
		{"unknown provider", func(c *Config) { c.API.Provider = "bard" }, "Provider"},
		{"no timeout", func(c *Config) { c.API.Timeout = 0 }, "Timeout"},
		{"bad base url", func(c *Config) { c.API.BaseURL = "not a url" }, "BaseURL"},
		{"no history path", func(c *Config) { c.History.Path = "" }, "Path"},
		{"no workers", func(c *Config) { c.Concurrency.Workers = 0 }, "Workers"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "Level"},
		{"bad source domain", func(c *Config) { c.Sources.PrimaryDomains = []string{"not a host"} }, "PrimaryDomains"},
		{"no link workers", func(c *Config) { c.Sources.LinkWorkers = 0 }, "LinkWorkers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestConfig_Redacted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.APIKey = "secret"

	red := cfg.Redacted()
	assert.Equal(t, "********", red.API.APIKey)
	assert.Equal(t, "secret", cfg.API.APIKey, "original must not change")
}

func TestNormalizeClaim(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t "} {
		_, ok := NormalizeClaim(raw)
		assert.False(t, ok, "claim %q should be empty", raw)
	}

	claim, ok := NormalizeClaim("  The moon is made of cheese.\n")
	assert.True(t, ok)
	assert.Equal(t, "The moon is made of cheese.", claim)
}

func TestParseVerdict(t *testing.T) {
	v, ok := ParseVerdict("Yes")
	assert.True(t, ok)
	assert.Equal(t, VerdictYes, v)

	_, ok = ParseVerdict("maybe")
	assert.False(t, ok)
}
