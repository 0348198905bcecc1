package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/groundcheck/internal/model"
	"github.com/ppiankov/groundcheck/internal/pipeline"
)

func clearKeys(t *testing.T) {
	t.Helper()
	for _, key := range []string{"GROUNDCHECK_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY", "OPENAI_API_KEY", "GROUNDCHECK_API_MODEL", "GROUNDCHECK_API_PROVIDER", "GROUNDCHECK_RETRY_MAX_ATTEMPTS"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearKeys(t)

	cfg, err := loadConfig(viper.New())
	require.NoError(t, err)

	want := model.DefaultConfig()
	assert.Equal(t, want.API.Model, cfg.API.Model)
	assert.Equal(t, want.API.Timeout, cfg.API.Timeout)
	assert.Equal(t, want.Retry, cfg.Retry)
	assert.Equal(t, want.History.Path, cfg.History.Path)
	assert.Equal(t, want.API.SystemInstruction, cfg.API.SystemInstruction)
	assert.Equal(t, "", cfg.API.APIKey)
}

func TestLoadConfig_Environment(t *testing.T) {
	clearKeys(t)
	t.Setenv("GROUNDCHECK_API_MODEL", "gemini-2.0-flash")
	t.Setenv("GEMINI_API_KEY", "from-env")

	cfg, err := loadConfig(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.0-flash", cfg.API.Model)
	assert.Equal(t, "from-env", cfg.API.APIKey)
}

func TestLoadConfig_ProviderKey(t *testing.T) {
	clearKeys(t)
	t.Setenv("GROUNDCHECK_API_PROVIDER", "openai")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("OPENAI_API_KEY", "openai-key")

	cfg, err := loadConfig(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "openai-key", cfg.API.APIKey)
}

func TestLoadConfig_ExplicitKeyWins(t *testing.T) {
	clearKeys(t)
	t.Setenv("GROUNDCHECK_API_KEY", "explicit")
	t.Setenv("GEMINI_API_KEY", "fallback")

	cfg, err := loadConfig(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.API.APIKey)
}

func TestLoadConfig_File(t *testing.T) {
	clearKeys(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "retry:\n  max_attempts: 5\n  base_delay: 2s\nhistory:\n  path: /tmp/checks.csv\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := loadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Retry.BaseDelay)
	assert.Equal(t, "/tmp/checks.csv", cfg.History.Path)
	assert.Equal(t, model.DefaultConfig().API.Model, cfg.API.Model)
}

func TestLoadConfig_DiskDirDefaultWithExplicitFile(t *testing.T) {
	clearKeys(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  enabled: true\n"), 0o644))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := loadConfig(v)
	require.NoError(t, err)

	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, filepath.Join(home, ".groundcheck", "cache"), cfg.Cache.DiskDir)
}

func TestLoadConfig_Invalid(t *testing.T) {
	clearKeys(t)
	t.Setenv("GROUNDCHECK_RETRY_MAX_ATTEMPTS", "0")

	_, err := loadConfig(viper.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MaxAttempts")
}

func TestLoadDotEnv(t *testing.T) {
	clearKeys(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("GEMINI_API_KEY=dotenv-key\n"), 0o644))

	// godotenv does not override variables that are already set
	require.NoError(t, os.Unsetenv("GEMINI_API_KEY"))
	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "dotenv-key", os.Getenv("GEMINI_API_KEY"))

	assert.Error(t, loadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".groundcheck", "config.yaml")
	require.NoError(t, writeDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Groundcheck Configuration File"))

	var cfg model.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, model.DefaultConfig().Retry, cfg.Retry)
	assert.Equal(t, model.DefaultConfig().API.Timeout, cfg.API.Timeout)

	assert.Error(t, writeDefaultConfig(path), "existing file must not be overwritten")
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "the-moon-is-made-of-cheese", sanitizeFilename("The moon is made of cheese!"))
	assert.Equal(t, "claim", sanitizeFilename("¿¡"))
	assert.LessOrEqual(t, len(sanitizeFilename(strings.Repeat("word ", 40))), 60)
}

func TestFormatEntry(t *testing.T) {
	got := formatEntry(model.HistoryEntry{Status: model.VerdictNo, Response: "First line.\n\n### Citations\n"})
	assert.Equal(t, "No  First line.", got)
}

func TestRepl(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "Verified by NASA."}]}}]}`))
	}))
	defer server.Close()

	cfg := model.DefaultConfig()
	cfg.API.APIKey = "test-key"
	cfg.API.BaseURL = server.URL
	cfg.History.Path = filepath.Join(t.TempDir(), "history.csv")
	cfg.Cache.Enabled = false
	cfg.RateLimiting.RequestsPerSecond = 0

	p, err := pipeline.New(cfg)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, repl(context.Background(), p, strings.NewReader("Men walked on the moon.\n   \n"), &out))

	text := out.String()
	assert.Contains(t, text, "**Yes.** Verified by NASA.")
	assert.Contains(t, text, "(logged to "+cfg.History.Path+")")
	assert.Contains(t, text, model.EmptyClaimMessage)
	assert.Equal(t, 1, strings.Count(text, "(logged to "))
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "groundcheck "+Version+"\n", out.String())
}
