package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads so the host environment
// doesn't leak into assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"QPATH_API_URL", "QPATH_API_TIMEOUT", "QPATH_DB", "QPATH_LOG_LEVEL", "QPATH_LOG_FORMAT",
		"QPATH_MENTOR_MODE", "QPATH_MENTOR_PROVIDER", "QPATH_MENTOR_MAX_ATTEMPTS",
		"QPATH_ANTHROPIC_API_KEY", "QPATH_ANTHROPIC_MODEL",
		"QPATH_OPENAI_API_KEY", "QPATH_OPENAI_MODEL", "QPATH_OPENAI_BASE_URL",
		"QPATH_GEMINI_API_KEY", "QPATH_GEMINI_MODEL",
		"QPATH_OPENROUTER_API_KEY", "QPATH_OPENROUTER_MODEL",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "auto", cfg.Mentor.Mode)
	assert.Empty(t, cfg.Mentor.Provider)
	require.NoError(t, cfg.Validate())
}

func TestLoadFileWithEnvExpansion(t *testing.T) {
	clearEnv(t)
	t.Setenv("QPATH_TEST_KEY", "sk-from-env")

	path := writeConfig(t, `
api:
  base_url: https://qpath.example.com/api/v1
  timeout: 5s
logging:
  level: debug
  format: json
mentor:
  mode: local
  provider: openai
  openai:
    api_key: ${QPATH_TEST_KEY}
    model: gpt-4o-mini
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://qpath.example.com/api/v1", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "sk-from-env", cfg.Mentor.OpenAI.APIKey)
	require.NoError(t, cfg.Validate())
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("QPATH_API_URL", "http://localhost:9000/api/v1")
	t.Setenv("QPATH_API_TIMEOUT", "2s")
	t.Setenv("QPATH_MENTOR_MAX_ATTEMPTS", "5")

	path := writeConfig(t, "api:\n  base_url: http://ignored/api/v1\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/api/v1", cfg.API.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.API.Timeout)
	assert.Equal(t, 5, cfg.Mentor.MaxAttempts)
}

func TestDiscoverProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Mentor.Provider)
	assert.Equal(t, "sk-openai", cfg.Mentor.OpenAI.APIKey)
}

func TestLoadRejectsBadInput(t *testing.T) {
	clearEnv(t)

	_, err := Load(writeConfig(t, "api: [unclosed"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "api:\n  timeout: soon\n"))
	assert.ErrorContains(t, err, "api.timeout")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"relative url", func(c *Config) { c.API.BaseURL = "/api/v1" }, "absolute URL"},
		{"bad mode", func(c *Config) { c.Mentor.Mode = "psychic" }, "unknown mentor mode"},
		{"local without provider", func(c *Config) { c.Mentor.Mode = "local" }, "requires"},
		{"gemini without key", func(c *Config) { c.Mentor.Provider = "gemini" }, "QPATH_GEMINI_API_KEY"},
		{"unknown provider", func(c *Config) { c.Mentor.Provider = "cohere" }, "unknown mentor provider"},
		{"mock needs nothing", func(c *Config) { c.Mentor.Provider = "mock"; c.Mentor.Mode = "local" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefaultPathUsesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "qpath", "config.yaml"), DefaultPath())
}
