package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "vault.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "Python", cfg.Tutor.DefaultLanguage)
	assert.True(t, cfg.UsesDevSecret())
	assert.Equal(t, 3, cfg.LLM.Retry.MaxAttempts)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	p := writeConfig(t, `
app:
  env: test
  log_level: debug
  log_format: text
server:
  addr: "127.0.0.1:9000"
auth:
  jwt_secret: "0123456789abcdef0123456789abcdef"
  token_ttl: 1h
tutor:
  default_language: Go
  generation_timeout: 20s
llm:
  provider: mock
`)
	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "Go", cfg.Tutor.DefaultLanguage)
	assert.Equal(t, 20*time.Second, cfg.Tutor.GenerationTimeout)
	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.False(t, cfg.UsesDevSecret())
	// Untouched sections keep defaults.
	assert.Equal(t, 2048, cfg.Tutor.MaxTokens)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	p := writeConfig(t, "server:\n  addr: \":7000\"\n")
	t.Setenv("VAULT_ADDR", ":7100")
	t.Setenv("VAULT_LLM_PROVIDER", "mock")
	t.Setenv("VAULT_CORS_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, ":7100", cfg.Server.Addr)
	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("VAULT_ENV", "production")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWTSecret")
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	p := writeConfig(t, `
app:
  log_level: loud
llm:
  provider: carrier-pigeon
`)
	_, err := Load(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LogLevel")
	assert.Contains(t, err.Error(), "Provider")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLevel("debug").String())
	assert.Equal(t, "WARN", parseLevel("warn").String())
	assert.Equal(t, "INFO", parseLevel("nonsense").String())
}
