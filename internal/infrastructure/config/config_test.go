package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirchez/transaction-reconciler-sub001/internal/infrastructure/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
storage:
  database_path: /tmp/recon.db
scoring:
  provider: openai
  accept_threshold: 75
openai:
  api_key: sk-test
  model: gpt-4o
api:
  port: 9090
  allowed_origins:
    - http://localhost:4000
observability:
  logging:
    level: debug
    format: json
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/recon.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "openai", cfg.Scoring.Provider)
	assert.Equal(t, 75, cfg.Scoring.AcceptThreshold)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, []string{"http://localhost:4000"}, cfg.API.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
}

func TestLoad_ExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-from-env")
	path := writeConfig(t, `
openai:
  api_key: ${TEST_OPENAI_KEY}
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", cfg.OpenAI.APIKey)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{}`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "reconciler.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "heuristic", cfg.Scoring.Provider)
	assert.Equal(t, 60, cfg.Scoring.AcceptThreshold)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
}

func TestLoad_Validation(t *testing.T) {
	t.Run("threshold out of range", func(t *testing.T) {
		path := writeConfig(t, `
scoring:
  accept_threshold: 150
`)
		_, err := config.Load(path)
		assert.Error(t, err)
	})

	t.Run("unknown provider", func(t *testing.T) {
		path := writeConfig(t, `
scoring:
  provider: psychic
`)
		_, err := config.Load(path)
		assert.Error(t, err)
	})
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RECONCILER_DB_PATH", "/data/recon.db")
	t.Setenv("SCORING_PROVIDER", "none")
	t.Setenv("SCORING_ACCEPT_THRESHOLD", "80")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("PORT", "3001")

	cfg := config.LoadFromEnv()

	assert.Equal(t, "/data/recon.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "none", cfg.Scoring.Provider)
	assert.Equal(t, 80, cfg.Scoring.AcceptThreshold)
	assert.Equal(t, "sk-env", cfg.OpenAI.APIKey)
	assert.Equal(t, 3001, cfg.API.Port)
}
