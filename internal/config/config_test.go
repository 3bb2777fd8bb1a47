package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/boardgen/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default().Board, cfg.Board)
	assert.Equal(t, "static", cfg.Provider.Kind)
	assert.Equal(t, 3, cfg.RetryPolicy().MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.RetryPolicy().MaxBackoff)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "boardgen.yaml", `
board:
  topic: Rivers
  sections: 6
  cellsPerSection: 4
  scale: 200
retry:
  maxAttempts: 5
  initialBackoff: 250ms
  maxBackoff: 4s
store:
  kind: memory
logLevel: debug
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Rivers", cfg.Board.Topic)
	assert.Equal(t, 6, cfg.Board.Sections)
	assert.Equal(t, 200, cfg.Board.Scale)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.InitialBackoff)
	assert.Equal(t, "memory", cfg.Store.Kind)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Untouched sections keep defaults.
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "boardgen.json", `{"board":{"sections":2,"cellsPerSection":2,"scale":50}}`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Board.Scale)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "boardgen.yaml", "board:\n  topic: Rivers\n")
	t.Setenv("BOARDGEN_BOARD_TOPIC", "Lakes")
	t.Setenv("BOARDGEN_PROVIDER_KIND", "openai")
	t.Setenv("BOARDGEN_PROVIDER_API_KEY", "sk-test")
	t.Setenv("BOARDGEN_RETRY_MAX_ATTEMPTS", "7")
	t.Setenv("BOARDGEN_STORE_KIND", "redis")
	t.Setenv("BOARDGEN_STORE_REDIS_ADDR", "localhost:6379")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Lakes", cfg.Board.Topic)
	assert.Equal(t, "openai", cfg.Provider.Kind)
	assert.Equal(t, "sk-test", cfg.Provider.APIKey)
	assert.Equal(t, 7, cfg.Retry.MaxAttempts)
	assert.Equal(t, "localhost:6379", cfg.Store.RedisAddr)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero sections", "board:\n  sections: 0\n"},
		{"unknown provider", "provider:\n  kind: oracle\n"},
		{"openai without key", "provider:\n  kind: openai\n"},
		{"redis without addr", "store:\n  kind: redis\n"},
		{"backoff inverted", "retry:\n  initialBackoff: 5s\n  maxBackoff: 1s\n"},
		{"bad log level", "logLevel: loud\n"},
	}
	t.Setenv("OPENAI_API_KEY", "")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeFile(t, "boardgen.yaml", tt.content))
			assert.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}
}

func TestWrite_OmitsSecrets(t *testing.T) {
	cfg := config.Default()
	cfg.Provider.APIKey = "sk-secret"
	path := filepath.Join(t.TempDir(), "nested", "boardgen.yaml")
	require.NoError(t, cfg.Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sk-secret")

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Board, loaded.Board)
	assert.Equal(t, cfg.Retry, loaded.Retry)
}
