package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Positive(t, cfg.Workers)
}

func TestLoadFromFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "seed: 7\nyears: 5\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 5, cfg.Years)
	assert.Equal(t, Default().Households, cfg.Households)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = LoadFromFile(writeConfig(t, "seed: [not, a, number]\n"))
	require.Error(t, err)
}

func TestLoadOrder(t *testing.T) {
	path := writeConfig(t, "seed: 7\nyears: 5\nhouseholds: 10\n")
	t.Setenv("HHSIM_YEARS", "12")
	t.Setenv("HHSIM_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Seed, "file beats default")
	assert.Equal(t, 12, cfg.Years, "environment beats file")
	assert.Equal(t, 10, cfg.Households)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("HHSIM_DATABASE", "/tmp/out.db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out.db", cfg.Database)
}

func TestBadEnvironment(t *testing.T) {
	t.Setenv("HHSIM_WORKERS", "many")
	_, err := Load("")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative households", func(c *Config) { c.Households = -1 }},
		{"negative years", func(c *Config) { c.Years = -3 }},
		{"no workers", func(c *Config) { c.Workers = 0 }},
		{"no database", func(c *Config) { c.Database = "" }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
		{"negative sample rate", func(c *Config) { c.SamplesPerMinute = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestCORSOriginsFromEnv(t *testing.T) {
	t.Setenv("HHSIM_CORS_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("HHSIM_LISTEN", "127.0.0.1:9000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, "127.0.0.1:9000", cfg.Listen)
}
