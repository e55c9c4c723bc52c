package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, k := range []string{"TODO_API_URL", "TODO_LIMIT", "TODO_OWNER_ID", "TODO_TIMEOUT",
		"TODO_THEME", "TODO_LOG_LEVEL", "TODO_LOG_FORMAT", "TODO_LOG_FILE", "TODO_RECONCILE_IDS"} {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, 10, cfg.Limit)
	assert.Equal(t, 1, cfg.OwnerID)
	assert.Zero(t, cfg.Timeout.Duration)
	assert.Equal(t, time.Minute, cfg.StaleTime.Duration)
	assert.True(t, cfg.ReconcileIDs)
	assert.Empty(t, cfg.Path)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "todo", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`
api_url = "http://localhost:8080"
limit = 25
timeout = "5s"
theme = "neon"
reconcile_ids = false
`), 0o644))

	t.Setenv("TODO_LIMIT", "3")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "http://localhost:8080", cfg.APIURL)
	assert.Equal(t, 3, cfg.Limit)
	assert.Equal(t, 5*time.Second, cfg.Timeout.Duration)
	assert.Equal(t, "neon", cfg.Theme)
	assert.False(t, cfg.ReconcileIDs)
	assert.Equal(t, DefaultOwnerID, cfg.OwnerID)
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestLoad_BadEnv(t *testing.T) {
	isolate(t)
	t.Setenv("TODO_OWNER_ID", "abc")
	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative url", func(c *Config) { c.APIURL = "todos" }},
		{"negative limit", func(c *Config) { c.Limit = -1 }},
		{"negative timeout", func(c *Config) { c.Timeout.Duration = -time.Second }},
		{"negative stale time", func(c *Config) { c.StaleTime.Duration = -time.Second }},
		{"unknown theme", func(c *Config) { c.Theme = "rainbow" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestEncode(t *testing.T) {
	out, err := Default().Encode()
	require.NoError(t, err)
	assert.Contains(t, out, `api_url = "https://jsonplaceholder.typicode.com"`)
	assert.Contains(t, out, `stale_time = "1m0s"`)
}

func TestLoad_DefersValidation(t *testing.T) {
	isolate(t)
	t.Setenv("TODO_API_URL", "not-a-url")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "not-a-url", cfg.APIURL)
	assert.Error(t, cfg.Validate())

	cfg.APIURL = "http://127.0.0.1:1"
	assert.NoError(t, cfg.Validate())
}
