package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.False(t, cfg.UsesRedis())
}

func TestLoad_FileThenDotEnvThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yamlPath := filepath.Join(dir, "psdrun.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
server:
  addr: ":9000"
  async_render: true
  cors_origins: ["http://a"]
sessions:
  backend: file
  path: /tmp/s
hints:
  backend: redis
  redact_patterns: ["secret"]
log:
  level: debug
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PSDRUN_REDIS_PREFIX=fromdotenv:\nPSDRUN_ADDR=:9100\n"), 0o644))
	// godotenv exports what it loads; undo it for the following tests.
	t.Cleanup(func() { os.Unsetenv("PSDRUN_REDIS_PREFIX") })
	t.Setenv("PSDRUN_ADDR", ":9200")
	t.Setenv("PSDRUN_HINTS_EXPIRATION", "90s")
	t.Setenv("PSDRUN_CORS_ORIGINS", "http://b, http://c")

	cfg, err := Load(yamlPath)
	require.NoError(t, err)

	assert.Equal(t, ":9200", cfg.Server.Addr, "the process environment wins over .env")
	assert.True(t, cfg.Server.AsyncRender)
	assert.Equal(t, []string{"http://b", "http://c"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "fromdotenv:", cfg.Redis.Prefix)
	assert.Equal(t, BackendFile, cfg.Sessions.Backend)
	assert.Equal(t, "/tmp/s", cfg.Sessions.Path)
	assert.Equal(t, BackendRedis, cfg.Hints.Backend)
	assert.Equal(t, 90*time.Second, cfg.Hints.Expiration)
	assert.Equal(t, []string{"secret"}, cfg.Hints.RedactPatterns)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.UsesRedis())
}

func TestLoad_Errors(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load("missing.yaml")
	assert.Error(t, err)

	t.Setenv("PSDRUN_REDIS_DB", "zero")
	_, err = Load("")
	assert.ErrorContains(t, err, "PSDRUN_REDIS_DB")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"redis sessions", func(c *Config) { c.Sessions.Backend = BackendRedis }, false},
		{"bad sessions backend", func(c *Config) { c.Sessions.Backend = "sqlite" }, true},
		{"bad hints backend", func(c *Config) { c.Hints.Backend = "" }, true},
		{"json logs", func(c *Config) { c.Log.Format = "JSON" }, false},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}
