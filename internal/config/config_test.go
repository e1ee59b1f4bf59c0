package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pipgrid/pkg/board"
	"github.com/matzehuels/pipgrid/pkg/errors"
)

// isolate points every XDG directory at a temp dir so tests never read the
// developer's real config.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
	assert.Equal(t, BackendFile, cfg.Cache.Backend)
	assert.Equal(t, filepath.Join(dir, "cache", AppName), cfg.Cache.Dir)
	assert.Equal(t, board.DefaultGeometry(), cfg.Geometry())
}

func TestLoadDefaultFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config", AppName, "config.toml"), `
[server]
base_url = "https://pipgrid.example.com/"

[cache]
backend = "none"
ttl = "2h"

[board]
pip_size = 16.0
`)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://pipgrid.example.com/", cfg.Server.BaseURL)
	assert.Equal(t, ":8080", cfg.Server.Addr, "unset keys keep defaults")
	assert.Equal(t, BackendNone, cfg.Cache.Backend)
	assert.Equal(t, 2*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 16.0, cfg.Board.PipSize)
	assert.Equal(t, "https://pipgrid.example.com/s/5KE", cfg.ShareURL("5KE"))
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.toml")
	writeFile(t, path, `
[server]
addr = ":9000"

[cache]
backend = "file"
`)
	t.Setenv("PIPGRID_SERVER_ADDR", ":9100")
	t.Setenv("PIPGRID_CACHE_BACKEND", "redis")
	t.Setenv("PIPGRID_REDIS_ADDR", "localhost:6379")
	t.Setenv("PIPGRID_CACHE_TTL", "90m")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.Server.Addr)
	assert.Equal(t, BackendRedis, cfg.Cache.Backend)
	assert.Equal(t, "localhost:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, 90*time.Minute, cfg.Cache.TTL)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{name: "unknown key", file: "[server]\nport = 80\n"},
		{name: "syntax", file: "[server\n"},
		{name: "bad backend", file: "[cache]\nbackend = \"memcached\"\n"},
		{name: "redis without addr", file: "[cache]\nbackend = \"redis\"\n"},
		{name: "relative base url", file: "[server]\nbase_url = \"/pipgrid\"\n"},
		{name: "small cells", file: "[board]\ncell_width = 100.0\n"},
		{name: "bad env", file: "", env: map[string]string{"PIPGRID_PIP_SIZE": "large"}},
		{name: "negative ttl", file: "", env: map[string]string{"PIPGRID_CACHE_TTL": "-1m"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			path := filepath.Join(dir, "config.toml")
			writeFile(t, path, tt.file)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "got %v", err)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "nope.toml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
}

func TestWriteRoundTrip(t *testing.T) {
	dir := isolate(t)
	cfg := Default()
	cfg.Server.Addr = ":7000"
	cfg.Cache.Backend = BackendNone

	var buf bytes.Buffer
	require.NoError(t, cfg.Write(&buf))

	path := filepath.Join(dir, "written.toml")
	writeFile(t, path, buf.String())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", loaded.Server.Addr)
	assert.Equal(t, BackendNone, loaded.Cache.Backend)
	assert.Equal(t, cfg.Server.ShutdownTimeout, loaded.Server.ShutdownTimeout)
}

func TestParseEnvError(t *testing.T) {
	var cfg struct {
		Port int `env:"PIPGRID_TEST_PORT"`
	}
	t.Setenv("PIPGRID_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/xdg", AppName, "config.toml"), path)
}
