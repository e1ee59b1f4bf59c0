// Package config loads pipgrid settings.
//
// Values are resolved in three layers, later layers winning:
//
//  1. built-in defaults ([Default])
//  2. the TOML file at $XDG_CONFIG_HOME/pipgrid/config.toml, or --config
//  3. PIPGRID_* environment variables
//
// Example file:
//
//	[server]
//	addr = ":8080"
//	base_url = "https://pipgrid.example.com"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
//	[board]
//	pip_size = 20.0
package config

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/matzehuels/pipgrid/pkg/board"
	"github.com/matzehuels/pipgrid/pkg/errors"
)

// AppName names the config and cache directories.
const AppName = "pipgrid"

// Cache backends.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config is the complete configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`
	Board  BoardConfig  `toml:"board"`
}

// ServerConfig configures `pipgrid serve`.
type ServerConfig struct {
	Addr            string        `toml:"addr" env:"PIPGRID_SERVER_ADDR"`
	BaseURL         string        `toml:"base_url" env:"PIPGRID_BASE_URL"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" env:"PIPGRID_SHUTDOWN_TIMEOUT"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend   string        `toml:"backend" env:"PIPGRID_CACHE_BACKEND"`
	Dir       string        `toml:"dir" env:"PIPGRID_CACHE_DIR"`
	RedisAddr string        `toml:"redis_addr" env:"PIPGRID_REDIS_ADDR"`
	KeyPrefix string        `toml:"key_prefix" env:"PIPGRID_CACHE_KEY_PREFIX"`
	TTL       time.Duration `toml:"ttl" env:"PIPGRID_CACHE_TTL"` // overrides per-stage lifetimes when positive
}

// BoardConfig sets the board geometry.
type BoardConfig struct {
	CellWidth  float64 `toml:"cell_width" env:"PIPGRID_CELL_WIDTH"`
	CellHeight float64 `toml:"cell_height" env:"PIPGRID_CELL_HEIGHT"`
	PipSize    float64 `toml:"pip_size" env:"PIPGRID_PIP_SIZE"`
}

// Default returns the built-in configuration.
func Default() *Config {
	geom := board.DefaultGeometry()
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			BaseURL:         "http://localhost:8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			Backend:   BackendFile,
			KeyPrefix: AppName + ":",
		},
		Board: BoardConfig{
			CellWidth:  geom.CellWidth,
			CellHeight: geom.CellHeight,
			PipSize:    geom.PipSize,
		},
	}
}

// Load resolves the configuration. An empty path means DefaultPath, which
// may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "locate config")
		}
		path = p
	}

	// A missing default file means defaults plus environment.
	if err := cfg.readFile(path); err != nil && (explicit || !os.IsNotExist(err)) {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	if err := ParseEnv(cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "environment")
	}
	if cfg.Cache.Dir == "" {
		dir, err := DefaultCacheDir()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "locate cache dir")
		}
		cfg.Cache.Dir = dir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// ParseEnv applies PIPGRID_* overrides to target. Unset variables leave
// fields untouched.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr is required")
	}
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.base_url must be an absolute http(s) URL, got %q", c.Server.BaseURL)
	}
	if c.Server.ShutdownTimeout < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.shutdown_timeout must not be negative")
	}

	switch c.Cache.Backend {
	case BackendNone, BackendFile:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be none, file or redis, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}

	return c.Geometry().Validate()
}

// Geometry returns the board geometry.
func (c *Config) Geometry() board.Geometry {
	return board.Geometry{
		CellWidth:  c.Board.CellWidth,
		CellHeight: c.Board.CellHeight,
		PipSize:    c.Board.PipSize,
	}
}

// ShareURL returns the share link for token.
func (c *Config) ShareURL(token string) string {
	return strings.TrimRight(c.Server.BaseURL, "/") + "/s/" + url.PathEscape(token)
}

// Write encodes c as TOML.
func (c *Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// =============================================================================
// Paths
// =============================================================================

// DefaultPath returns $XDG_CONFIG_HOME/pipgrid/config.toml, falling back to
// ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// DefaultCacheDir returns $XDG_CACHE_HOME/pipgrid, falling back to ~/.cache.
func DefaultCacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
