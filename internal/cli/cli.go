// Package cli implements the pipgrid command-line interface.
//
// # Commands
//
//   - encode: turn a 5×5 grid of counts into a share token
//   - decode: show the grid behind a share token
//   - board: edit a board interactively and print its token
//   - serve: run the share-link HTTP API
//   - cache, config: manage local state
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// is carried in the command context.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pipgrid/internal/config"
	"github.com/matzehuels/pipgrid/pkg/buildinfo"
	"github.com/matzehuels/pipgrid/pkg/cache"
	"github.com/matzehuels/pipgrid/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a CLI whose logger writes to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "pipgrid shares 5×5 grids of 100 pips as short tokens",
		Long: `pipgrid distributes 100 pips over a 5×5 grid of likelihood and impact
buckets and encodes every distribution as a short base-62 token that can be
shared as a link and decoded back to exactly the same grid.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/pipgrid/config.toml)")

	root.AddCommand(c.encodeCommand())
	root.AddCommand(c.decodeCommand())
	root.AddCommand(c.boardCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

func (c *CLI) loadConfig() (*config.Config, error) {
	return config.Load(c.configPath)
}

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(nil, cfg.Cache.KeyPrefix)
	runner := pipeline.NewRunner(ch, keyer, c.Logger)
	runner.TTL = cfg.Cache.TTL
	return runner, nil
}

func (c *CLI) newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.BackendRedis:
		spinner := newSpinnerWithContext(ctx, "Connecting to "+cfg.Cache.RedisAddr+"...")
		spinner.Start()
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisAddr)
		if err != nil {
			spinner.StopWithError("Cache unavailable")
			return nil, err
		}
		spinner.Stop()
		c.Logger.Debug("using redis cache", "addr", cfg.Cache.RedisAddr)
		return rc, nil
	case config.BackendFile:
		fc, err := cache.NewFileCache(cfg.Cache.Dir)
		if err != nil {
			// An unwritable cache directory should not stop a decode.
			c.Logger.Warn("cache disabled", "dir", cfg.Cache.Dir, "err", err)
			return cache.NewNullCache(), nil
		}
		return fc, nil
	default:
		return cache.NewNullCache(), nil
	}
}
