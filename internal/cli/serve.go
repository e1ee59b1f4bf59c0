package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/pipgrid/internal/server"
)

// serveOpts holds options for the serve command.
type serveOpts struct {
	addr    string
	noCache bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the share-link HTTP API",
		Long: `Run the share-link HTTP API.

Routes:
  GET  /s/{token}                 decoded distribution for a share link
  GET  /api/v1/tokens/{token}     same, with ?placements=true for pip positions
  POST /api/v1/tokens             encode a grid document
  POST /api/v1/lattice/free       nearest free lattice site
  POST /api/v1/lattice/pack       pack pips around a point`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if opts.addr != "" {
				cfg.Server.Addr = opts.addr
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, cfg, opts.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			printInfo("Listening on %s", StyleHighlight.Render(cfg.Server.Addr))
			printDetail("Cache: %s", cfg.Cache.Backend)
			return server.New(cfg, runner, c.Logger).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}
