package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipgrid/pkg/pipeline"
)

// formatTable is the decode command's default human-readable output.
const formatTable = pipeline.FormatTable

// decodeOpts holds options for the decode command.
type decodeOpts struct {
	format     string
	placements bool
	noCache    bool
	refresh    bool
}

// decodeCommand creates the decode command.
func (c *CLI) decodeCommand() *cobra.Command {
	opts := decodeOpts{}

	cmd := &cobra.Command{
		Use:   "decode TOKEN",
		Short: "Show the distribution behind a share token",
		Long: `Show the distribution behind a share token.

Leading zeros are accepted; the canonical token is printed without them.
With --placements the pips are also laid out on the board and their
coordinates included in json and yaml output.`,
		Example: `  pipgrid decode 5KE
  pipgrid decode bBpNOwpnEzzrL9 --format yaml
  pipgrid decode 5KE --format json --placements`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDecode(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", formatTable, "output format: table, json, yaml")
	cmd.Flags().BoolVar(&opts.placements, "placements", false, "include pip placements")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")

	return cmd
}

func (c *CLI) runDecode(cmd *cobra.Command, token string, opts decodeOpts) error {
	if err := pipeline.ValidateFormat(opts.format); err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	res, err := runner.Decode(ctx, token, pipeline.Options{
		Placements: opts.placements,
		Geometry:   cfg.Geometry(),
		Refresh:    opts.refresh,
		Logger:     c.Logger,
	})
	if err != nil {
		return err
	}
	c.Logger.Debug("decode finished", "token", res.Token, "codec", res.Stats.CodecTime, "layout", res.Stats.LayoutTime)

	if opts.format != formatTable {
		data, err := pipeline.Render(res, opts.format)
		if err != nil {
			return err
		}
		_, err = stdout.Write(data)
		return err
	}

	printKeyValue("Token", StyleHighlight.Render(res.Token))
	fmt.Fprintln(stdout, gridTable(res.Grid, nil).Render())
	printStats(res.Total, len(res.Pips), res.CacheInfo.DecodeHit)
	printLink("Share", cfg.ShareURL(res.Token))
	prog.done("Decoded " + res.Token)
	return nil
}
