package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipgrid/pkg/board"
	"github.com/matzehuels/pipgrid/pkg/errors"
	"github.com/matzehuels/pipgrid/pkg/pipeline"
)

// encodeOpts holds options for the encode command.
type encodeOpts struct {
	file   string
	format string
	quiet  bool
}

// encodeCommand creates the encode command.
func (c *CLI) encodeCommand() *cobra.Command {
	opts := encodeOpts{}

	cmd := &cobra.Command{
		Use:   "encode [COUNTS...]",
		Short: "Encode a distribution of 100 pips as a share token",
		Long: `Encode a distribution of 100 pips as a share token.

Counts are given in codec order: the annual row first, left to right from
positive to catastrophic, then each row above it. Commas and spaces both
separate values. Alternatively read a grid document with --file.`,
		Example: `  pipgrid encode 4 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 96
  pipgrid encode --file grid.yaml
  cat grid.json | pipgrid encode --file - --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEncode(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "read a grid document (json or yaml), - for stdin")
	cmd.Flags().StringVar(&opts.format, "format", "", "grid document format (default: from file extension)")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "print only the token")

	return cmd
}

func (c *CLI) runEncode(cmd *cobra.Command, args []string, opts encodeOpts) error {
	grid, err := readGrid(cmd.InOrStdin(), args, opts)
	if err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	runner, err := c.newRunner(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := runner.Encode(ctx, grid)
	if err != nil {
		return err
	}

	if opts.quiet {
		fmt.Fprintln(stdout, res.Token)
		return nil
	}
	printSuccess("Encoded %d pips", res.Total)
	printKeyValue("Token", StyleHighlight.Render(res.Token))
	printKeyValue("Index", res.Index)
	printLink("Share", cfg.ShareURL(res.Token))
	printNewline()
	printNextStep("Decode", appName+" decode "+res.Token)
	return nil
}

// readGrid builds the grid from a document or from positional counts.
func readGrid(stdin io.Reader, args []string, opts encodeOpts) (board.Grid, error) {
	if opts.file == "" {
		if opts.format != "" {
			return board.Grid{}, errors.New(errors.ErrCodeInvalidInput, "--format requires --file")
		}
		counts, err := parseCounts(args)
		if err != nil {
			return board.Grid{}, err
		}
		return board.GridFromCounts(counts)
	}
	if len(args) > 0 {
		return board.Grid{}, errors.New(errors.ErrCodeInvalidInput, "counts and --file are mutually exclusive")
	}

	format := opts.format
	var data []byte
	var err error
	if opts.file == "-" {
		if format == "" {
			format = pipeline.FormatJSON
		}
		data, err = io.ReadAll(stdin)
	} else {
		if format == "" {
			if format, err = pipeline.FormatFromFilename(opts.file); err != nil {
				return board.Grid{}, err
			}
		}
		data, err = os.ReadFile(opts.file)
	}
	if err != nil {
		return board.Grid{}, fmt.Errorf("read grid: %w", err)
	}
	return pipeline.ParseGrid(data, format)
}

// parseCounts splits args on commas and whitespace into bucket counts.
func parseCounts(args []string) ([]int, error) {
	fields := strings.FieldsFunc(strings.Join(args, " "), func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) != board.Buckets {
		return nil, errors.New(errors.ErrCodeInvalidCounts, "expected %d counts, got %d", board.Buckets, len(fields))
	}
	counts := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidCounts, "count %d: %q is not an integer", i+1, f)
		}
		counts[i] = n
	}
	return counts, nil
}
