package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipgrid/pkg/observability"
)

// Execute builds the command tree, runs it with args, and returns the
// command's error. Results go to stdout; logs and progress go to stderr.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var verbose bool

	setOutput(stdout)
	c := New(stderr, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(LogDebug)
			hooks := newLogHooks(c.Logger)
			observability.SetCodecHooks(hooks)
			observability.SetCacheHooks(hooks)
		}
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		return nil
	}

	return root.ExecuteContext(ctx)
}
