package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pipgrid/pkg/board"
)

// boardCommand creates the interactive board editor.
func (c *CLI) boardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "board [TOKEN]",
		Short: "Edit a distribution interactively",
		Long: `Edit a distribution interactively.

Without a token the board starts from the seed layout of five pips in every
cell above the annual row. The final token is printed on exit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			var b *board.Board
			if len(args) == 1 {
				b, err = board.FromToken(cfg.Geometry(), args[0])
			} else {
				b, err = board.New(cfg.Geometry())
			}
			if err != nil {
				return err
			}
			c.Logger.Debug("board ready", "pips", len(b.Pips()), "geometry", cfg.Geometry())

			p := tea.NewProgram(NewBoardModel(b), tea.WithContext(cmd.Context()))
			finalModel, err := p.Run()
			if err != nil {
				return err
			}

			fm, ok := finalModel.(BoardModel)
			if !ok || fm.Token == "" {
				printDetail("No token")
				return nil
			}
			printKeyValue("Token", StyleHighlight.Render(fm.Token))
			printLink("Share", cfg.ShareURL(fm.Token))
			return nil
		},
	}
}
