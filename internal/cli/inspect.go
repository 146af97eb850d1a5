package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// inspectCommand creates the inspect command for browsing a layout.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		plain   bool
		dropped bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [layout.json]",
		Short: "Browse the placed and dropped words of a layout",
		Long: `Browse the placed and dropped words of a layout.

Opens an interactive table of every placed word (position, size, rotation)
and every dropped word with the reason it was dropped. With --plain the
table is printed once instead, which is useful in scripts and pipes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], plain, dropped)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print the table instead of opening the browser")
	cmd.Flags().BoolVar(&dropped, "dropped", false, "start on (or with --plain, print) the dropped words")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, input string, plain, dropped bool) error {
	res, err := readLayout(input)
	if err != nil {
		return err
	}

	tab := tabPlaced
	if dropped {
		tab = tabDropped
	}

	if plain {
		n := len(res.Placed)
		if tab == tabDropped {
			n = len(res.Dropped)
		}
		fmt.Println(wordTable(res, tab, 0, n, -1))
		printLayoutStats(res, false)
		return nil
	}

	model := NewInspectModel(res, input)
	model.Tab = tab
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("inspect: %w", err)
	}
	return nil
}
