// Package historycmder provides the history command for listing and clearing
// recorded translations.
package historycmder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/nihongo/cmd/nihongo/wiring"
	"github.com/papercomputeco/nihongo/pkg/cliui"
	"github.com/papercomputeco/nihongo/pkg/config"
	"github.com/papercomputeco/nihongo/pkg/history"
	"github.com/papercomputeco/nihongo/pkg/utils"
)

type historyCommander struct {
	flags config.FlagSet

	sqlitePath string
	postgres   string
	limit      int
	clear      bool
	jsonOut    bool

	out    io.Writer
	driver history.Driver
}

var historyFlags = []string{
	config.FlagSQLite,
	config.FlagPostgres,
}

const historyLongDesc string = `List recent translations, newest first.

Examples:
  nihongo history
  nihongo history --limit 50
  nihongo history --json
  nihongo history --clear`

const historyShortDesc string = "List recent translations"

const previewLen = 60

func NewHistoryCmd() *cobra.Command {
	cmder := &historyCommander{
		flags: config.DefaultFlags,
	}

	cmd := &cobra.Command{
		Use:   "history",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := wiring.LoadConfig(cmd, historyFlags...)
			if err != nil {
				return err
			}

			cmder.driver, err = wiring.NewHistory(cmd.Context(), cfg, wiring.ConfigDir(cmd), wiring.Logger(cmd))
			if err != nil {
				return err
			}
			defer cmder.driver.Close()

			cmder.out = cmd.OutOrStdout()

			if cmder.clear {
				return cmder.runClear(cmd.Context())
			}
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, cmder.flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, cmder.flags, config.FlagPostgres, &cmder.postgres)
	cmd.Flags().IntVarP(&cmder.limit, "limit", "n", 20, "Number of translations to show (0 for all)")
	cmd.Flags().BoolVar(&cmder.clear, "clear", false, "Delete every recorded translation")
	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Print entries as JSON")

	return cmd
}

func (c *historyCommander) run(ctx context.Context) error {
	entries, err := c.driver.List(ctx, c.limit)
	if err != nil {
		return fmt.Errorf("listing history: %w", err)
	}

	if c.jsonOut {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintf(c.out, "\n  %s No translations yet.\n", cliui.DimStyle.Render("●"))
		fmt.Fprintf(c.out, "  Use 'nihongo translate' to get started.\n\n")
		return nil
	}

	fmt.Fprintf(c.out, "\n  %s\n\n", cliui.HeaderStyle.Render("Recent translations"))
	for _, e := range entries {
		fmt.Fprintf(c.out, "  %s  %s\n",
			cliui.DimStyle.Render(e.CreatedAt.Local().Format("2006-01-02 15:04")),
			cliui.NameStyle.Render(e.Query),
		)
		fmt.Fprintf(c.out, "  %s  %s %s\n",
			cliui.DimStyle.Render("                "),
			cliui.ValueStyle.Render(utils.Truncate(utils.FirstLine(e.Output), previewLen)),
			cliui.DimStyle.Render(fmt.Sprintf("(%s, %s)", e.Model, cliui.FormatDuration(e.Duration))),
		)
	}
	fmt.Fprintln(c.out)

	return nil
}

func (c *historyCommander) runClear(ctx context.Context) error {
	if err := c.driver.Clear(ctx); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	fmt.Fprintf(c.out, "\n  %s Cleared translation history.\n\n", cliui.SuccessMark)
	return nil
}
