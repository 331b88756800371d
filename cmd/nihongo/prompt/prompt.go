// Package promptcmder provides the prompt command for printing the few-shot
// prompt a translation would send, without calling a model.
package promptcmder

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/nihongo/pkg/cliui"
	"github.com/papercomputeco/nihongo/pkg/prompt"
)

const promptLongDesc string = `Print the few-shot prompt that "nihongo translate" would send for a phrase.

No credentials are needed and no network request is made.

Examples:
  nihongo prompt Good Morning
  nihongo prompt --examples`

const promptShortDesc string = "Print the translation prompt for a phrase"

type promptCommander struct {
	examples bool
}

func NewPromptCmd() *cobra.Command {
	cmder := &promptCommander{}

	cmd := &cobra.Command{
		Use:   "prompt [phrase...]",
		Short: promptShortDesc,
		Long:  promptLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmder.examples {
				return cmder.listExamples(cmd.OutOrStdout())
			}
			return cmder.run(cmd.OutOrStdout(), args)
		},
	}

	cmd.Flags().BoolVar(&cmder.examples, "examples", false, "List the worked examples instead of a prompt")

	return cmd
}

func (c *promptCommander) run(w io.Writer, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return errors.New("phrase argument required")
	}

	_, err := fmt.Fprintln(w, prompt.Build(query))
	return err
}

func (c *promptCommander) listExamples(w io.Writer) error {
	fmt.Fprintf(w, "\n  %s\n\n", cliui.HeaderStyle.Render("Worked examples"))
	for i, ex := range prompt.DefaultExamples {
		fmt.Fprintf(w, "  %s %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("%2d.", i+1)),
			cliui.NameStyle.Render(ex.Query),
		)
	}
	fmt.Fprintln(w)
	return nil
}
