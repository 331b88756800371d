// Package nihongocmder
package nihongocmder

import (
	"github.com/spf13/cobra"

	authcmder "github.com/papercomputeco/nihongo/cmd/nihongo/auth"
	configcmder "github.com/papercomputeco/nihongo/cmd/nihongo/config"
	historycmder "github.com/papercomputeco/nihongo/cmd/nihongo/history"
	initcmder "github.com/papercomputeco/nihongo/cmd/nihongo/init"
	promptcmder "github.com/papercomputeco/nihongo/cmd/nihongo/prompt"
	pullcmder "github.com/papercomputeco/nihongo/cmd/nihongo/pull"
	servecmder "github.com/papercomputeco/nihongo/cmd/nihongo/serve"
	translatecmder "github.com/papercomputeco/nihongo/cmd/nihongo/translate"
	versioncmder "github.com/papercomputeco/nihongo/cmd/version"
)

const nihongoLongDesc string = `Nihongo translates English phrases into Japanese and breaks each
translation down word by word.

Get started:
  nihongo init                 Create a .nihongo/ directory
  nihongo auth groq            Store a Groq API key
  nihongo pull                 Download the OCR and speech models
  nihongo translate            Translate phrases interactively

Run services using:
  nihongo serve                Run the HTTP API and MCP server`

const nihongoShortDesc string = "Nihongo - Japanese phrase translator"

func NewNihongoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "nihongo",
		Short:         nihongoShortDesc,
		Long:          nihongoLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .nihongo/ config directory")

	// Add subcommands
	cmd.AddCommand(translatecmder.NewTranslateCmd())
	cmd.AddCommand(promptcmder.NewPromptCmd())
	cmd.AddCommand(pullcmder.NewPullCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
