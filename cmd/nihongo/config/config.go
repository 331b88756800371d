// Package configcmder provides the config command for managing persistent
// nihongo configuration stored in the .nihongo/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent nihongo configuration.

Configuration is stored as config.toml in the .nihongo/ directory and provides
default values for command flags. CLI flags and NIHONGO_* environment
variables take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  llm.provider, llm.model, llm.base_url, llm.timeout,
  hub.endpoint, hub.revision, hub.concurrency,
  artifacts.root, artifacts.attempts,
  storage.sqlite_path, storage.postgres_dsn,
  history.disabled, api.listen

Use subcommands to get, set, or list configuration values:
  nihongo config set <key> <value>    Set a configuration value
  nihongo config get <key>            Get a configuration value
  nihongo config list                 List all configuration values

Examples:
  nihongo config set llm.provider openai
  nihongo config set artifacts.root ~/models
  nihongo config get llm.model
  nihongo config list`

const configShortDesc string = "Manage persistent nihongo configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
