// Package configcmder provides the config command for managing persistent
// vecpeek configuration stored in the .vecpeek/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent vecpeek configuration.

Configuration is stored as config.toml in the .vecpeek/ directory and
provides default values for command flags. CLI flags always take precedence
over config file values.

Keys use dotted notation matching the TOML section structure:
  connection.uri, connection.token, connection.db,
  display.limit, display.vector_preview,
  search.top_k

Use subcommands to get, set, or list configuration values:
  vecpeek config set <key> <value>    Set a configuration value
  vecpeek config get <key>            Get a configuration value
  vecpeek config list                 List all configuration values

Examples:
  vecpeek config set connection.uri ./milvus.db
  vecpeek config set search.top_k 10
  vecpeek config get connection.db
  vecpeek config list`

const configShortDesc string = "Manage persistent vecpeek configuration"

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
