// Package config implements configuration management subcommands.
package config

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/nfscall/pkg/config"
)

// Cmd is the config subcommand.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long: `Manage nfscall configuration files.

Subcommands:
  init      Write a default configuration file
  validate  Validate configuration file
  show      Display current configuration
  schema    Generate JSON schema for IDE/validation`,
}

func init() {
	Cmd.AddCommand(initCmd)
	Cmd.AddCommand(validateCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(schemaCmd)
}

// configPath returns the --config value, or the default location.
func configPath(cmd *cobra.Command) (path, explicit string) {
	explicit, _ = cmd.Flags().GetString("config")
	if explicit != "" {
		return explicit, explicit
	}
	return config.GetDefaultConfigPath(), ""
}
