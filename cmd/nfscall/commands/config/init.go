package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/nfscall/internal/cli/prompt"
	"github.com/marmos91/nfscall/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write the default nfscall configuration to --config, or to
$XDG_CONFIG_HOME/nfscall/config.yaml.

An existing file is only replaced after confirmation, or with --force.

Examples:
  nfscall config init
  nfscall config init --config ./nfscall.yaml --force`,
	RunE: runConfigInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing file without asking")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path, _ := configPath(cmd)

	if _, err := os.Stat(path); err == nil {
		ok, err := prompt.ConfirmWithForce(fmt.Sprintf("Overwrite %s?", path), initForce)
		if errors.Is(err, prompt.ErrAborted) || (err == nil && !ok) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
		if err != nil {
			return err
		}
	}

	if err := config.InitConfigToPath(path, true); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
	return nil
}
