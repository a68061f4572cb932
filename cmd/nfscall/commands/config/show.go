package config

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/nfscall/internal/cli/output"
	"github.com/marmos91/nfscall/pkg/config"
)

var showOutput string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Display the effective nfscall configuration: file, environment
overrides and defaults combined.

By default outputs YAML format. Use --output to change format.

Examples:
  nfscall config show
  nfscall config show --output json
  NFSCALL_SERVER_LISTEN=0.0.0.0:2049 nfscall config show`,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format (yaml|json)")
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	_, explicit := configPath(cmd)

	cfg, err := config.MustLoad(explicit)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(showOutput)
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(cmd.OutOrStdout(), cfg)
	default:
		return output.PrintYAML(cmd.OutOrStdout(), cfg)
	}
}
