package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/nfscall/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the nfscall configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  nfscall config validate
  nfscall config validate --config /etc/nfscall/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	displayPath, explicit := configPath(cmd)

	cfg, err := config.MustLoad(explicit)
	if err != nil {
		return err
	}

	var warnings []string
	if cfg.Server.MaxConnections == 1 {
		warnings = append(warnings, "server.max_connections is 1 - a second client is refused")
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.SampleRate == 0 {
		warnings = append(warnings, "telemetry is enabled with sample_rate 0 - no spans are exported")
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", displayPath)
	_, _ = fmt.Fprintln(out, "Validation: OK")

	if len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	_, _ = fmt.Fprintf(out, "\nConfiguration summary:\n")
	_, _ = fmt.Fprintf(out, "  Listen:          %s\n", cfg.Server.Listen)
	_, _ = fmt.Fprintf(out, "  Capture:         %t (%s)\n", cfg.Capture.Enabled, cfg.Capture.Path)
	_, _ = fmt.Fprintf(out, "  Log level:       %s\n", cfg.Logging.Level)
	return nil
}
