// Package commands implements the nfscall command-line interface.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/nfscall/cmd/nfscall/commands/config"
	"github.com/marmos91/nfscall/internal/logger"
	pkgconfig "github.com/marmos91/nfscall/pkg/config"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile   string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "nfscall",
	Short: "Encode, decode, send and trace NFSv3 calls",
	Long: `nfscall works with NFSv3 procedure calls at the RPC level.

It builds calls (encode), parses captured ones (decode), sends them to a
server (send), and runs a trace server that decodes and records whatever
clients send to it (trace).

Use "nfscall [command] --help" for more information about a command.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/nfscall/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format override (text, json)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(config.Cmd)
}

// loadConfig loads the configuration and applies the logging flags.
func loadConfig() (*pkgconfig.Config, error) {
	cfg, err := pkgconfig.MustLoad(cfgFile)
	if err != nil {
		return nil, err
	}
	applyLogFlags(cfg)
	return cfg, nil
}

func applyLogFlags(cfg *pkgconfig.Config) {
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
}

// setupLogging initializes the logger before any command runs. A broken
// config file does not block commands like "config validate"; logging then
// falls back to defaults plus flags.
func setupLogging(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		cfg = pkgconfig.GetDefaultConfig()
		applyLogFlags(cfg)
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}
	logger.Debug("Command started", "command", cmd.CommandPath(), "config", getConfigSource(cfgFile))
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "nfscall %s (commit %s, built %s)\n", Version, Commit, Date)
	},
}
