package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marmos91/nfscall/internal/adapter/nfs"
	"github.com/marmos91/nfscall/internal/capture"
	"github.com/marmos91/nfscall/internal/logger"
	"github.com/marmos91/nfscall/internal/protocol/nfs/call"
	"github.com/marmos91/nfscall/internal/telemetry"
	"github.com/marmos91/nfscall/pkg/config"
	"github.com/marmos91/nfscall/pkg/metrics"
)

var traceListen string

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Run a server that decodes and records incoming NFSv3 calls",
	Long: `Trace listens for NFSv3 calls over TCP, decodes each one and logs it.

NULL calls are answered with success; every other procedure is answered
PROC_UNAVAIL once decoded, so clients fail fast instead of hanging. With
capture.enabled every decoded call is also stored and can be listed with
"nfscall capture list".

When a config file exists it is watched, and log level or format changes
apply without a restart.

Examples:
  nfscall trace
  nfscall trace --listen 0.0.0.0:2049
  NFSCALL_CAPTURE_ENABLED=true nfscall trace --log-level DEBUG`,
	RunE: runTrace,
}

func init() {
	traceCmd.Flags().StringVar(&traceListen, "listen", "", "listen address host:port (default: server.listen)")
}

func runTrace(cmd *cobra.Command, _ []string) error {
	cfg, err := loadTraceConfig()
	if err != nil {
		return err
	}
	if traceListen != "" {
		cfg.Server.Listen = traceListen
	}
	maxRecord, err := cfg.Server.MaxRecordSize.Uint32()
	if err != nil {
		return fmt.Errorf("server.max_record_size: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "nfscall",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown error", logger.Err(err))
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "nfscall",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", logger.Err(err))
		}
	}()

	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(cfgFile))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}
	if cfg.Telemetry.Profiling.Enabled {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint, "profile_types", cfg.Telemetry.Profiling.ProfileTypes)
	}

	srvCfg := nfs.Config{
		Addr:            cfg.Server.Listen,
		MaxRecordSize:   maxRecord,
		MaxConnections:  cfg.Server.MaxConnections,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}

	if cfg.Metrics.Enabled {
		reg := metrics.InitRegistry()
		srvCfg.CallMetrics = call.NewMetrics(reg)
		srvCfg.Metrics = nfs.NewMetrics(reg)

		metricsSrv, err := metrics.NewServer(fmt.Sprintf(":%d", cfg.Metrics.Port), reg)
		if err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		go func() {
			if err := metricsSrv.Serve(); err != nil {
				logger.Error("Metrics server error", logger.Err(err))
			}
		}()
		defer func() {
			if err := metricsSrv.Shutdown(context.Background()); err != nil {
				logger.Warn("Metrics server shutdown error", logger.Err(err))
			}
		}()
		logger.Info("Metrics enabled", "addr", metricsSrv.Addr())
	}

	var store capture.Store
	if cfg.Capture.Enabled {
		bs, err := capture.OpenBadger(cfg.Capture.Path)
		if err != nil {
			return fmt.Errorf("failed to open capture store: %w", err)
		}
		defer func() {
			if err := bs.Close(); err != nil {
				logger.Warn("Capture store close error", logger.Err(err))
			}
		}()
		store = bs
		logger.Info("Capture enabled", logger.KeyPath, cfg.Capture.Path)
	}
	srvCfg.Handler = nfs.NewTraceHandler(store)

	srv := nfs.NewServer(srvCfg)
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Serve(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()
		if err := <-serverDone; err != nil {
			logger.Error("Server shutdown error", logger.Err(err))
			return err
		}
		logger.Info("Server stopped gracefully")
	case err := <-serverDone:
		if err != nil {
			logger.Error("Server error", logger.Err(err))
			return err
		}
		logger.Info("Server stopped")
	}
	return nil
}

// loadTraceConfig loads the configuration, watching the file for logging
// changes when there is one to watch.
func loadTraceConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = config.GetDefaultConfigPath()
	}
	if _, err := os.Stat(path); err != nil {
		return loadConfig()
	}

	cfg, err := config.Watch(path, func(next *config.Config) {
		applyLogFlags(next)
		logger.SetLevel(next.Logging.Level)
		logger.SetFormat(next.Logging.Format)
	})
	if err != nil {
		return nil, err
	}
	applyLogFlags(cfg)
	return cfg, nil
}
