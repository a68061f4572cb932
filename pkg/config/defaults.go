package config

import (
	"path/filepath"
	"strings"

	"github.com/marmos91/nfscall/internal/adapter/nfs"
	"github.com/marmos91/nfscall/internal/bytesize"
	"github.com/marmos91/nfscall/internal/protocol/nfs/rpc"
)

// ApplyDefaults fills zero-valued fields. Explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)
	applyServerDefaults(&cfg.Server)
	applyCaptureDefaults(&cfg.Capture)
	applyClientDefaults(&cfg.Client)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)
	if cfg.Level == "WARNING" {
		cfg.Level = "WARN"
	}
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	cfg.Format = strings.ToLower(cfg.Format)
	// stdout carries command output, so logs default to stderr
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}

	if cfg.Profiling.Endpoint == "" {
		cfg.Profiling.Endpoint = "http://localhost:4040"
	}
	if len(cfg.Profiling.ProfileTypes) == 0 {
		cfg.Profiling.ProfileTypes = []string{"cpu", "alloc_space", "inuse_space", "goroutines"}
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.Listen == "" {
		cfg.Listen = "127.0.0.1:2049"
	}
	if cfg.MaxRecordSize == 0 {
		cfg.MaxRecordSize = bytesize.ByteSize(rpc.MaxFragmentSize)
	}
	if cfg.MaxConnections == 0 {
		cfg.MaxConnections = nfs.DefaultMaxConnections
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = nfs.DefaultIdleTimeout
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = nfs.DefaultShutdownTimeout
	}
}

func applyCaptureDefaults(cfg *CaptureConfig) {
	if cfg.Path == "" {
		cfg.Path = filepath.Join(GetDefaultStateDir(), "capture")
	}
}

func applyClientDefaults(cfg *ClientConfig) {
	if cfg.Timeout == 0 {
		cfg.Timeout = rpc.DefaultCallTimeout
	}
	if cfg.MaxReplySize == 0 {
		cfg.MaxReplySize = bytesize.ByteSize(rpc.MaxFragmentSize)
	}
}

// GetDefaultConfig returns a fully defaulted configuration, as written by
// config init.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
