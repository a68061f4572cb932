// Package config loads nfscall configuration from a YAML file, NFSCALL_*
// environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/marmos91/nfscall/internal/bytesize"
)

// EnvPrefix prefixes every environment override, e.g.
// NFSCALL_LOGGING_LEVEL=DEBUG or NFSCALL_SERVER_LISTEN=:2049.
const EnvPrefix = "NFSCALL"

// Config is the full nfscall configuration.
//
// Sources, highest precedence first:
//  1. CLI flags
//  2. Environment variables (NFSCALL_*)
//  3. Configuration file (YAML)
//  4. Defaults
type Config struct {
	// Logging controls log output
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" json:"logging"`

	// Telemetry controls OpenTelemetry tracing and Pyroscope profiling
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry" json:"telemetry"`

	// Metrics controls the Prometheus endpoint of the trace server
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics" json:"metrics"`

	// Server configures the trace server
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Capture configures persistence of decoded calls
	Capture CaptureConfig `mapstructure:"capture" yaml:"capture" json:"capture"`

	// Client configures the send command
	Client ClientConfig `mapstructure:"client" yaml:"client" json:"client"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is DEBUG, INFO, WARN or ERROR (normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR" yaml:"level" json:"level" jsonschema:"enum=DEBUG,enum=INFO,enum=WARN,enum=ERROR"`

	// Format is text or json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format" json:"format" jsonschema:"enum=text,enum=json"`

	// Output is stdout, stderr or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output" json:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`

	// Endpoint is the OTLP gRPC collector (host:port)
	Endpoint string `mapstructure:"endpoint" validate:"required_if=Enabled true" yaml:"endpoint" json:"endpoint"`

	// Insecure disables TLS towards the collector
	Insecure bool `mapstructure:"insecure" yaml:"insecure" json:"insecure"`

	// SampleRate is the fraction of calls traced, 0.0 to 1.0
	SampleRate float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1" yaml:"sample_rate" json:"sample_rate"`

	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling" json:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`

	// Endpoint is the Pyroscope server URL
	Endpoint string `mapstructure:"endpoint" validate:"required_if=Enabled true" yaml:"endpoint" json:"endpoint"`

	// ProfileTypes lists the profiles to collect (cpu, alloc_space, ...)
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types" json:"profile_types"`
}

// MetricsConfig configures the Prometheus HTTP endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`

	// Port serves /metrics. Default: 9090
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port" json:"port"`
}

// ServerConfig configures the trace server.
type ServerConfig struct {
	// Listen is the TCP address, host:port
	Listen string `mapstructure:"listen" validate:"required,hostname_port" yaml:"listen" json:"listen"`

	// MaxRecordSize bounds one call record, e.g. "1280Ki"
	MaxRecordSize bytesize.ByteSize `mapstructure:"max_record_size" validate:"gte=64,lte=16777216" yaml:"max_record_size" json:"max_record_size" jsonschema:"type=string"`

	MaxConnections int `mapstructure:"max_connections" validate:"gte=1" yaml:"max_connections" json:"max_connections"`

	// IdleTimeout closes silent connections
	IdleTimeout time.Duration `mapstructure:"idle_timeout" validate:"gt=0" yaml:"idle_timeout" json:"idle_timeout" jsonschema:"type=string"`

	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0" yaml:"shutdown_timeout" json:"shutdown_timeout" jsonschema:"type=string"`
}

// CaptureConfig configures the capture store.
type CaptureConfig struct {
	// Enabled records every decoded call received by the trace server
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`

	// Path is the BadgerDB directory
	Path string `mapstructure:"path" validate:"required" yaml:"path" json:"path"`
}

// ClientConfig configures outgoing calls.
type ClientConfig struct {
	// Timeout covers dial, write and reply read
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0" yaml:"timeout" json:"timeout" jsonschema:"type=string"`

	// MaxReplySize bounds the reply record
	MaxReplySize bytesize.ByteSize `mapstructure:"max_reply_size" validate:"gte=64,lte=16777216" yaml:"max_reply_size" json:"max_reply_size" jsonschema:"type=string"`
}

// Load reads configuration from configPath (or the default location when
// empty), applies environment overrides and defaults, then validates.
// A missing file is not an error: defaults and environment still apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	if err := setupViper(v, configPath); err != nil {
		return nil, err
	}
	if _, err := readConfigFile(v); err != nil {
		return nil, err
	}
	return decode(v)
}

// MustLoad is Load, but an explicit path that does not exist is an error
// with instructions for creating it.
func MustLoad(configPath string) (*Config, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Create it with:\n"+
				"  nfscall config init --config %s",
				configPath, configPath)
		}
	}
	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// SaveConfig writes cfg as YAML, creating parent directories.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append([]byte("# nfscall configuration\n"), data...)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// InitConfigToPath writes the default configuration to path. An existing
// file is only replaced when force is set.
func InitConfigToPath(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}
	return SaveConfig(GetDefaultConfig(), path)
}

// InitConfig writes the default configuration to the default location and
// returns its path.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	return path, InitConfigToPath(path, force)
}

// setupViper wires environment overrides and the config file location.
// Every key gets a default so that environment variables apply even when no
// file exists.
func setupViper(v *viper.Viper, configPath string) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := registerDefaults(v); err != nil {
		return err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		return nil
	}
	v.AddConfigPath(getConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	return nil
}

// registerDefaults flattens GetDefaultConfig into dotted viper keys.
func registerDefaults(v *viper.Viper) error {
	data, err := yaml.Marshal(GetDefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("failed to unmarshal defaults: %w", err)
	}
	setDefaults(v, "", tree)
	return nil
}

func setDefaults(v *viper.Viper, prefix string, tree map[string]any) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			setDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// readConfigFile reports whether a file was read. A missing file is fine.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// configDecodeHooks handles ByteSize, time.Duration and comma-separated
// lists coming from environment variables.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// byteSizeDecodeHook converts strings like "1280Ki" and plain numbers to
// bytesize.ByteSize.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return bytesize.Parse(v)
		case int:
			if v < 0 {
				return nil, fmt.Errorf("negative byte size %d", v)
			}
			return bytesize.ByteSize(v), nil
		case int64:
			if v < 0 {
				return nil, fmt.Errorf("negative byte size %d", v)
			}
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			if v < 0 {
				return nil, fmt.Errorf("negative byte size %v", v)
			}
			return bytesize.ByteSize(v), nil
		}
		return data, nil
	}
}

// getConfigDir returns $XDG_CONFIG_HOME/nfscall, ~/.config/nfscall, or "."
// when no home directory is known.
func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "nfscall")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "nfscall")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// GetDefaultStateDir returns $XDG_STATE_HOME/nfscall or ~/.local/state/nfscall.
func GetDefaultStateDir() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "nfscall")
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "nfscall")
}
