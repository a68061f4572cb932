package config

import (
	"strings"
	"testing"
)

func TestValidate_Defaults(t *testing.T) {
	if err := Validate(GetDefaultConfig()); err != nil {
		t.Errorf("Expected defaults to validate, got: %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"LogFormat", func(c *Config) { c.Logging.Format = "xml" }, "oneof"},
		{"MetricsPort", func(c *Config) { c.Metrics.Port = 70000 }, "max"},
		{"SampleRate", func(c *Config) { c.Telemetry.SampleRate = 1.5 }, "lte"},
		{"TelemetryEndpoint", func(c *Config) {
			c.Telemetry.Enabled = true
			c.Telemetry.Endpoint = ""
		}, "required_if"},
		{"MaxConnections", func(c *Config) { c.Server.MaxConnections = -1 }, "gte"},
		{"RecordTooSmall", func(c *Config) { c.Server.MaxRecordSize = 8 }, "MaxRecordSize"},
		{"ShutdownTimeout", func(c *Config) { c.Server.ShutdownTimeout = -1 }, "ShutdownTimeout"},
		{"CapturePath", func(c *Config) { c.Capture.Path = "" }, "Capture.Path"},
		{"ProfileType", func(c *Config) {
			c.Telemetry.Profiling.Enabled = true
			c.Telemetry.Profiling.ProfileTypes = []string{"cpu", "heat"}
		}, `unknown profile type "heat"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got: %v", tt.want, err)
			}
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Format = "xml"
	cfg.Metrics.Port = 70000

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if n := len(strings.Split(err.Error(), "\n")); n != 2 {
		t.Errorf("Expected 2 problems, got %d: %v", n, err)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Logging.Level = "warning"
	cfg.Logging.Format = "JSON"
	cfg.Server.Listen = "10.0.0.1:2049"
	cfg.Metrics.Port = 9191

	ApplyDefaults(cfg)

	if cfg.Logging.Level != "WARN" {
		t.Errorf("Expected WARNING normalized to WARN, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected format lowercased, got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stderr" {
		t.Errorf("Expected default output stderr, got %q", cfg.Logging.Output)
	}
	if cfg.Server.Listen != "10.0.0.1:2049" || cfg.Metrics.Port != 9191 {
		t.Errorf("Explicit values overwritten: %+v", cfg)
	}
}
