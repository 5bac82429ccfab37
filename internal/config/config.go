package config

import (
	"fmt"
	"time"
)

// Backends accepted by provider.backend.
const (
	BackendStub = "stub"
	BackendKV   = "kv"
)

// Sources accepted by provider.system_source.
const (
	SystemFixtures = "fixtures"
	SystemHost     = "host"
)

// Config is the root of the configuration file.
type Config struct {
	Listen   string          `hcl:"listen,optional"`
	Language string          `hcl:"language,optional"`
	Log      *LogConfig      `hcl:"log,block"`
	Provider *ProviderConfig `hcl:"provider,block"`
	Faults   []FaultConfig   `hcl:"fault,block"`
	Metrics  *MetricsConfig  `hcl:"metrics,block"`
	Store    *StoreConfig    `hcl:"store,block"`

	LoginLimit *LoginLimitConfig `hcl:"login_limit,block"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level string `hcl:"level,optional"`
	JSON  bool   `hcl:"json,optional"`
}

// ProviderConfig selects the backend that performs operations.
type ProviderConfig struct {
	Backend      string `hcl:"backend,optional"`
	SeedFile     string `hcl:"seed_file,optional"`     // empty uses the built-in records
	SystemSource string `hcl:"system_source,optional"` // fixtures or host
	DiskPath     string `hcl:"disk_path,optional"`     // filesystem reported by the host source
	Latency      string `hcl:"latency,optional"`       // added to every provider call
}

// LatencyDuration parses Latency. An empty value means no latency.
func (p *ProviderConfig) LatencyDuration() (time.Duration, error) {
	if p == nil || p.Latency == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(p.Latency)
	if err != nil {
		return 0, fmt.Errorf("invalid latency %q: %w", p.Latency, err)
	}
	return d, nil
}

// FaultConfig makes one provider call fail.
//
//	fault "firewall" "delete" { message = "rule is locked" }
type FaultConfig struct {
	Kind    string `hcl:"kind,label"`
	Op      string `hcl:"op,label"`
	Message string `hcl:"message,optional"`
}

// MetricsConfig controls the Prometheus endpoint. An omitted enabled
// attribute means enabled.
type MetricsConfig struct {
	Enabled *bool  `hcl:"enabled,optional"`
	Path    string `hcl:"path,optional"`
}

// IsEnabled reports whether the endpoint is served.
func (m *MetricsConfig) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// LoginLimitConfig throttles login attempts per client address. An
// omitted enabled attribute means enabled.
type LoginLimitConfig struct {
	Enabled  *bool  `hcl:"enabled,optional"`
	Attempts int    `hcl:"attempts,optional"`
	Window   string `hcl:"window,optional"`
}

// IsEnabled reports whether login attempts are throttled.
func (l *LoginLimitConfig) IsEnabled() bool {
	return l.Enabled == nil || *l.Enabled
}

// WindowDuration parses Window.
func (l *LoginLimitConfig) WindowDuration() (time.Duration, error) {
	d, err := time.ParseDuration(l.Window)
	if err != nil {
		return 0, fmt.Errorf("invalid window %q: %w", l.Window, err)
	}
	return d, nil
}

// StoreConfig tunes the record store.
type StoreConfig struct {
	TraceDiffs bool `hcl:"trace_diffs,optional"`
}

func boolPtr(v bool) *bool { return &v }

// Defaults returns the configuration used when no file is given.
func Defaults() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills every unset field.
func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.Language == "" {
		c.Language = "en"
	}
	if c.Log == nil {
		c.Log = &LogConfig{}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Provider == nil {
		c.Provider = &ProviderConfig{}
	}
	if c.Provider.Backend == "" {
		c.Provider.Backend = BackendStub
	}
	if c.Provider.SystemSource == "" {
		c.Provider.SystemSource = SystemFixtures
	}
	if c.Provider.DiskPath == "" {
		c.Provider.DiskPath = "/"
	}
	if c.Metrics == nil {
		c.Metrics = &MetricsConfig{}
	}
	if c.Metrics.Enabled == nil {
		c.Metrics.Enabled = boolPtr(true)
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Store == nil {
		c.Store = &StoreConfig{}
	}
	if c.LoginLimit == nil {
		c.LoginLimit = &LoginLimitConfig{}
	}
	if c.LoginLimit.Enabled == nil {
		c.LoginLimit.Enabled = boolPtr(true)
	}
	if c.LoginLimit.Attempts == 0 {
		c.LoginLimit.Attempts = 5
	}
	if c.LoginLimit.Window == "" {
		c.LoginLimit.Window = "1m"
	}
}
