// Package config handles launcher configuration.
// All values have working defaults; an optional launcher.yaml in the
// install directory and RDO_* environment variables can override them.
// Configuration precedence: environment variables > config file > defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a wrapper around time.Duration that supports YAML unmarshaling
// from human-readable strings like "500ms", "30s", "1m".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value.Value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds all launcher configuration.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Paths   PathsConfig   `yaml:"paths"`
	Logging LoggingConfig `yaml:"logging"`
}

// BackendConfig holds backend startup and readiness settings.
type BackendConfig struct {
	// Port is the localhost TCP port the backend is expected to open.
	Port int `yaml:"port"`

	// ReadyTimeout bounds the readiness wait. Expiry is advisory — the
	// launcher proceeds to the frontend regardless.
	ReadyTimeout Duration `yaml:"ready_timeout"`

	// PollInterval is the pause between readiness connect attempts.
	PollInterval Duration `yaml:"poll_interval"`

	// StartupDelay is the fixed pause between backend readiness and
	// frontend start.
	StartupDelay Duration `yaml:"startup_delay"`
}

// PathsConfig holds the dependency layout relative to the install root.
type PathsConfig struct {
	Interpreter   string `yaml:"interpreter"`
	UIRuntime     string `yaml:"ui_runtime"`
	BackendEntry  string `yaml:"backend_entry"`
	FrontendEntry string `yaml:"frontend_entry"`
	AppDir        string `yaml:"app_dir"`
	DebugMarker   string `yaml:"debug_marker"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the default configuration. The defaults form a
// complete configuration — the launcher runs with no config file at all.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			Port:         5000,
			ReadyTimeout: Duration{30 * time.Second},
			PollInterval: Duration{500 * time.Millisecond},
			StartupDelay: Duration{1 * time.Second},
		},
		Paths: PathsConfig{
			Interpreter:   "runtime/python/python.exe",
			UIRuntime:     "electron/electron.exe",
			BackendEntry:  "app/backend/app.py",
			FrontendEntry: "app/main.js",
			AppDir:        "app",
			DebugMarker:   "debug.txt",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromBytes parses YAML configuration from a byte slice and merges with
// defaults. Environment variables take highest precedence and override
// values from the byte slice.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config data: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// Load reads configuration from a YAML file and merges with defaults.
// If path is empty or the file does not exist, only defaults and environment
// variables are used.
func Load(path string) (*Config, error) {
	if path == "" {
		return LoadFromBytes(nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// File doesn't exist — use defaults + env overrides
		return LoadFromBytes(nil)
	}

	return LoadFromBytes(data)
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables have the highest precedence.
func applyEnvOverrides(cfg *Config) {
	if port := os.Getenv("RDO_BACKEND_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Backend.Port = p
		}
	}
	if timeout := os.Getenv("RDO_READY_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			cfg.Backend.ReadyTimeout = Duration{d}
		}
	}
	if level := os.Getenv("RDO_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}

// Validate checks that the configuration can drive a launch attempt.
func (c *Config) Validate() error {
	if c.Backend.Port <= 0 || c.Backend.Port > 65535 {
		return fmt.Errorf("backend port %d out of range", c.Backend.Port)
	}
	if c.Backend.PollInterval.Duration <= 0 {
		return fmt.Errorf("backend poll interval must be positive")
	}
	if c.Backend.ReadyTimeout.Duration < 0 {
		return fmt.Errorf("backend ready timeout must not be negative")
	}
	for name, p := range map[string]string{
		"interpreter":    c.Paths.Interpreter,
		"ui_runtime":     c.Paths.UIRuntime,
		"backend_entry":  c.Paths.BackendEntry,
		"frontend_entry": c.Paths.FrontendEntry,
		"app_dir":        c.Paths.AppDir,
	} {
		if p == "" {
			return fmt.Errorf("paths.%s is required", name)
		}
	}
	return nil
}
