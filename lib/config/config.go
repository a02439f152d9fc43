// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the warden daemon.
//
// Configuration is loaded from a single file specified by:
//   - WARDEN_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. This ensures
// deterministic, auditable configuration with no hidden overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the master configuration for the warden daemon.
type Config struct {
	// Paths configures directory locations.
	Paths PathsConfig `yaml:"paths"`

	// Jobs configures the per-domain job admission slots.
	Jobs JobsConfig `yaml:"jobs"`

	// Cgroup configures resource-control placement.
	Cgroup CgroupConfig `yaml:"cgroup"`

	// Log configures daemon logging.
	Log LogConfig `yaml:"log"`
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// Run is the runtime directory: monitor sockets, pid files.
	// Cleared on reboot.
	Run string `yaml:"run"`

	// State is where persistent per-domain runtime state is stored.
	State string `yaml:"state"`

	// Definitions is the directory of domain definition files
	// (*.jsonc), loaded at startup.
	Definitions string `yaml:"definitions"`
}

// JobsConfig configures the per-domain job admission slots.
type JobsConfig struct {
	// AcquireTimeout bounds how long an API call waits to acquire a
	// domain's job slot before failing with a timeout. A Go duration
	// string. Default: 30s.
	AcquireTimeout string `yaml:"acquire_timeout"`
}

// AcquireTimeoutDuration parses the configured acquire timeout.
func (j JobsConfig) AcquireTimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(j.AcquireTimeout)
	if err != nil {
		return 0, fmt.Errorf("jobs.acquire_timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("jobs.acquire_timeout must be positive, got %s", d)
	}
	return d, nil
}

// CgroupConfig configures resource-control placement.
type CgroupConfig struct {
	// Parent is the cgroup directory domain scopes are created
	// under. Default: machine.slice.
	Parent string `yaml:"parent"`
}

// LogConfig configures daemon logging.
type LogConfig struct {
	// Level is the minimum level emitted: debug, info, warn, error.
	// Default: info.
	Level string `yaml:"level"`
}

// SlogLevel maps the configured level name to a slog level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	switch l.Level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log.level must be debug, info, warn, or error, got %q", l.Level)
	}
}

// Default returns the default configuration. These defaults are used
// as a base before loading the config file; the file is still
// required.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Run:         "/run/warden",
			State:       "/var/lib/warden",
			Definitions: "/etc/warden/domains",
		},
		Jobs: JobsConfig{
			AcquireTimeout: "30s",
		},
		Cgroup: CgroupConfig{
			Parent: "machine.slice",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the WARDEN_CONFIG environment
// variable. There are no fallbacks: if WARDEN_CONFIG is not set, this
// fails.
func Load() (*Config, error) {
	configPath := os.Getenv("WARDEN_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("WARDEN_CONFIG environment variable not set; " +
			"set it to the path of your warden.yaml config file, or use --config flag")
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. The config
// file is the single source of truth; environment variables do not
// override config values. The only expansion performed is ${HOME} and
// similar path variables for portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Paths.Run = expandVars(c.Paths.Run, vars)
	c.Paths.State = expandVars(c.Paths.State, vars)
	c.Paths.Definitions = expandVars(c.Paths.Definitions, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Paths.Run == "" {
		errs = append(errs, fmt.Errorf("paths.run is required"))
	}
	if c.Paths.State == "" {
		errs = append(errs, fmt.Errorf("paths.state is required"))
	}
	if c.Paths.Definitions == "" {
		errs = append(errs, fmt.Errorf("paths.definitions is required"))
	}
	if _, err := c.Jobs.AcquireTimeoutDuration(); err != nil {
		errs = append(errs, err)
	}
	if c.Cgroup.Parent == "" {
		errs = append(errs, fmt.Errorf("cgroup.parent is required"))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EnsurePaths creates the run and state directories if they don't
// exist. The definitions directory is operator-managed and is not
// created here.
func (c *Config) EnsurePaths() error {
	for _, path := range []string{c.Paths.Run, c.Paths.State} {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}
	return nil
}

// MonitorSocket returns the monitor socket path for a domain.
func (c *Config) MonitorSocket(domainName string) string {
	return filepath.Join(c.Paths.Run, domainName+".monitor")
}
