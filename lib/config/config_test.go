// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "warden.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default() does not validate: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
paths:
  run: /tmp/warden-test/run
  definitions: /tmp/warden-test/domains
jobs:
  acquire_timeout: 5s
log:
  level: debug
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Paths.Run != "/tmp/warden-test/run" {
		t.Errorf("Paths.Run = %q", cfg.Paths.Run)
	}
	// Unset fields keep their defaults.
	if cfg.Paths.State != "/var/lib/warden" {
		t.Errorf("Paths.State = %q, want default", cfg.Paths.State)
	}
	if cfg.Cgroup.Parent != "machine.slice" {
		t.Errorf("Cgroup.Parent = %q, want default", cfg.Cgroup.Parent)
	}

	d, err := cfg.Jobs.AcquireTimeoutDuration()
	if err != nil {
		t.Fatalf("AcquireTimeoutDuration: %v", err)
	}
	if d != 5*time.Second {
		t.Errorf("acquire timeout = %s, want 5s", d)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadFile of a missing file succeeded")
	}
}

func TestLoadRequiresEnv(t *testing.T) {
	t.Setenv("WARDEN_CONFIG", "")
	if _, err := Load(); err == nil {
		t.Fatal("Load succeeded without WARDEN_CONFIG")
	}
}

func TestLoadFromEnv(t *testing.T) {
	path := writeConfig(t, "log:\n  level: warn\n")
	t.Setenv("WARDEN_CONFIG", path)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
}

func TestExpandVariables(t *testing.T) {
	t.Setenv("HOME", "/home/op")
	path := writeConfig(t, `
paths:
  run: ${HOME}/run
  state: ${WARDEN_TEST_UNSET:-/fallback}/state
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Paths.Run != "/home/op/run" {
		t.Errorf("Paths.Run = %q, want /home/op/run", cfg.Paths.Run)
	}
	if cfg.Paths.State != "/fallback/state" {
		t.Errorf("Paths.State = %q, want /fallback/state", cfg.Paths.State)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	bad := []func(*Config){
		func(c *Config) { c.Paths.Run = "" },
		func(c *Config) { c.Paths.State = "" },
		func(c *Config) { c.Paths.Definitions = "" },
		func(c *Config) { c.Jobs.AcquireTimeout = "soon" },
		func(c *Config) { c.Jobs.AcquireTimeout = "-1s" },
		func(c *Config) { c.Cgroup.Parent = "" },
		func(c *Config) { c.Log.Level = "verbose" },
	}
	for i, mutate := range bad {
		cfg := Default()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("case %d: Validate accepted a bad config", i)
		}
	}
}

func TestMonitorSocket(t *testing.T) {
	cfg := Default()
	got := cfg.MonitorSocket("web")
	if got != "/run/warden/web.monitor" {
		t.Fatalf("MonitorSocket = %q", got)
	}
}

func TestSlogLevel(t *testing.T) {
	if _, err := (LogConfig{Level: "debug"}).SlogLevel(); err != nil {
		t.Errorf("debug: %v", err)
	}
	if _, err := (LogConfig{Level: ""}).SlogLevel(); err == nil {
		t.Error("empty level accepted")
	}
}
