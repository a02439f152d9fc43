// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// warden-daemon is the privileged container-domain daemon. It loads
// domain definitions, owns the live domain registry, and serializes
// all per-domain work through job admission slots.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/warden/lib/cgroup"
	"github.com/bureau-foundation/warden/lib/config"
	"github.com/bureau-foundation/warden/lib/domain"
	"github.com/bureau-foundation/warden/lib/identity"
	"github.com/bureau-foundation/warden/lib/job"
	"github.com/bureau-foundation/warden/lib/process"
	"github.com/bureau-foundation/warden/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var configPath string

	flagSet := pflag.NewFlagSet("warden-daemon", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to warden.yaml (overrides WARDEN_CONFIG)")
	showVersion := flagSet.Bool("version", false, "print version and exit")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if *showVersion {
		fmt.Printf("warden-daemon %s\n", version.Info())
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logLevel, err := cfg.Log.SlogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("warden-daemon starting", "version", version.Info())

	// The daemon runs as the system identity; operations arriving
	// without a caller identity are attributed to it.
	system := identity.System()
	if name, ok := system.UserName(); ok {
		logger.Info("system identity", "user", name, "pid", os.Getpid())
	}

	if err := cfg.EnsurePaths(); err != nil {
		return err
	}
	if !cgroup.Detect() {
		logger.Warn("cgroup v2 unified hierarchy not mounted; resource control disabled")
	}

	acquireTimeout, err := cfg.Jobs.AcquireTimeoutDuration()
	if err != nil {
		return err
	}
	registry := domain.NewRegistry(job.Options{
		AcquireTimeout: acquireTimeout,
		Logger:         logger,
	}, logger)

	if err := loadDefinitions(cfg, registry, logger); err != nil {
		return err
	}
	logger.Info("domains registered", "count", registry.Len())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	for _, name := range registry.Names() {
		if err := registry.Remove(name); err != nil {
			logger.Warn("removing domain on shutdown", "domain", name, "error", err)
		}
	}
	return nil
}

// loadDefinitions registers every *.jsonc definition in the
// configured directory. A malformed definition fails startup: a
// daemon silently missing a domain is worse than one that refuses to
// start.
func loadDefinitions(cfg *config.Config, registry *domain.Registry, logger *slog.Logger) error {
	paths, err := filepath.Glob(filepath.Join(cfg.Paths.Definitions, "*.jsonc"))
	if err != nil {
		return err
	}
	sort.Strings(paths)

	for _, path := range paths {
		def, err := domain.LoadDefinition(path)
		if err != nil {
			return err
		}
		if _, err := registry.Add(def); err != nil {
			return fmt.Errorf("registering %s: %w", path, err)
		}
		logger.Debug("definition loaded", "domain", def.Name, "path", path)
	}
	return nil
}
