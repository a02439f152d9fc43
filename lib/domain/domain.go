// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package domain

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/warden/lib/cgroup"
	"github.com/bureau-foundation/warden/lib/job"
	"github.com/bureau-foundation/warden/lib/monitor"
)

// ErrNotRunning is returned by operations that need a live init
// process (monitor commands) on a stopped domain.
var ErrNotRunning = errors.New("domain: domain is not running")

// StopReason records why a domain left the running state.
type StopReason int

const (
	// StopUnknown means the domain stopped without a reported cause
	// (monitor connection lost).
	StopUnknown StopReason = iota
	// StopShutdown is a clean init exit.
	StopShutdown
	// StopDestroyed is a forceful teardown through a destroy job.
	StopDestroyed
	// StopFailed is an init exit with a nonzero status.
	StopFailed
	// StopRebooted is an init exit that should be followed by a
	// restart.
	StopRebooted
)

// String returns the reason name used in logs.
func (r StopReason) String() string {
	switch r {
	case StopUnknown:
		return "unknown"
	case StopShutdown:
		return "shutdown"
	case StopDestroyed:
		return "destroyed"
	case StopFailed:
		return "failed"
	case StopRebooted:
		return "rebooted"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Runtime is the mutable per-domain state protected by job ownership.
// There is no lock here on purpose: a *Runtime is only ever reached
// through Domain.Runtime, and only while the caller holds the
// domain's job (query jobs read, modify/destroy jobs mutate).
type Runtime struct {
	// Monitor is the live connection to the in-container init, nil
	// when the domain is not running.
	Monitor *monitor.Conn

	// InitPID is the pid of the in-container init, 0 when not
	// running.
	InitPID int

	// Cgroup is the resource-control handle, nil when not running.
	Cgroup *cgroup.Group

	// MachineName is the name registered with the service manager
	// while running.
	MachineName string

	// StopReason says why the last run ended. Meaningful once
	// StopEventSent is set.
	StopReason StopReason

	// WantReboot is set by the reboot monitor event so the exit that
	// follows restarts the domain instead of leaving it stopped.
	WantReboot bool

	// StopEventSent records that the stopped-state transition for
	// the current exit has been delivered, so a trailing monitor EOF
	// does not produce a second one.
	StopEventSent bool
}

// Domain is one managed container instance. The definition is
// immutable; runtime state is guarded by the embedded job slot.
type Domain struct {
	def    *Definition
	jobs   *job.Object
	logger *slog.Logger

	// runtime is guarded by job ownership, not by a lock. See the
	// package documentation.
	runtime Runtime
}

// newDomain is called by the registry, which owns the live domain set.
func newDomain(def *Definition, options job.Options, logger *slog.Logger) *Domain {
	return &Domain{
		def:    def,
		jobs:   job.New(def.Name, options),
		logger: logger.With("domain", def.Name),
	}
}

// Name returns the domain's name.
func (d *Domain) Name() string { return d.def.Name }

// Definition returns the immutable definition.
func (d *Domain) Definition() *Definition { return d.def }

// Jobs exposes the admission slot for introspection (active kind and
// owner). Acquisition goes through BeginJob.
func (d *Domain) Jobs() *job.Object { return d.jobs }

// BeginJob acquires a job on this domain. The returned handle's End
// releases it. See the job package for admission rules.
func (d *Domain) BeginJob(kind job.Kind) (*job.Job, error) {
	return d.jobs.Begin(kind)
}

// Runtime returns the job-protected state. The caller must hold a
// job on this domain: query jobs may read, modify and destroy jobs
// may mutate. Retaining the pointer past the job's End is a bug.
func (d *Domain) Runtime() *Runtime {
	return &d.runtime
}

// SetRunning records a successful start: the monitor connection, the
// init pid, the cgroup handle, and the derived machine name, with the
// stop flags cleared for the new run. Acquires a modify job.
func (d *Domain) SetRunning(conn *monitor.Conn, initPID int, group *cgroup.Group) error {
	j, err := d.BeginJob(job.KindModify)
	if err != nil {
		return err
	}
	defer j.End()

	runtime := d.Runtime()
	runtime.Monitor = conn
	runtime.InitPID = initPID
	runtime.Cgroup = group
	runtime.MachineName = MachineName(d.def.Name, initPID)
	runtime.StopReason = StopUnknown
	runtime.WantReboot = false
	runtime.StopEventSent = false

	d.logger.Info("domain running",
		"init_pid", initPID,
		"machine_name", runtime.MachineName,
	)
	return nil
}

// Running reports whether the domain has a live init process.
// Acquires a query job.
func (d *Domain) Running() (bool, error) {
	j, err := d.BeginJob(job.KindQuery)
	if err != nil {
		return false, err
	}
	defer j.End()
	return d.Runtime().InitPID != 0, nil
}

// SetRunlevel asks the domain's init process to change runlevel.
// Acquires a modify job; fails with ErrNotRunning when there is no
// monitor connection.
func (d *Domain) SetRunlevel(runlevel int) error {
	j, err := d.BeginJob(job.KindModify)
	if err != nil {
		return err
	}
	defer j.End()

	runtime := d.Runtime()
	if runtime.Monitor == nil {
		return fmt.Errorf("%w: %s", ErrNotRunning, d.def.Name)
	}
	return runtime.Monitor.SetRunlevel(runlevel)
}
