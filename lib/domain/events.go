// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package domain

import (
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/bureau-foundation/warden/lib/job"
	"github.com/bureau-foundation/warden/lib/monitor"
)

// HandleMonitorEvent applies one monitor event to the domain. It
// acquires a modify job, so it serializes against API operations on
// the same domain.
func (d *Domain) HandleMonitorEvent(event monitor.Event) error {
	j, err := d.BeginJob(job.KindModify)
	if err != nil {
		return err
	}
	defer j.End()

	switch event.Kind {
	case monitor.EventRebooted:
		return d.handleRebootLocked()
	case monitor.EventExited:
		return d.handleExitLocked(event.ExitStatus)
	default:
		return fmt.Errorf("unhandled monitor event kind %q", event.Kind)
	}
}

// handleRebootLocked marks the domain so the exit that follows is
// treated as a reboot request. Caller holds a modify job.
func (d *Domain) handleRebootLocked() error {
	d.Runtime().WantReboot = true
	d.logger.Info("reboot requested by guest")
	return nil
}

// handleExitLocked records the end of the current run. Caller holds a
// modify job.
func (d *Domain) handleExitLocked(status int) error {
	runtime := d.Runtime()
	if runtime.StopEventSent {
		return nil
	}

	switch {
	case runtime.WantReboot:
		runtime.StopReason = StopRebooted
	case status == 0:
		runtime.StopReason = StopShutdown
	default:
		runtime.StopReason = StopFailed
	}
	runtime.StopEventSent = true
	d.clearRunningLocked()

	d.logger.Info("domain stopped",
		"reason", runtime.StopReason,
		"exit_status", status,
	)
	return nil
}

// handleMonitorGone handles the monitor connection dying without a
// preceding exit event: the run is over but the cause is unknown.
func (d *Domain) handleMonitorGone() error {
	j, err := d.BeginJob(job.KindModify)
	if err != nil {
		return err
	}
	defer j.End()

	runtime := d.Runtime()
	if runtime.StopEventSent {
		// The exit event already closed out this run; the EOF is
		// just the connection winding down.
		d.clearRunningLocked()
		return nil
	}
	runtime.StopReason = StopUnknown
	runtime.StopEventSent = true
	d.clearRunningLocked()

	d.logger.Warn("monitor connection lost")
	return nil
}

// MarkDestroyed records a forced stop. The caller must hold the
// destroy job used to tear the domain down.
func (d *Domain) MarkDestroyed() {
	runtime := d.Runtime()
	runtime.StopReason = StopDestroyed
	runtime.StopEventSent = true
	d.clearRunningLocked()
	d.logger.Info("domain destroyed")
}

// clearRunningLocked drops the live-process state. Caller holds a
// modify or destroy job.
func (d *Domain) clearRunningLocked() {
	runtime := d.Runtime()
	if runtime.Monitor != nil {
		runtime.Monitor.Close()
		runtime.Monitor = nil
	}
	runtime.InitPID = 0
	runtime.Cgroup = nil
	runtime.MachineName = ""
}

// WatchMonitor reads events from the domain's monitor connection
// until it closes, applying each to the domain. It is meant to run in
// its own goroutine, one per running domain. The connection is passed
// in rather than read from Runtime so the loop never needs a job just
// to receive.
func (d *Domain) WatchMonitor(conn *monitor.Conn) {
	for {
		event, err := conn.ReadEvent()
		if err != nil {
			if !isClosedConn(err) {
				d.logger.Warn("monitor read failed", "error", err)
			}
			if err := d.handleMonitorGone(); err != nil && !errors.Is(err, job.ErrDomainGone) {
				d.logger.Error("monitor teardown failed", "error", err)
			}
			return
		}
		if err := d.HandleMonitorEvent(event); err != nil {
			if errors.Is(err, job.ErrDomainGone) {
				return
			}
			d.logger.Warn("monitor event rejected", "error", err)
		}
	}
}

func isClosedConn(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}
