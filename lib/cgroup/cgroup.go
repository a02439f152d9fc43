// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cgroup

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/unix"
)

// MountPoint is where the unified cgroup v2 hierarchy is mounted.
const MountPoint = "/sys/fs/cgroup"

// DefaultParent is the slice under which domain cgroups are created,
// following the systemd convention for machine-like workloads.
const DefaultParent = "machine.slice"

// Group is an opaque handle on one domain's cgroup placement.
type Group struct {
	parent string
	name   string
}

// New returns a handle for a domain's cgroup under the given parent
// slice. The name is the domain's machine name, which is already
// escaped for use as a path component. Nothing is created on the
// filesystem; Create does that.
func New(parent, machineName string) *Group {
	if parent == "" {
		parent = DefaultParent
	}
	return &Group{parent: parent, name: machineName + ".scope"}
}

// Dir returns the absolute directory of the cgroup.
func (g *Group) Dir() string {
	return filepath.Join(MountPoint, g.parent, g.name)
}

// Create makes the cgroup directory. The parent slice must already
// exist (it is owned by the service manager).
func (g *Group) Create() error {
	if err := os.Mkdir(g.Dir(), 0o755); err != nil && !os.IsExist(err) {
		return fmt.Errorf("creating cgroup %s: %w", g.Dir(), err)
	}
	return nil
}

// AddProcess moves pid into the cgroup.
func (g *Group) AddProcess(pid int) error {
	procs := filepath.Join(g.Dir(), "cgroup.procs")
	if err := os.WriteFile(procs, []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return fmt.Errorf("adding pid %d to cgroup %s: %w", pid, g.name, err)
	}
	return nil
}

// Kill signals every process in the cgroup via the v2 kill file.
func (g *Group) Kill() error {
	kill := filepath.Join(g.Dir(), "cgroup.kill")
	if err := os.WriteFile(kill, []byte("1"), 0o644); err != nil {
		return fmt.Errorf("killing cgroup %s: %w", g.name, err)
	}
	return nil
}

// Remove deletes the cgroup directory. The cgroup must be empty
// (killed and reaped) first.
func (g *Group) Remove() error {
	if err := os.Remove(g.Dir()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing cgroup %s: %w", g.name, err)
	}
	return nil
}

// Detect reports whether the unified cgroup v2 hierarchy is mounted
// at the conventional mount point.
func Detect() bool {
	var fs unix.Statfs_t
	if err := unix.Statfs(MountPoint, &fs); err != nil {
		return false
	}
	return fs.Type == unix.CGROUP2_SUPER_MAGIC
}
