// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"os"
	"os/user"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/warden/lib/process"
)

// System constructs an identity representing the daemon process
// itself: pid, process start time, effective user and group (numeric
// ids and resolved names), and the SELinux process context when
// SELinux is active.
//
// Lookups that fail are non-fatal. An unresolvable user name, a
// missing /proc entry, or an absent SELinux subsystem each just leave
// their attributes unset; the identity is always returned.
func System() *Identity {
	id := New()

	// Setter errors cannot fire on a freshly created identity (the
	// write-once rule needs a prior write), so they are discarded.
	pid := os.Getpid()
	_ = id.SetProcessID(pid)

	if start, err := process.StartTime(pid); err == nil && start != 0 {
		_ = id.SetProcessStartTime(start)
	}

	uid := os.Geteuid()
	owner, err := user.LookupId(strconv.Itoa(uid))
	if err != nil {
		return id
	}
	_ = id.SetUserName(owner.Username)
	_ = id.SetUNIXUserID(uid)

	gid := os.Getegid()
	group, err := user.LookupGroupId(strconv.Itoa(gid))
	if err != nil {
		return id
	}
	_ = id.SetGroupName(group.Name)
	_ = id.SetUNIXGroupID(gid)

	if context, err := selinuxContext(); err == nil && context != "" {
		_ = id.SetSELinuxContext(context)
	}

	return id
}

// selinuxContext returns the current process's SELinux context, or ""
// when SELinux is not active. SELinux is considered active when a
// selinuxfs instance is mounted at the conventional path.
func selinuxContext() (string, error) {
	var fs unix.Statfs_t
	if err := unix.Statfs("/sys/fs/selinux", &fs); err != nil || fs.Type != unix.SELINUX_MAGIC {
		return "", nil
	}

	data, err := os.ReadFile("/proc/self/attr/current")
	if err != nil {
		return "", err
	}
	// The attr file is NUL-terminated and may carry a trailing newline.
	return strings.TrimRight(string(data), "\x00\n"), nil
}
