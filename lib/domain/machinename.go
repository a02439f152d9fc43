// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package domain

import (
	"fmt"
	"strings"
)

// machineNameMax is the hostname length limit (HOST_NAME_MAX) that
// the service manager enforces on registered machine names.
const machineNameMax = 64

// MachineName derives the machine name a running domain registers
// with the service manager: "warden-<pid>-<name>", with the name
// reduced to machine-name-safe characters and the whole thing
// truncated to the hostname limit. The pid keeps the name unique
// across restarts of the same domain.
func MachineName(name string, pid int) string {
	machineName := fmt.Sprintf("warden-%d-%s", pid, escapeMachineName(name))
	if len(machineName) > machineNameMax {
		machineName = machineName[:machineNameMax]
	}
	return strings.TrimRight(machineName, "-.")
}

// escapeMachineName replaces characters outside the machine-name set
// (a-z, A-Z, 0-9, -, _, .) with '-'. Domain names are already
// restricted to a subset of this, but the escape keeps the derivation
// total for names arriving from other drivers.
func escapeMachineName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '-', c == '_', c == '.':
			b.WriteByte(c)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}
