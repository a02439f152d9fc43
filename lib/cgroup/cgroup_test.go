// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cgroup

import "testing"

func TestDir(t *testing.T) {
	g := New("machine.slice", "warden-4212-web")
	want := "/sys/fs/cgroup/machine.slice/warden-4212-web.scope"
	if got := g.Dir(); got != want {
		t.Errorf("Dir = %q, want %q", got, want)
	}
}

func TestDefaultParent(t *testing.T) {
	g := New("", "warden-1-db")
	want := "/sys/fs/cgroup/machine.slice/warden-1-db.scope"
	if got := g.Dir(); got != want {
		t.Errorf("Dir = %q, want %q", got, want)
	}
}
