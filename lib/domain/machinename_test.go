// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package domain

import (
	"strings"
	"testing"
)

func TestMachineName(t *testing.T) {
	got := MachineName("web", 1234)
	if got != "warden-1234-web" {
		t.Fatalf("MachineName = %q, want warden-1234-web", got)
	}
}

func TestMachineNameEscapes(t *testing.T) {
	got := MachineName("a b/c", 7)
	if got != "warden-7-a-b-c" {
		t.Fatalf("MachineName = %q, want warden-7-a-b-c", got)
	}
}

func TestMachineNameTruncates(t *testing.T) {
	long := strings.Repeat("x", 100)
	got := MachineName(long, 99999)
	if len(got) > 64 {
		t.Fatalf("MachineName length = %d, want <= 64", len(got))
	}
	if !strings.HasPrefix(got, "warden-99999-") {
		t.Fatalf("MachineName = %q, want the warden-<pid>- prefix intact", got)
	}
}

func TestMachineNameNoTrailingSeparator(t *testing.T) {
	// A name whose truncation point lands on a separator must not
	// leave the separator dangling.
	name := strings.Repeat("x", 54) + "." + strings.Repeat("y", 20)
	got := MachineName(name, 1)
	if strings.HasSuffix(got, ".") || strings.HasSuffix(got, "-") {
		t.Fatalf("MachineName = %q, ends with a separator", got)
	}
}
