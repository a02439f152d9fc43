// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cgroup provides the resource-control handle stored in a
// domain's runtime state. A Group names a cgroup v2 placement under
// the daemon's parent slice; the domain core stores and releases the
// handle but never interprets its contents beyond path bookkeeping.
package cgroup
