// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package domain holds the per-domain objects the daemon manages: the
// static definition (name, init command, namespace sharing), the
// job-protected runtime state (monitor connection, init pid, cgroup
// handle, stop flags), and the registry that owns the live set of
// domains.
//
// Runtime state carries no lock of its own. Its protection derives
// entirely from the job admission rule: only the holder of the
// domain's job may touch it (query jobs read, modify/destroy jobs
// mutate). Every mutation path in this package, including the
// asynchronous monitor event handlers, goes through BeginJob.
package domain
