// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers and /proc process
// introspection for warden binaries.
//
//   - Fatal reports a fatal error to stderr when the structured logger
//     may not be initialized (pre-logger), then exits.
//   - StartTime reads a process's start time from /proc/<pid>/stat.
//     The identity package stamps it into the daemon's self-identity
//     so a pid paired with its start time survives pid reuse.
package process
