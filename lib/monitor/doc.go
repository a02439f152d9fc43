// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package monitor maintains the connection between the daemon and a
// domain's in-container init process.
//
// The wire is a unix socket carrying CBOR frames (lib/codec): the
// init process streams lifecycle events (exited, rebooted) to the
// daemon, and the daemon sends commands (runlevel changes) to init.
// Event consumers must funnel every state change through the domain's
// job controller; this package only moves frames.
package monitor
