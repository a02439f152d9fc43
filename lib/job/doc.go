// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package job serializes concurrent operations against a single
// domain's mutable runtime state.
//
// Every API entry point, monitor event callback, and lifecycle timer
// that wants to touch a domain's runtime state first acquires a job on
// the domain's job Object. Only one job is active per domain at any
// instant; holding it grants exclusive rights to that domain's runtime
// fields until the job is ended. Query jobs are read-only by
// convention, Modify jobs change state, Destroy jobs tear the domain
// down.
//
// Admission rules:
//
//   - Acquisition blocks while another job is active, FIFO-ish among
//     waiters of the same class.
//   - A queued Destroy is admitted ahead of all queued Query/Modify
//     requests once the running job releases. It never preempts a
//     running job, but a continuous stream of queries cannot starve
//     it.
//   - The wait is bounded: if the slot is not granted within the
//     acquire timeout, Begin fails with ErrTimeout and the slot is
//     left untouched. This bounds the damage from a stuck monitor
//     call holding a job indefinitely.
//
// The implementation is a ticket design rather than a condition
// variable: each blocked Begin parks on its own buffered grant
// channel, and release hands the slot directly to the next eligible
// waiter. There are no spurious wakeups to re-check, and the bounded
// wait composes with the injectable clock for deterministic tests.
package job
