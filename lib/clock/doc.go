// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time for testability. Production code injects
// Real(); tests inject Fake() and advance time deterministically.
//
// The job admission controller's bounded wait is the main consumer: a
// test parks a waiter on a fake clock, advances past the acquire
// timeout, and observes the timeout failure without real sleeping.
package clock
