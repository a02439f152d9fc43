// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package identity represents "who is performing this operation" for
// authorization and audit. An Identity is a bag of typed attributes
// (user name, unix ids, process id and start time, SASL name, X.509
// distinguished name, SELinux context) stamped by the transport and
// authentication layers as a request enters the daemon.
//
// Attributes are write-once: once a layer has established a
// credential, a later (possibly less privileged) layer cannot
// overwrite it. The only bulk mutation path, SetParameters, replaces
// the whole bag after schema validation and exists for trusted
// deserialization of a fully formed identity from an RPC header.
//
// The identity for a request travels in its context.Context via
// NewContext/FromContext rather than any process-global slot, so the
// binding is explicit at every call site.
package identity
