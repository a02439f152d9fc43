// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides warden's standard CBOR encoding configuration.
//
// Warden uses two serialization formats with a clear boundary:
//
//   - JSONC for human-edited inputs: the daemon config file and domain
//     definition files.
//   - CBOR for internal protocols: identity attribute bags carried in
//     RPC headers, and the monitor socket framing between the daemon
//     and a domain's init process.
//
// This package provides the shared CBOR encoding and decoding modes so
// that every warden package encodes identically without duplicating
// configuration. The encoder uses Core Deterministic Encoding (RFC 8949
// §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. Same logical data always produces identical
// bytes, which matters for identity bags that may be compared or
// logged by audit tooling.
//
// For buffer-oriented operations (RPC headers):
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations (monitor sockets):
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
package codec
