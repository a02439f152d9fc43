// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package typedparam provides typed name/value parameter bags.
//
// A Bag is an ordered list of parameters, each carrying a name, a kind
// tag, and a value of that kind. Bags back the identity attribute set:
// the identity package defines a fixed schema (attribute name → kind)
// and uses Validate to reject malformed bags arriving from RPC
// headers before accepting them.
//
// Parameters serialize to CBOR (via lib/codec) with explicit kind
// tags, so a bag decoded from the wire can be validated against a
// schema without guessing at numeric representations.
package typedparam
