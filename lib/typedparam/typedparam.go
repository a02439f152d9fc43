// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package typedparam

import (
	"errors"
	"fmt"
)

// Kind tags the value type carried by a Param. The zero value is
// invalid so that an uninitialized Param is detectable.
type Kind int

const (
	// KindString is a UTF-8 string value.
	KindString Kind = iota + 1
	// KindInt64 is a signed 64-bit integer value.
	KindInt64
	// KindUint64 is an unsigned 64-bit integer value.
	KindUint64
)

// String returns the kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt64:
		return "int64"
	case KindUint64:
		return "uint64"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Sentinel errors for errors.Is matching. The structured error types
// below wrap these.
var (
	// ErrTypeMismatch indicates a parameter exists with a different
	// kind than requested or required.
	ErrTypeMismatch = errors.New("typedparam: type mismatch")

	// ErrUnknownParam indicates a parameter name outside the schema.
	ErrUnknownParam = errors.New("typedparam: unknown parameter")

	// ErrDuplicateParam indicates a name appearing more than once in
	// a validated bag.
	ErrDuplicateParam = errors.New("typedparam: duplicate parameter")
)

// TypeMismatchError reports a parameter whose kind differs from what
// the caller or schema requires.
type TypeMismatchError struct {
	Name string
	Want Kind
	Got  Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("parameter %q has kind %s, want %s", e.Name, e.Got, e.Want)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

// UnknownParamError reports a parameter name not present in the
// validation schema.
type UnknownParamError struct {
	Name string
}

func (e *UnknownParamError) Error() string {
	return fmt.Sprintf("unknown parameter %q", e.Name)
}

func (e *UnknownParamError) Unwrap() error { return ErrUnknownParam }

// Param is a single typed name/value pair. Exactly one of the value
// fields is meaningful, selected by Kind. The CBOR tags keep wire bags
// self-describing; omitempty keeps unused value fields off the wire.
type Param struct {
	Name string `cbor:"name"`
	Kind Kind   `cbor:"kind"`
	Str  string `cbor:"str,omitempty"`
	Int  int64  `cbor:"int,omitempty"`
	Uint uint64 `cbor:"uint,omitempty"`
}

// String constructs a string parameter.
func String(name, value string) Param {
	return Param{Name: name, Kind: KindString, Str: value}
}

// Int64 constructs a signed integer parameter.
func Int64(name string, value int64) Param {
	return Param{Name: name, Kind: KindInt64, Int: value}
}

// Uint64 constructs an unsigned integer parameter.
func Uint64(name string, value uint64) Param {
	return Param{Name: name, Kind: KindUint64, Uint: value}
}

// Bag is an ordered collection of parameters. Order is preserved so
// deterministic CBOR encoding produces stable bytes for audit logs.
// Bags do not enforce name uniqueness on append; Validate does.
type Bag []Param

// Get returns the first parameter with the given name.
func (b Bag) Get(name string) (Param, bool) {
	for _, p := range b {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Has reports whether a parameter with the given name is present,
// regardless of kind.
func (b Bag) Has(name string) bool {
	_, ok := b.Get(name)
	return ok
}

// GetString looks up a string parameter. Returns ("", false, nil)
// when the name is absent, and a TypeMismatchError when the name is
// present with a different kind.
func (b Bag) GetString(name string) (string, bool, error) {
	p, ok := b.Get(name)
	if !ok {
		return "", false, nil
	}
	if p.Kind != KindString {
		return "", false, &TypeMismatchError{Name: name, Want: KindString, Got: p.Kind}
	}
	return p.Str, true, nil
}

// GetInt64 looks up a signed integer parameter. Returns (0, false,
// nil) when absent; TypeMismatchError when present with a different
// kind.
func (b Bag) GetInt64(name string) (int64, bool, error) {
	p, ok := b.Get(name)
	if !ok {
		return 0, false, nil
	}
	if p.Kind != KindInt64 {
		return 0, false, &TypeMismatchError{Name: name, Want: KindInt64, Got: p.Kind}
	}
	return p.Int, true, nil
}

// GetUint64 looks up an unsigned integer parameter. Returns (0,
// false, nil) when absent; TypeMismatchError when present with a
// different kind.
func (b Bag) GetUint64(name string) (uint64, bool, error) {
	p, ok := b.Get(name)
	if !ok {
		return 0, false, nil
	}
	if p.Kind != KindUint64 {
		return 0, false, &TypeMismatchError{Name: name, Want: KindUint64, Got: p.Kind}
	}
	return p.Uint, true, nil
}

// Add appends a parameter. It does not check for duplicates; callers
// needing uniqueness enforce it at their own layer (the identity
// package's write-once rule) or via Validate.
func (b *Bag) Add(p Param) {
	*b = append(*b, p)
}

// Clone returns a deep copy. Params are value types, so copying the
// backing array is sufficient.
func (b Bag) Clone() Bag {
	if b == nil {
		return nil
	}
	out := make(Bag, len(b))
	copy(out, b)
	return out
}

// Validate checks every parameter against the schema: the name must
// be a schema key, the kind must match the schema kind, and no name
// may appear twice. The first violation is returned.
func (b Bag) Validate(schema map[string]Kind) error {
	seen := make(map[string]bool, len(b))
	for _, p := range b {
		want, ok := schema[p.Name]
		if !ok {
			return &UnknownParamError{Name: p.Name}
		}
		if p.Kind != want {
			return &TypeMismatchError{Name: p.Name, Want: want, Got: p.Kind}
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateParam, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}
