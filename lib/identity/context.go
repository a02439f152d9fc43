// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import "context"

// contextKey is the private key type for the identity binding.
type contextKey struct{}

// NewContext returns a context carrying id. The RPC dispatch layer
// binds the caller's identity once, at the edge; everything beneath
// reads it with FromContext. Replacing the binding later in the chain
// shadows the outer identity for that subtree only, the outer context
// is never mutated.
//
// The identity must not be mutated after it is placed in a context;
// it is shared by every goroutine the request spawns.
func NewContext(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity bound to ctx, or (nil, false) when
// none is set. Callers treat an unbound context as an anonymous,
// unprivileged caller.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(*Identity)
	return id, ok
}
