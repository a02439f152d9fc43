// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bureau-foundation/warden/lib/codec"
	"github.com/bureau-foundation/warden/lib/typedparam"
)

// Attribute names. The set is closed: Schema below is the complete
// map of accepted names and their kinds, and SetParameters rejects
// anything outside it.
const (
	AttrUserName         = "user-name"
	AttrUNIXUserID       = "unix-user-id"
	AttrGroupName        = "group-name"
	AttrUNIXGroupID      = "unix-group-id"
	AttrProcessID        = "process-id"
	AttrProcessStartTime = "process-start-time"
	AttrSASLUserName     = "sasl-user-name"
	AttrX509DName        = "x509-distinguished-name"
	AttrSELinuxContext   = "selinux-context"
)

// Schema maps every accepted attribute name to its required kind.
var Schema = map[string]typedparam.Kind{
	AttrUserName:         typedparam.KindString,
	AttrUNIXUserID:       typedparam.KindUint64,
	AttrGroupName:        typedparam.KindString,
	AttrUNIXGroupID:      typedparam.KindUint64,
	AttrProcessID:        typedparam.KindInt64,
	AttrProcessStartTime: typedparam.KindUint64,
	AttrSASLUserName:     typedparam.KindString,
	AttrX509DName:        typedparam.KindString,
	AttrSELinuxContext:   typedparam.KindString,
}

// ErrAlreadySet is returned by single-attribute setters when the
// attribute was previously written. This is a hard invariant, not a
// convenience check: it blocks privilege-identity confusion when two
// code paths race to stamp the same identity.
var ErrAlreadySet = errors.New("identity: attribute is already set")

// Identity is a shared, effectively-immutable attribute bag. Many
// goroutines may hold the same *Identity (a request context and its
// spawned workers); the internal mutex makes the write-once check and
// the bulk replace atomic, and every read takes a consistent snapshot.
//
// Population happens in two ways, never mixed on untrusted input:
//
//   - append-once via the typed setters (each attribute at most once
//     over the object's lifetime), or
//   - wholesale replace via SetParameters for trusted deserialization.
type Identity struct {
	mu     sync.Mutex
	params typedparam.Bag
}

// New returns an empty identity with zero attributes.
func New() *Identity {
	return &Identity{}
}

// setOnce appends p unless an attribute with the same name exists.
func (id *Identity) setOnce(p typedparam.Param) error {
	id.mu.Lock()
	defer id.mu.Unlock()
	if id.params.Has(p.Name) {
		return fmt.Errorf("%w: %s", ErrAlreadySet, p.Name)
	}
	id.params.Add(p)
	return nil
}

// getString reads a string attribute. Kind integrity is guaranteed by
// construction (setters use fixed name/kind pairs, SetParameters
// validates against Schema), so a kind mismatch cannot occur and the
// result is a plain present/absent pair.
func (id *Identity) getString(name string) (string, bool) {
	id.mu.Lock()
	defer id.mu.Unlock()
	value, present, err := id.params.GetString(name)
	if err != nil {
		return "", false
	}
	return value, present
}

func (id *Identity) getUint64(name string) (uint64, bool) {
	id.mu.Lock()
	defer id.mu.Unlock()
	value, present, err := id.params.GetUint64(name)
	if err != nil {
		return 0, false
	}
	return value, present
}

func (id *Identity) getInt64(name string) (int64, bool) {
	id.mu.Lock()
	defer id.mu.Unlock()
	value, present, err := id.params.GetInt64(name)
	if err != nil {
		return 0, false
	}
	return value, present
}

// UserName returns the resolved user name of the caller.
func (id *Identity) UserName() (string, bool) { return id.getString(AttrUserName) }

// SetUserName records the resolved user name. Write-once.
func (id *Identity) SetUserName(name string) error {
	return id.setOnce(typedparam.String(AttrUserName, name))
}

// UNIXUserID returns the caller's numeric uid.
func (id *Identity) UNIXUserID() (int, bool) {
	value, ok := id.getUint64(AttrUNIXUserID)
	return int(value), ok
}

// SetUNIXUserID records the caller's numeric uid. Write-once.
func (id *Identity) SetUNIXUserID(uid int) error {
	return id.setOnce(typedparam.Uint64(AttrUNIXUserID, uint64(uid)))
}

// GroupName returns the resolved primary group name of the caller.
func (id *Identity) GroupName() (string, bool) { return id.getString(AttrGroupName) }

// SetGroupName records the resolved group name. Write-once.
func (id *Identity) SetGroupName(name string) error {
	return id.setOnce(typedparam.String(AttrGroupName, name))
}

// UNIXGroupID returns the caller's numeric gid.
func (id *Identity) UNIXGroupID() (int, bool) {
	value, ok := id.getUint64(AttrUNIXGroupID)
	return int(value), ok
}

// SetUNIXGroupID records the caller's numeric gid. Write-once.
func (id *Identity) SetUNIXGroupID(gid int) error {
	return id.setOnce(typedparam.Uint64(AttrUNIXGroupID, uint64(gid)))
}

// ProcessID returns the caller's process id.
func (id *Identity) ProcessID() (int, bool) {
	value, ok := id.getInt64(AttrProcessID)
	return int(value), ok
}

// SetProcessID records the caller's process id. Write-once.
func (id *Identity) SetProcessID(pid int) error {
	return id.setOnce(typedparam.Int64(AttrProcessID, int64(pid)))
}

// ProcessStartTime returns the caller process's start time in clock
// ticks since boot. Paired with the pid it survives pid reuse.
func (id *Identity) ProcessStartTime() (uint64, bool) {
	return id.getUint64(AttrProcessStartTime)
}

// SetProcessStartTime records the caller process's start time. Write-once.
func (id *Identity) SetProcessStartTime(start uint64) error {
	return id.setOnce(typedparam.Uint64(AttrProcessStartTime, start))
}

// SASLUserName returns the authenticated SASL user name.
func (id *Identity) SASLUserName() (string, bool) { return id.getString(AttrSASLUserName) }

// SetSASLUserName records the authenticated SASL user name. Write-once.
func (id *Identity) SetSASLUserName(name string) error {
	return id.setOnce(typedparam.String(AttrSASLUserName, name))
}

// X509DName returns the subject distinguished name of the caller's
// client certificate.
func (id *Identity) X509DName() (string, bool) { return id.getString(AttrX509DName) }

// SetX509DName records the client certificate subject. Write-once.
func (id *Identity) SetX509DName(dname string) error {
	return id.setOnce(typedparam.String(AttrX509DName, dname))
}

// SELinuxContext returns the caller's SELinux process context.
func (id *Identity) SELinuxContext() (string, bool) { return id.getString(AttrSELinuxContext) }

// SetSELinuxContext records the caller's SELinux process context. Write-once.
func (id *Identity) SetSELinuxContext(context string) error {
	return id.setOnce(typedparam.String(AttrSELinuxContext, context))
}

// SetParameters validates the bag against Schema and atomically
// replaces all existing attributes. The bulk path deliberately does
// not honor write-once: it exists only for trusted deserialization of
// a fully formed identity (an RPC header stamped by the transport
// layer), never for incremental population.
func (id *Identity) SetParameters(params typedparam.Bag) error {
	if err := params.Validate(Schema); err != nil {
		return fmt.Errorf("identity parameters: %w", err)
	}
	clone := params.Clone()
	id.mu.Lock()
	defer id.mu.Unlock()
	id.params = clone
	return nil
}

// Parameters returns a snapshot copy of all attributes. Mutating the
// returned bag does not affect the identity.
func (id *Identity) Parameters() typedparam.Bag {
	id.mu.Lock()
	defer id.mu.Unlock()
	return id.params.Clone()
}

// Marshal encodes the attribute bag to deterministic CBOR for
// transport in an RPC header.
func (id *Identity) Marshal() ([]byte, error) {
	return codec.Marshal(id.Parameters())
}

// Unmarshal decodes a CBOR attribute bag produced by Marshal and
// returns a new identity. The bag is schema-validated; unknown
// attributes and kind mismatches are rejected.
func Unmarshal(data []byte) (*Identity, error) {
	var params typedparam.Bag
	if err := codec.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("decoding identity bag: %w", err)
	}
	id := New()
	if err := id.SetParameters(params); err != nil {
		return nil, err
	}
	return id, nil
}
