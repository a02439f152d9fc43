// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/tidwall/jsonc"
)

// NamespaceKind names a Linux namespace a domain can share instead of
// unsharing.
type NamespaceKind string

const (
	// NamespaceNet is the network namespace.
	NamespaceNet NamespaceKind = "net"
	// NamespaceIPC is the System V IPC / POSIX mqueue namespace.
	NamespaceIPC NamespaceKind = "ipc"
	// NamespaceUTS is the hostname/domainname namespace.
	NamespaceUTS NamespaceKind = "uts"
)

// NamespaceSource says where a shared namespace comes from.
type NamespaceSource string

const (
	// SourceNone unshares the namespace (the default).
	SourceNone NamespaceSource = "none"
	// SourceName shares the namespace of another warden domain,
	// looked up by name.
	SourceName NamespaceSource = "name"
	// SourcePID shares the namespace of an arbitrary process.
	SourcePID NamespaceSource = "pid"
	// SourceNetNS binds a named network namespace from
	// /run/netns. Valid for the net namespace only.
	SourceNetNS NamespaceSource = "netns"
)

// Namespace configures sharing for one namespace kind.
type Namespace struct {
	// Kind selects which namespace this entry configures.
	Kind NamespaceKind `json:"kind"`

	// Source defaults to "none" when omitted.
	Source NamespaceSource `json:"source,omitempty"`

	// Value is the domain name, pid, or netns name, depending on
	// Source. Empty for "none".
	Value string `json:"value,omitempty"`
}

// Definition is the static description of a domain, loaded from a
// JSONC definition file. It never changes while the domain object is
// alive; runtime state lives in Runtime.
type Definition struct {
	// Name uniquely identifies the domain within this daemon.
	Name string `json:"name"`

	// UUID is the stable external identifier, assigned by the
	// management layer.
	UUID string `json:"uuid,omitempty"`

	// Init is the command run as the container's init process.
	// Defaults to /sbin/init.
	Init []string `json:"init,omitempty"`

	// Namespaces lists namespace sharing overrides. Namespaces not
	// listed are unshared.
	Namespaces []Namespace `json:"namespaces,omitempty"`
}

// nameChars is the set of bytes permitted in a domain name, checked
// via lookup table.
var nameChars [256]bool

func init() {
	for c := 'a'; c <= 'z'; c++ {
		nameChars[c] = true
	}
	for c := '0'; c <= '9'; c++ {
		nameChars[c] = true
	}
	nameChars['.'] = true
	nameChars['_'] = true
	nameChars['-'] = true
}

// maxNameLength bounds domain names so derived machine names fit the
// 64-character hostname limit with room for the prefix and pid.
const maxNameLength = 48

// ValidateName checks that a domain name is safe to use as a map key,
// a machine name component, and a filesystem path component.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("domain name is empty")
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("domain name is %d characters, maximum is %d", len(name), maxNameLength)
	}
	for i := 0; i < len(name); i++ {
		if !nameChars[name[i]] {
			return fmt.Errorf("invalid character %q at position %d in domain name (allowed: a-z, 0-9, ., _, -)", name[i], i)
		}
	}
	if name[0] == '.' || name[0] == '-' {
		return fmt.Errorf("domain name must not start with %q", name[0])
	}
	return nil
}

// Validate checks the definition for structural problems: a valid
// name, known namespace kinds and sources, at most one entry per
// kind, and source values of the right shape.
func (d *Definition) Validate() error {
	if err := ValidateName(d.Name); err != nil {
		return err
	}

	seen := make(map[NamespaceKind]bool, len(d.Namespaces))
	for _, ns := range d.Namespaces {
		switch ns.Kind {
		case NamespaceNet, NamespaceIPC, NamespaceUTS:
		default:
			return fmt.Errorf("domain %s: unknown namespace kind %q", d.Name, ns.Kind)
		}
		if seen[ns.Kind] {
			return fmt.Errorf("domain %s: duplicate namespace entry for %q", d.Name, ns.Kind)
		}
		seen[ns.Kind] = true

		source := ns.EffectiveSource()
		switch source {
		case SourceNone:
			if ns.Value != "" {
				return fmt.Errorf("domain %s: namespace %s source none takes no value", d.Name, ns.Kind)
			}
		case SourceName:
			if err := ValidateName(ns.Value); err != nil {
				return fmt.Errorf("domain %s: namespace %s: %w", d.Name, ns.Kind, err)
			}
		case SourcePID:
			pid, err := strconv.Atoi(ns.Value)
			if err != nil || pid <= 0 {
				return fmt.Errorf("domain %s: namespace %s: source pid needs a positive pid, got %q", d.Name, ns.Kind, ns.Value)
			}
		case SourceNetNS:
			if ns.Kind != NamespaceNet {
				return fmt.Errorf("domain %s: source netns is only valid for the net namespace, not %s", d.Name, ns.Kind)
			}
			if ns.Value == "" {
				return fmt.Errorf("domain %s: namespace net: source netns needs a name", d.Name)
			}
		default:
			return fmt.Errorf("domain %s: unknown namespace source %q", d.Name, ns.Source)
		}
	}
	return nil
}

// EffectiveSource returns the source with the "omitted means none"
// default applied.
func (n Namespace) EffectiveSource() NamespaceSource {
	if n.Source == "" {
		return SourceNone
	}
	return n.Source
}

// InitCommand returns the init command with the default applied.
func (d *Definition) InitCommand() []string {
	if len(d.Init) == 0 {
		return []string{"/sbin/init"}
	}
	return d.Init
}

// LoadDefinition reads and validates a JSONC definition file.
// Definition files are human-edited, so comments and trailing commas
// are allowed; jsonc strips them before strict JSON decoding.
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading definition %s: %w", path, err)
	}

	var def Definition
	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&def); err != nil {
		return nil, fmt.Errorf("parsing definition %s: %w", path, err)
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("definition %s: %w", path, err)
	}
	return &def, nil
}
