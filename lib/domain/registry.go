// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package domain

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/bureau-foundation/warden/lib/job"
)

var (
	// ErrNotFound is returned when a named domain is not registered.
	ErrNotFound = errors.New("domain: not found")
	// ErrExists is returned when registering a name already in use.
	ErrExists = errors.New("domain: already exists")
)

// Registry holds the live domain set. The registry lock covers only
// the map; per-domain state stays under each domain's job slot, so
// operations on one domain never block lookups of another.
type Registry struct {
	jobOptions job.Options
	logger     *slog.Logger

	mu      sync.RWMutex
	domains map[string]*Domain
}

// NewRegistry returns an empty registry. Domains it creates share the
// given job options and logger.
func NewRegistry(jobOptions job.Options, logger *slog.Logger) *Registry {
	return &Registry{
		jobOptions: jobOptions,
		logger:     logger,
		domains:    make(map[string]*Domain),
	}
}

// Add validates the definition and registers a new stopped domain.
func (r *Registry) Add(def *Definition) (*Domain, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.domains[def.Name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrExists, def.Name)
	}
	d := newDomain(def, r.jobOptions, r.logger)
	r.domains[def.Name] = d
	r.logger.Info("domain registered", "domain", def.Name)
	return d, nil
}

// Lookup returns the named domain.
func (r *Registry) Lookup(name string) (*Domain, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.domains[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return d, nil
}

// Names returns the registered domain names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.domains))
	for name := range r.domains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered domains.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.domains)
}

// Remove unregisters the domain and poisons its job slot: queued
// waiters fail immediately and later job attempts on a retained
// pointer fail with job.ErrDomainGone.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	d, ok := r.domains[name]
	if ok {
		delete(r.domains, name)
	}
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	d.jobs.MarkGone()
	r.logger.Info("domain removed", "domain", name)
	return nil
}
