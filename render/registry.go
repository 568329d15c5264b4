// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"sort"
	"sync"
)

// ErrBackendNotAvailable is returned when a requested backend is not registered.
var ErrBackendNotAvailable = errors.New("render: backend not available")

// Factory creates a new, uninitialized renderer.
type Factory func() Renderer

var (
	registryMu sync.RWMutex
	factories  = make(map[Backend]Factory)
	// Priority order for DefaultBackend (first registered wins).
	backendPriority = []Backend{BackendWebGPU}
)

// Register registers a renderer factory under name. Backend packages call
// it from init(). A later registration with the same name replaces the
// earlier one.
func Register(name Backend, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Unregister removes a backend. Used by tests.
func Unregister(name Backend) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns the registered backend names in sorted order.
func Available() []Backend {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]Backend, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// IsRegistered reports whether name is registered.
func IsRegistered(name Backend) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// New returns a renderer of the named backend.
func New(name Backend) (Renderer, error) {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()
	if !ok {
		return nil, ErrBackendNotAvailable
	}
	r := factory()
	if r == nil {
		return nil, ErrBackendNotAvailable
	}
	return r, nil
}

// DefaultBackend returns the best registered backend, or "" when none is
// registered. Backends in the priority list win; otherwise the first name in
// sorted order is used.
func DefaultBackend() Backend {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, name := range backendPriority {
		if _, ok := factories[name]; ok {
			return name
		}
	}
	var best Backend
	for name := range factories {
		if best == "" || name < best {
			best = name
		}
	}
	return best
}
