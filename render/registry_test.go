// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"testing"
)

type stubRenderer struct {
	Renderer
	name Backend
}

func (s *stubRenderer) Backend() Backend { return s.name }

func TestRegistry(t *testing.T) {
	const name Backend = "stub"
	Register(name, func() Renderer { return &stubRenderer{name: name} })
	t.Cleanup(func() { Unregister(name) })

	if !IsRegistered(name) {
		t.Fatal("IsRegistered(stub) = false, want true")
	}
	r, err := New(name)
	if err != nil {
		t.Fatalf("New(stub): %v", err)
	}
	if r.Backend() != name {
		t.Errorf("Backend() = %q, want %q", r.Backend(), name)
	}

	found := false
	for _, b := range Available() {
		if b == name {
			found = true
		}
	}
	if !found {
		t.Errorf("Available() = %v, missing %q", Available(), name)
	}
	if DefaultBackend() == "" {
		t.Error("DefaultBackend() is empty with a registered backend")
	}
}

func TestDefaultBackendPriority(t *testing.T) {
	Register("zz-stub", func() Renderer { return &stubRenderer{name: "zz-stub"} })
	t.Cleanup(func() { Unregister("zz-stub") })
	if got := DefaultBackend(); got != "zz-stub" {
		t.Errorf("DefaultBackend() = %q, want zz-stub", got)
	}

	Register(BackendWebGPU, func() Renderer { return &stubRenderer{name: BackendWebGPU} })
	t.Cleanup(func() { Unregister(BackendWebGPU) })
	if got := DefaultBackend(); got != BackendWebGPU {
		t.Errorf("DefaultBackend() = %q, want %q", got, BackendWebGPU)
	}
}

func TestRegistry_Unknown(t *testing.T) {
	if _, err := New("missing"); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("New(missing) = %v, want ErrBackendNotAvailable", err)
	}
	if IsRegistered("missing") {
		t.Error("IsRegistered(missing) = true")
	}
}

func TestRegistry_NilFactoryResult(t *testing.T) {
	const name Backend = "nil-factory"
	Register(name, func() Renderer { return nil })
	t.Cleanup(func() { Unregister(name) })
	if _, err := New(name); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("New(nil-factory) = %v, want ErrBackendNotAvailable", err)
	}
}
