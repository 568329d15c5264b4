// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorWrapping(t *testing.T) {
	err := NewError("CreateMesh", CodeBackendMismatch, ErrBackendMismatch)
	wrapped := fmt.Errorf("load cube: %w", err)

	if !errors.Is(wrapped, ErrBackendMismatch) {
		t.Error("errors.Is(wrapped, ErrBackendMismatch) = false")
	}
	if got := CodeOf(wrapped); got != CodeBackendMismatch {
		t.Errorf("CodeOf = %v, want %v", got, CodeBackendMismatch)
	}
	want := "render: CreateMesh: backend-mismatch: render: resource belongs to a different backend"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestErrorWithoutCause(t *testing.T) {
	err := NewError("EndFrame", CodePresent, nil)
	if got, want := err.Error(), "render: EndFrame: present"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestCodeOfPlainError(t *testing.T) {
	if got := CodeOf(errors.New("x")); got != CodeUnknown {
		t.Errorf("CodeOf(plain) = %v, want unknown", got)
	}
}

func TestCodeString(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{CodeState, "state"},
		{CodeShaderCompile, "shader-compile"},
		{CodeCapture, "capture"},
		{Code(999), "Code(999)"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("Code(%d).String() = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestStateString(t *testing.T) {
	if got := StateFrameInProgress.String(); got != "FrameInProgress" {
		t.Errorf("String() = %q", got)
	}
	if got := State(77).String(); got != "State(77)" {
		t.Errorf("String() = %q", got)
	}
}
