// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by *Error.
var (
	// ErrNotInitialized is returned by calls that need Initialize first.
	ErrNotInitialized = errors.New("render: renderer not initialized")

	// ErrAlreadyInitialized is returned by a second Initialize.
	ErrAlreadyInitialized = errors.New("render: renderer already initialized")

	// ErrInitFailed is returned after a failed Initialize left the renderer unusable.
	ErrInitFailed = errors.New("render: renderer failed to initialize")

	// ErrClosed is returned by calls made after Close.
	ErrClosed = errors.New("render: renderer closed")

	// ErrBackendMismatch is returned when a resource built by another backend
	// is passed to a renderer.
	ErrBackendMismatch = errors.New("render: resource belongs to a different backend")

	// ErrNilShader is returned when a material has no shader.
	ErrNilShader = errors.New("render: material has no shader")

	// ErrNilBuffer is returned when an unset buffer is bound.
	ErrNilBuffer = errors.New("render: buffer is not set")

	// ErrUnknownBufferKind is returned for a BufferKind outside the known set.
	ErrUnknownBufferKind = errors.New("render: unknown buffer type")

	// ErrBufferKind is returned when a buffer is bound as a kind it was not created for.
	ErrBufferKind = errors.New("render: buffer kind does not match binding")

	// ErrFrameInProgress is returned by BeginFrame while a frame is open.
	ErrFrameInProgress = errors.New("render: frame already in progress")

	// ErrNoFrame is returned by DrawMesh and EndFrame outside a frame.
	ErrNoFrame = errors.New("render: no frame in progress")

	// ErrEmptyMesh is returned for meshes without vertices or indices.
	ErrEmptyMesh = errors.New("render: mesh has no vertices or indices")

	// ErrBadShaderPaths is returned when CreateShader gets neither one nor two paths.
	ErrBadShaderPaths = errors.New("render: CreateShader takes one or two paths")
)

// Code classifies renderer failures.
type Code uint16

// Failure codes. Initialization codes name the step that failed.
const (
	CodeUnknown Code = iota
	CodeState
	CodeInstance
	CodeSurface
	CodeAdapter
	CodeDevice
	CodeColorTarget
	CodeDepthTarget
	CodeLayout
	CodeShaderSource
	CodeShaderCompile
	CodeInputLayout
	CodePipeline
	CodeBuffer
	CodeBackendMismatch
	CodeNilResource
	CodeEncode
	CodeSubmit
	CodePresent
	CodeCapture
)

var codeNames = [...]string{
	CodeUnknown:         "unknown",
	CodeState:           "state",
	CodeInstance:        "instance",
	CodeSurface:         "surface",
	CodeAdapter:         "adapter",
	CodeDevice:          "device",
	CodeColorTarget:     "color-target",
	CodeDepthTarget:     "depth-target",
	CodeLayout:          "layout",
	CodeShaderSource:    "shader-source",
	CodeShaderCompile:   "shader-compile",
	CodeInputLayout:     "input-layout",
	CodePipeline:        "pipeline",
	CodeBuffer:          "buffer",
	CodeBackendMismatch: "backend-mismatch",
	CodeNilResource:     "nil-resource",
	CodeEncode:          "encode",
	CodeSubmit:          "submit",
	CodePresent:         "present",
	CodeCapture:         "capture",
}

// String returns the code name.
func (c Code) String() string {
	if int(c) < len(codeNames) {
		return codeNames[c]
	}
	return fmt.Sprintf("Code(%d)", uint16(c))
}

// Error is the structured error returned by renderer operations.
type Error struct {
	// Op is the renderer operation, e.g. "CreateMesh".
	Op string
	// Code classifies the failure.
	Code Code
	// Err is the underlying cause.
	Err error
}

// NewError builds an *Error.
func NewError(op string, code Code, err error) *Error {
	return &Error{Op: op, Code: code, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("render: %s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("render: %s: %s: %v", e.Op, e.Code, e.Err)
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error { return e.Err }

// CodeOf returns the Code of the first *Error in err's chain, or CodeUnknown.
func CodeOf(err error) Code {
	var re *Error
	if errors.As(err, &re) {
		return re.Code
	}
	return CodeUnknown
}
