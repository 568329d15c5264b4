// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "fmt"

// Backend names a concrete GPU implementation of Renderer.
type Backend string

// BackendWebGPU is the WebGPU backend built on gogpu/wgpu HAL.
const BackendWebGPU Backend = "webgpu"

// State is the renderer lifecycle state.
type State uint8

const (
	// StateUninitialized is the state of a freshly constructed renderer.
	StateUninitialized State = iota

	// StateInitialized means GPU objects exist and no frame is open.
	StateInitialized

	// StateFrameInProgress lasts from BeginFrame to EndFrame.
	StateFrameInProgress

	// StateFailed is entered when Initialize fails. The renderer is unusable.
	StateFailed

	// StateClosed is entered by Close.
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateInitialized:
		return "Initialized"
	case StateFrameInProgress:
		return "FrameInProgress"
	case StateFailed:
		return "Failed"
	case StateClosed:
		return "Closed"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Renderer owns a GPU device and its presentation targets, creates GPU
// resources and sequences frames.
//
// Per frame the calls must come in this order: BeginFrame, any number of
// DrawMesh, EndFrame. Resource factories may be called any time after
// Initialize, including between BeginFrame and EndFrame.
//
// Renderers are not safe for concurrent use. All calls must come from the
// goroutine that owns the window.
type Renderer interface {
	// Backend identifies the implementation. Materials and specs carry the
	// same tag and are only accepted by a renderer with a matching one.
	Backend() Backend

	// State reports the current lifecycle state.
	State() State

	// Initialize binds the renderer to w and creates the device, color
	// target and depth target. It succeeds at most once per renderer.
	Initialize(w Window) error

	// Resize recreates the size-dependent targets.
	Resize(size Size) error

	// BeginFrame clears the targets and sets the viewport to size.
	BeginFrame(size Size) error

	// DrawMesh records one indexed draw of m into the open frame.
	DrawMesh(m Mesh) error

	// EndFrame submits the frame and presents it.
	EndFrame() error

	// CreateShader compiles a shader from one file holding both stages or
	// from a vertex path followed by a fragment path.
	CreateShader(paths ...string) (Shader, error)

	// NewMaterialSpec returns the backend spec for a shader and an optional
	// constant buffer.
	NewMaterialSpec(shader Shader, constants Buffer) MaterialSpec

	// CreateMaterial builds a material from a spec of the same backend.
	CreateMaterial(spec MaterialSpec) (Material, error)

	// CreateMesh uploads vertices and indices and binds them to material.
	CreateMesh(vertices []Vertex, indices []uint32, material Material) (Mesh, error)

	// BindBuffer overrides the buffer used for kind by subsequent draws.
	BindBuffer(kind BufferKind, buf Buffer) error

	// Close releases every GPU object the renderer created.
	Close() error
}
