// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "fmt"

// BufferKind selects the pipeline slot a buffer is bound to.
type BufferKind uint8

const (
	// BufferVertex holds Vertex data.
	BufferVertex BufferKind = iota + 1

	// BufferIndex holds uint32 triangle-list indices.
	BufferIndex

	// BufferConstant holds one uniform block.
	BufferConstant
)

// String returns the buffer kind name.
func (k BufferKind) String() string {
	switch k {
	case BufferVertex:
		return "vertex"
	case BufferIndex:
		return "index"
	case BufferConstant:
		return "constant"
	default:
		return fmt.Sprintf("BufferKind(%d)", uint8(k))
	}
}

// Shader is a compiled vertex and fragment program pair.
type Shader interface {
	Backend() Backend
	Label() string
}

// Buffer is a GPU buffer owned by a renderer backend.
type Buffer interface {
	Backend() Backend
	Kind() BufferKind
	// Size returns the allocated size in bytes.
	Size() uint64
}

// MaterialSpec is a backend-specific description consumed by
// Renderer.CreateMaterial.
type MaterialSpec interface {
	Backend() Backend
}

// Material bundles a shader with an optional constant buffer.
type Material interface {
	Backend() Backend
	Shader() Shader
	// Constants returns the constant buffer, or nil.
	Constants() Buffer
}

// Mesh is indexed triangle geometry bound to a material.
type Mesh interface {
	Material() Material
	Vertices() []Vertex
	Indices() []uint32
}
