// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is the single vertex format of the engine. Every shader's vertex
// stage must consume it as:
//
//	@location(0) position: vec3<f32>
//	@location(1) normal:   vec3<f32>
//	@location(2) uv:       vec2<f32>
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// VertexSize is the size of Vertex in bytes.
const VertexSize = 32

// Byte offsets of the Vertex attributes.
const (
	PositionOffset = 0
	NormalOffset   = 12
	UVOffset       = 24
)

// AttributeKind is the component layout of one vertex attribute.
type AttributeKind uint8

const (
	// AttributeFloat2 is vec2<f32>.
	AttributeFloat2 AttributeKind = iota + 1
	// AttributeFloat3 is vec3<f32>.
	AttributeFloat3
)

// Attribute describes one vertex input.
type Attribute struct {
	Location uint32
	Kind     AttributeKind
	Offset   uint64
}

// VertexLayout returns the attributes of Vertex in location order.
func VertexLayout() []Attribute {
	return []Attribute{
		{Location: 0, Kind: AttributeFloat3, Offset: PositionOffset},
		{Location: 1, Kind: AttributeFloat3, Offset: NormalOffset},
		{Location: 2, Kind: AttributeFloat2, Offset: UVOffset},
	}
}

// VertexBytes returns the raw bytes of vs without copying.
func VertexBytes(vs []Vertex) []byte {
	if len(vs) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&vs[0])), len(vs)*VertexSize)
}

// IndexBytes returns the raw bytes of indices without copying.
func IndexBytes(indices []uint32) []byte {
	if len(indices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&indices[0])), len(indices)*4)
}
