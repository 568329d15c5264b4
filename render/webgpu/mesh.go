// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"fmt"

	"github.com/gogpu/steelcast/render"
)

// MaterialSpec describes a material before it is created.
type MaterialSpec struct {
	Shader    render.Shader
	Constants render.Buffer
}

// Backend implements render.MaterialSpec.
func (s *MaterialSpec) Backend() render.Backend { return render.BackendWebGPU }

// Material pairs a shader with an optional constant buffer.
type Material struct {
	shader    *Shader
	constants *Buffer
}

var _ render.Material = (*Material)(nil)

// Backend implements render.Material.
func (m *Material) Backend() render.Backend { return render.BackendWebGPU }

// Shader implements render.Material. It returns nil when the material has
// no shader.
func (m *Material) Shader() render.Shader {
	if m.shader == nil {
		return nil
	}
	return m.shader
}

// Constants implements render.Material.
func (m *Material) Constants() render.Buffer {
	if m.constants == nil {
		return nil
	}
	return m.constants
}

// Mesh is indexed triangle-list geometry drawn with one material.
type Mesh struct {
	vertices []render.Vertex
	indices  []uint32
	material *Material

	vertexBuf *Buffer
	indexBuf  *Buffer
}

var _ render.Mesh = (*Mesh)(nil)

// Material implements render.Mesh.
func (m *Mesh) Material() render.Material { return m.material }

// Vertices implements render.Mesh. The slice is the mesh's CPU copy;
// changes become visible on the GPU after UploadMesh.
func (m *Mesh) Vertices() []render.Vertex { return m.vertices }

// Indices implements render.Mesh.
func (m *Mesh) Indices() []uint32 { return m.indices }

// NewMaterialSpec implements render.Renderer.
func (r *Renderer) NewMaterialSpec(shader render.Shader, constants render.Buffer) render.MaterialSpec {
	return &MaterialSpec{Shader: shader, Constants: constants}
}

// CreateMaterial implements render.Renderer. The spec, its shader and its
// constant buffer must all come from this backend. A nil shader is
// accepted here and rejected by DrawMesh.
func (r *Renderer) CreateMaterial(spec render.MaterialSpec) (render.Material, error) {
	const op = "CreateMaterial"
	if err := r.checkState(op, false); err != nil {
		return nil, err
	}
	s, ok := spec.(*MaterialSpec)
	if !ok || s == nil {
		return nil, r.misuse(op, render.CodeBackendMismatch, render.ErrBackendMismatch,
			"CreateMaterial: spec was not created by the webgpu renderer")
	}

	m := &Material{}
	if s.Shader != nil {
		sh, ok := s.Shader.(*Shader)
		if !ok {
			return nil, r.misuse(op, render.CodeBackendMismatch, render.ErrBackendMismatch,
				"CreateMaterial: shader was not created by the webgpu renderer")
		}
		m.shader = sh
	}
	if s.Constants != nil {
		b, err := asBuffer(s.Constants)
		if err != nil {
			return nil, r.misuse(op, render.CodeBackendMismatch, err,
				"CreateMaterial: constant buffer was not created by the webgpu renderer")
		}
		if b.kind != render.BufferConstant {
			return nil, r.misuse(op, render.CodeBuffer, render.ErrBufferKind,
				"CreateMaterial: "+b.kind.String()+" buffer used as constants")
		}
		m.constants = b
	}
	return m, nil
}

// CreateMesh implements render.Renderer. Compatibility is checked before
// any GPU memory is allocated.
func (r *Renderer) CreateMesh(vertices []render.Vertex, indices []uint32, material render.Material) (render.Mesh, error) {
	const op = "CreateMesh"
	if err := r.checkState(op, false); err != nil {
		return nil, err
	}
	mat, ok := material.(*Material)
	if !ok || mat == nil {
		return nil, r.misuse(op, render.CodeBackendMismatch, render.ErrBackendMismatch,
			"CreateMesh: material was not created by the webgpu renderer")
	}
	if len(vertices) == 0 || len(indices) == 0 {
		return nil, render.NewError(op, render.CodeBuffer, render.ErrEmptyMesh)
	}
	for i, idx := range indices {
		if int(idx) >= len(vertices) {
			return nil, render.NewError(op, render.CodeBuffer,
				fmt.Errorf("index %d at %d out of range for %d vertices", idx, i, len(vertices)))
		}
	}

	id := len(r.resources)
	vb, err := r.newBuffer(fmt.Sprintf("steelcast_vertices_%d", id), render.BufferVertex,
		uint64(len(vertices))*render.VertexSize)
	if err != nil {
		return nil, render.NewError(op, render.CodeBuffer, err)
	}
	ib, err := r.newBuffer(fmt.Sprintf("steelcast_indices_%d", id), render.BufferIndex,
		uint64(len(indices))*4)
	if err != nil {
		vb.release(r.device)
		return nil, render.NewError(op, render.CodeBuffer, err)
	}

	mesh := &Mesh{
		vertices:  vertices,
		indices:   indices,
		material:  mat,
		vertexBuf: vb,
		indexBuf:  ib,
	}
	if err := r.upload(mesh); err != nil {
		ib.release(r.device)
		vb.release(r.device)
		return nil, render.NewError(op, render.CodeBuffer, err)
	}
	r.track(vb)
	r.track(ib)
	return mesh, nil
}

// UploadMesh copies the mesh's CPU vertices and indices to its GPU buffers.
// The counts must not have grown since CreateMesh.
func (r *Renderer) UploadMesh(m render.Mesh) error {
	const op = "UploadMesh"
	if err := r.checkState(op, false); err != nil {
		return err
	}
	mesh, ok := m.(*Mesh)
	if !ok || mesh == nil {
		return r.misuse(op, render.CodeBackendMismatch, render.ErrBackendMismatch,
			"UploadMesh: mesh was not created by the webgpu renderer")
	}
	if err := r.upload(mesh); err != nil {
		return render.NewError(op, render.CodeBuffer, err)
	}
	return nil
}

func (r *Renderer) upload(m *Mesh) error {
	if err := m.vertexBuf.write(render.VertexBytes(m.vertices)); err != nil {
		return fmt.Errorf("upload vertices: %w", err)
	}
	if err := m.indexBuf.write(render.IndexBytes(m.indices)); err != nil {
		return fmt.Errorf("upload indices: %w", err)
	}
	return nil
}
