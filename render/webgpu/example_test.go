// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu_test

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/steelcast/render"
	"github.com/gogpu/steelcast/render/webgpu"
)

type offscreen struct{}

func (offscreen) Title() string     { return "example" }
func (offscreen) Size() render.Size { return render.Size{Width: 320, Height: 240} }

type uniforms struct {
	World, View, MVP mgl32.Mat4
	Pad              float32
}

// Example draws one triangle into an offscreen target. The noop HAL
// backend stands in for a GPU.
func Example() {
	r := webgpu.New(webgpu.WithHALBackend(noop.API{}))
	if err := r.Initialize(offscreen{}); err != nil {
		fmt.Println("initialize:", err)
		return
	}
	defer r.Close()

	shader, err := r.CreateShader("basic.wgsl")
	if err != nil {
		fmt.Println("shader:", err)
		return
	}
	constants, err := webgpu.CreateConstantBuffer(r, uniforms{MVP: mgl32.Ident4()})
	if err != nil {
		fmt.Println("constants:", err)
		return
	}
	mat, err := r.CreateMaterial(r.NewMaterialSpec(shader, constants))
	if err != nil {
		fmt.Println("material:", err)
		return
	}
	mesh, err := r.CreateMesh([]render.Vertex{
		{Position: mgl32.Vec3{-0.5, -0.5, 0}},
		{Position: mgl32.Vec3{0.5, -0.5, 0}},
		{Position: mgl32.Vec3{0, 0.5, 0}},
	}, []uint32{0, 1, 2}, mat)
	if err != nil {
		fmt.Println("mesh:", err)
		return
	}

	if err := r.BeginFrame(r.Size()); err != nil {
		fmt.Println("begin:", err)
		return
	}
	if err := r.DrawMesh(mesh); err != nil {
		fmt.Println("draw:", err)
	}
	if err := r.EndFrame(); err != nil {
		fmt.Println("end:", err)
		return
	}

	s := r.Stats()
	fmt.Printf("frames=%d draws=%d triangles=%d\n", s.Frames, s.Draws, s.Triangles)
	fmt.Println("constant buffer bytes:", constants.Size())
	// Output:
	// frames=1 draws=1 triangles=1
	// constant buffer bytes: 208
}

// ExampleConstantSize shows the padded size of a uniform block.
func ExampleConstantSize() {
	type light struct {
		Direction mgl32.Vec3
		Intensity float32
		Color     mgl32.Vec3
	}
	fmt.Println(webgpu.ConstantSize[light]())
	// Output: 32
}
