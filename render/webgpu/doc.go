// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package webgpu is the WebGPU renderer backend, built directly on the
// wgpu HAL.
//
// Importing the package registers it under render.BackendWebGPU. The
// renderer itself does not import any HAL backend: the process either
// imports github.com/gogpu/wgpu/hal/allbackends (or a single backend) and
// selects a variant with WithBackendVariant, or injects one explicitly:
//
//	r := webgpu.New(webgpu.WithHALBackend(noop.API{}))
//	if err := r.Initialize(window); err != nil {
//	    return err
//	}
//	defer r.Close()
//
// The renderer binds to one of three color targets depending on the window
// it is given: a swap surface for windows exposing native handles
// (render.SurfaceHandle), the host's frame view for windows that already
// own a device (render.FrameSource), or an offscreen texture otherwise.
// Offscreen frames can be read back with Capture.
//
// Shaders are WGSL. CreateShader compiles them with naga, reflects the
// vertex inputs of vs_main and rejects shaders whose inputs do not match
// render.Vertex.
package webgpu
