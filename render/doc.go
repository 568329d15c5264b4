// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render defines the backend-neutral renderer contract.
//
// The types here describe what every backend offers: the Renderer
// lifecycle, the Vertex format, GPU resource handles (Shader, Buffer,
// Material, Mesh) and the Window boundary a renderer binds to. Concrete
// backends live in sub-packages and register themselves:
//
//	import _ "github.com/gogpu/steelcast/render/webgpu"
//
//	r, err := render.New(render.BackendWebGPU)
//	if err != nil {
//	    return err
//	}
//	if err := r.Initialize(window); err != nil {
//	    return err
//	}
//	defer r.Close()
//
// # Lifecycle
//
// A renderer starts Uninitialized. Initialize moves it to Initialized
// exactly once; a failed Initialize moves it to Failed and every later call
// returns ErrInitFailed. BeginFrame and EndFrame toggle between Initialized
// and FrameInProgress. Close is terminal.
//
// # Errors
//
// Operations return *Error values carrying a Code, so callers can branch on
// the failure class without matching message text:
//
//	if render.CodeOf(err) == render.CodeShaderCompile {
//	    // show diagnostics
//	}
//
// Resources built by one backend are rejected by another with
// ErrBackendMismatch.
package render
