// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import "github.com/gogpu/steelcast/render"

func init() {
	render.Register(render.BackendWebGPU, func() render.Renderer { return New() })
}
