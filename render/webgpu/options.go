// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"io/fs"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/steelcast/event"
	"github.com/gogpu/steelcast/resources"
)

// Default clear values.
var (
	DefaultClearColor = gputypes.Color{R: 0.1, G: 0.1, B: 0.1, A: 1}
)

const (
	defaultDepthClear   float32 = 1.0
	defaultStencilClear uint32  = 0

	// DepthFormat is the format of the depth target.
	DepthFormat = gputypes.TextureFormatDepth24PlusStencil8

	// OffscreenFormat is the color format of headless targets.
	OffscreenFormat = gputypes.TextureFormatRGBA8Unorm

	shaderCacheSize = 64
)

// Option configures a Renderer.
type Option func(*options)

type options struct {
	halBackend hal.Backend
	variant    gputypes.Backend
	hasVariant bool
	sources    fs.FS
	events     event.Emitter
	clearColor gputypes.Color
}

func defaultOptions() options {
	return options{
		sources:    resources.Shaders,
		clearColor: DefaultClearColor,
	}
}

// WithHALBackend sets the HAL backend used to create the instance.
// It takes precedence over WithBackendVariant.
func WithHALBackend(b hal.Backend) Option {
	return func(o *options) { o.halBackend = b }
}

// WithBackendVariant selects a registered HAL backend by variant.
// Without it (and without WithHALBackend) the first of Vulkan, Metal,
// DX12, GL and the software rasterizer that is registered is used.
func WithBackendVariant(v gputypes.Backend) Option {
	return func(o *options) {
		o.variant = v
		o.hasVariant = true
	}
}

// WithSources sets the file system CreateShader reads WGSL from.
// The default is the embedded resources.Shaders tree.
func WithSources(fsys fs.FS) Option {
	return func(o *options) {
		if fsys != nil {
			o.sources = fsys
		}
	}
}

// WithEvents sets the emitter that receives Error events for misuse.
func WithEvents(em event.Emitter) Option {
	return func(o *options) { o.events = em }
}

// WithClearColor overrides the frame clear color.
func WithClearColor(c gputypes.Color) Option {
	return func(o *options) { o.clearColor = c }
}
