// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "github.com/gogpu/gputypes"

// Window is what a renderer binds its presentation target to.
//
// A window additionally implements exactly one of SurfaceHandle or
// FrameSource. A window that implements neither is headless and the
// renderer draws into an offscreen texture.
type Window interface {
	// Title returns the window title.
	Title() string

	// Size returns the client area size in pixels.
	Size() Size
}

// SurfaceHandle is implemented by windows backed by a native OS window.
// The renderer creates and owns a swap surface for it.
type SurfaceHandle interface {
	// SurfaceHandles returns the platform display and window handles
	// (for example the X11 display and window, or 0 and an HWND).
	SurfaceHandles() (display, window uintptr)
}

// FrameSource is implemented by windows whose host framework owns the GPU
// device and the swap chain. The renderer borrows the host device and
// draws into the view the host hands out for each frame; the host presents.
type FrameSource interface {
	// DeviceProvider returns a value exposing HalDevice() any and
	// HalQueue() any.
	DeviceProvider() any

	// FrameView returns the texture view of the frame being drawn and its
	// size in pixels.
	FrameView() (view any, size Size, err error)

	// SurfaceFormat returns the format of the views returned by FrameView.
	SurfaceFormat() gputypes.TextureFormat
}
