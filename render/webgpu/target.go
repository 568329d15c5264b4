// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/steelcast/render"
)

// colorTarget is where frames are rendered.
type colorTarget interface {
	// acquire returns the view for the next frame and its size.
	acquire() (hal.TextureView, render.Size, error)
	// present hands the acquired frame to the display.
	present(queue hal.Queue) error
	// discard drops an acquired frame without presenting it.
	discard()
	resize(size render.Size) error
	format() gputypes.TextureFormat
	size() render.Size
	destroy()
}

// surfaceTarget renders into a configured swap surface.
type surfaceTarget struct {
	device  hal.Device
	surface hal.Surface
	config  hal.SurfaceConfiguration

	current hal.SurfaceTexture
	view    hal.TextureView
}

func newSurfaceTarget(device hal.Device, surface hal.Surface, format gputypes.TextureFormat, size render.Size) (*surfaceTarget, error) {
	t := &surfaceTarget{
		device:  device,
		surface: surface,
		config: hal.SurfaceConfiguration{
			Width:       uint32(size.Width),  //nolint:gosec // window sizes are small positive ints
			Height:      uint32(size.Height), //nolint:gosec // window sizes are small positive ints
			Format:      format,
			Usage:       gputypes.TextureUsageRenderAttachment,
			PresentMode: gputypes.PresentModeFifo,
			AlphaMode:   gputypes.CompositeAlphaModeOpaque,
		},
	}
	if err := surface.Configure(device, &t.config); err != nil {
		return nil, fmt.Errorf("configure surface %s: %w", size, err)
	}
	return t, nil
}

func (t *surfaceTarget) acquire() (hal.TextureView, render.Size, error) {
	acquired, err := t.surface.AcquireTexture(nil)
	if errors.Is(err, hal.ErrSurfaceOutdated) {
		// The window changed under us; reconfigure once and retry.
		if err = t.surface.Configure(t.device, &t.config); err == nil {
			acquired, err = t.surface.AcquireTexture(nil)
		}
	}
	if err != nil {
		return nil, render.Size{}, fmt.Errorf("acquire surface texture: %w", err)
	}
	if acquired.Suboptimal {
		slogger().Debug("webgpu: surface texture is suboptimal")
	}

	view, err := t.device.CreateTextureView(acquired.Texture, &hal.TextureViewDescriptor{
		Label:     "steelcast_surface_view",
		Format:    t.config.Format,
		Dimension: gputypes.TextureViewDimension2D,
		Aspect:    gputypes.TextureAspectAll,
	})
	if err != nil {
		t.surface.DiscardTexture(acquired.Texture)
		return nil, render.Size{}, fmt.Errorf("create surface view: %w", err)
	}
	t.current = acquired.Texture
	t.view = view
	return view, t.size(), nil
}

func (t *surfaceTarget) present(queue hal.Queue) error {
	if t.current == nil {
		return nil
	}
	err := queue.Present(t.surface, t.current, nil)
	t.release()
	return err
}

func (t *surfaceTarget) discard() {
	if t.current == nil {
		return
	}
	t.surface.DiscardTexture(t.current)
	t.release()
}

func (t *surfaceTarget) release() {
	if t.view != nil {
		t.device.DestroyTextureView(t.view)
		t.view = nil
	}
	t.current = nil
}

func (t *surfaceTarget) resize(size render.Size) error {
	t.discard()
	t.config.Width = uint32(size.Width)   //nolint:gosec // checked by caller
	t.config.Height = uint32(size.Height) //nolint:gosec // checked by caller
	if err := t.surface.Configure(t.device, &t.config); err != nil {
		return fmt.Errorf("reconfigure surface %s: %w", size, err)
	}
	return nil
}

func (t *surfaceTarget) format() gputypes.TextureFormat { return t.config.Format }

func (t *surfaceTarget) size() render.Size {
	return render.Size{Width: int(t.config.Width), Height: int(t.config.Height)}
}

// destroy unconfigures the surface. The surface itself belongs to the renderer.
func (t *surfaceTarget) destroy() {
	t.discard()
	t.surface.Unconfigure(t.device)
}

// offscreenTarget renders into a texture that can be read back.
type offscreenTarget struct {
	device  hal.Device
	texture hal.Texture
	view    hal.TextureView
	extent  render.Size
}

func newOffscreenTarget(device hal.Device, size render.Size) (*offscreenTarget, error) {
	t := &offscreenTarget{device: device}
	if err := t.create(size); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *offscreenTarget) create(size render.Size) error {
	tex, view, err := createAttachment(t.device, "steelcast_offscreen", OffscreenFormat,
		gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageCopySrc, size)
	if err != nil {
		return err
	}
	t.texture, t.view, t.extent = tex, view, size
	return nil
}

func (t *offscreenTarget) acquire() (hal.TextureView, render.Size, error) {
	return t.view, t.extent, nil
}

func (t *offscreenTarget) present(hal.Queue) error { return nil }
func (t *offscreenTarget) discard()                {}

func (t *offscreenTarget) resize(size render.Size) error {
	t.destroy()
	return t.create(size)
}

func (t *offscreenTarget) format() gputypes.TextureFormat { return OffscreenFormat }
func (t *offscreenTarget) size() render.Size              { return t.extent }

func (t *offscreenTarget) destroy() {
	if t.view != nil {
		t.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.texture != nil {
		t.device.DestroyTexture(t.texture)
		t.texture = nil
	}
}

// hostTarget renders into the view of a host that owns the surface and
// presents it itself.
type hostTarget struct {
	source render.FrameSource
	last   render.Size
}

func (t *hostTarget) acquire() (hal.TextureView, render.Size, error) {
	view, size, err := t.source.FrameView()
	if err != nil {
		return nil, render.Size{}, fmt.Errorf("host frame view: %w", err)
	}
	hv, ok := view.(hal.TextureView)
	if !ok || hv == nil {
		return nil, render.Size{}, fmt.Errorf("host frame view: unsupported view type %T", view)
	}
	t.last = size
	return hv, size, nil
}

func (t *hostTarget) present(hal.Queue) error       { return nil }
func (t *hostTarget) discard()                      {}
func (t *hostTarget) resize(size render.Size) error { t.last = size; return nil }
func (t *hostTarget) format() gputypes.TextureFormat {
	return t.source.SurfaceFormat()
}
func (t *hostTarget) size() render.Size { return t.last }
func (t *hostTarget) destroy()          {}

// depthTarget is the Depth24PlusStencil8 attachment shared by all draws.
type depthTarget struct {
	device  hal.Device
	texture hal.Texture
	view    hal.TextureView
	extent  render.Size
}

func newDepthTarget(device hal.Device, size render.Size) (*depthTarget, error) {
	tex, view, err := createAttachment(device, "steelcast_depth", DepthFormat,
		gputypes.TextureUsageRenderAttachment, size)
	if err != nil {
		return nil, err
	}
	return &depthTarget{device: device, texture: tex, view: view, extent: size}, nil
}

func (d *depthTarget) destroy() {
	if d.view != nil {
		d.device.DestroyTextureView(d.view)
		d.view = nil
	}
	if d.texture != nil {
		d.device.DestroyTexture(d.texture)
		d.texture = nil
	}
}

func createAttachment(device hal.Device, label string, format gputypes.TextureFormat, usage gputypes.TextureUsage, size render.Size) (hal.Texture, hal.TextureView, error) {
	if size.Empty() {
		return nil, nil, fmt.Errorf("create %s: empty size %s", label, size)
	}
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label: label,
		Size: hal.Extent3D{
			Width:              uint32(size.Width),  //nolint:gosec // checked above
			Height:             uint32(size.Height), //nolint:gosec // checked above
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create %s texture: %w", label, err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:     label + "_view",
		Format:    format,
		Dimension: gputypes.TextureViewDimension2D,
		Aspect:    gputypes.TextureAspectAll,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, nil, fmt.Errorf("create %s view: %w", label, err)
	}
	return tex, view, nil
}
