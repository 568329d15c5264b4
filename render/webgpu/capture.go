// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"errors"
	"fmt"
	"image"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/steelcast/render"
)

// copyPitchAlignment is the row alignment required for texture-to-buffer copies.
const copyPitchAlignment = 256

var errNotOffscreen = errors.New("capture needs an offscreen color target")

// Capture reads the last rendered frame back from an offscreen target.
// It waits for the device to go idle.
func (r *Renderer) Capture() (*image.RGBA, error) {
	const op = "Capture"
	if err := r.checkState(op, false); err != nil {
		return nil, err
	}
	if r.state == render.StateFrameInProgress {
		return nil, render.NewError(op, render.CodeState, render.ErrFrameInProgress)
	}
	target, ok := r.target.(*offscreenTarget)
	if !ok {
		return nil, render.NewError(op, render.CodeCapture, errNotOffscreen)
	}
	img, err := r.readback(target)
	if err != nil {
		slogger().Error("webgpu: capture failed", "err", err)
		return nil, render.NewError(op, render.CodeCapture, err)
	}
	return img, nil
}

func (r *Renderer) readback(t *offscreenTarget) (*image.RGBA, error) {
	width, height := uint32(t.extent.Width), uint32(t.extent.Height) //nolint:gosec // target sizes are positive
	rowBytes := width * 4
	pitch := (rowBytes + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	size := uint64(pitch) * uint64(height)

	staging, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "steelcast_capture",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer r.device.DestroyBuffer(staging)

	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "steelcast_capture"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	defer encoder.Destroy()
	if err := encoder.BeginEncoding("steelcast_capture"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	encoder.CopyTextureToBuffer(t.texture, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{BytesPerRow: pitch, RowsPerImage: height},
		TextureBase:  hal.ImageCopyTexture{Texture: t.texture, Aspect: gputypes.TextureAspectAll},
		Size:         hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
	}})
	cmd, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer r.device.FreeCommandBuffer(cmd)

	if _, err := r.queue.Submit([]hal.CommandBuffer{cmd}); err != nil {
		return nil, fmt.Errorf("submit copy: %w", err)
	}
	if err := r.device.WaitIdle(); err != nil {
		return nil, fmt.Errorf("wait idle: %w", err)
	}

	mapping, err := r.device.MapBuffer(staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("map staging buffer: %w", err)
	}
	defer func() { _ = r.device.UnmapBuffer(staging) }()

	data := unsafe.Slice((*byte)(mapping.Ptr), size)
	img := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	for y := range int(height) {
		src := data[uint32(y)*pitch : uint32(y)*pitch+rowBytes] //nolint:gosec // y < height
		copy(img.Pix[y*img.Stride:], src)
	}
	return img, nil
}
