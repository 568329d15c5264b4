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

// frame is the state between BeginFrame and EndFrame.
type frame struct {
	encoder hal.CommandEncoder
	pass    hal.RenderPassEncoder
	draws   int
}

// BeginFrame implements render.Renderer. A size different from the current
// target size resizes the targets first; an empty size uses the target size.
func (r *Renderer) BeginFrame(size render.Size) error {
	const op = "BeginFrame"
	if err := r.checkState(op, false); err != nil {
		return err
	}
	if r.state == render.StateFrameInProgress {
		return render.NewError(op, render.CodeState, render.ErrFrameInProgress)
	}

	if _, host := r.target.(*hostTarget); !host && !size.Empty() && size != r.target.size() {
		if err := r.resizeTargets(op, size); err != nil {
			return err
		}
	}

	view, extent, err := r.target.acquire()
	if err != nil {
		slogger().Error("webgpu: acquire frame failed", "err", err)
		return render.NewError(op, render.CodeColorTarget, err)
	}
	if err := r.resizeDepth(op, extent); err != nil {
		r.target.discard()
		return err
	}
	if size.Empty() {
		size = extent
	}

	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "steelcast_frame"})
	if err != nil {
		r.target.discard()
		return render.NewError(op, render.CodeEncode, fmt.Errorf("create command encoder: %w", err))
	}
	if err := encoder.BeginEncoding("steelcast_frame"); err != nil {
		encoder.Destroy()
		r.target.discard()
		return render.NewError(op, render.CodeEncode, fmt.Errorf("begin encoding: %w", err))
	}

	pass := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "steelcast_main_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: r.opts.clearColor,
		}},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:              r.depth.view,
			DepthLoadOp:       gputypes.LoadOpClear,
			DepthStoreOp:      gputypes.StoreOpDiscard,
			DepthClearValue:   defaultDepthClear,
			StencilLoadOp:     gputypes.LoadOpClear,
			StencilStoreOp:    gputypes.StoreOpDiscard,
			StencilClearValue: defaultStencilClear,
		},
	})

	r.viewport = fullViewport(size)
	pass.SetViewport(r.viewport.X, r.viewport.Y, r.viewport.Width, r.viewport.Height,
		r.viewport.MinDepth, r.viewport.MaxDepth)

	r.frame = &frame{encoder: encoder, pass: pass}
	r.state = render.StateFrameInProgress
	return nil
}

// DrawMesh implements render.Renderer. A mesh from another backend or
// without a shader is reported and skipped.
func (r *Renderer) DrawMesh(m render.Mesh) error {
	const op = "DrawMesh"
	if err := r.checkState(op, true); err != nil {
		return err
	}
	mesh, ok := m.(*Mesh)
	if !ok || mesh == nil {
		return r.misuse(op, render.CodeBackendMismatch, render.ErrBackendMismatch,
			"DrawMesh: mesh was not created by the webgpu renderer")
	}
	if mesh.material == nil || mesh.material.shader == nil {
		return r.misuse(op, render.CodeNilResource, render.ErrNilShader,
			"DrawMesh: material has no shader")
	}

	vertices, indices := mesh.vertexBuf, mesh.indexBuf
	count := uint32(len(mesh.indices)) //nolint:gosec // index counts fit in uint32
	constants := mesh.material.constants
	if r.bound.vertex != nil {
		vertices = r.bound.vertex
	}
	if r.bound.index != nil {
		indices = r.bound.index
		count = uint32(indices.size / 4) //nolint:gosec // buffer sizes fit in uint32
	}
	if r.bound.constant != nil {
		constants = r.bound.constant
	}
	if constants == nil {
		constants = r.defaults
	}
	r.bound = bindings{}

	pass := r.frame.pass
	pass.SetPipeline(mesh.material.shader.pipeline)
	pass.SetBindGroup(0, constants.group, nil)
	pass.SetVertexBuffer(0, vertices.raw, 0)
	pass.SetIndexBuffer(indices.raw, gputypes.IndexFormatUint32, 0)
	pass.DrawIndexed(count, 1, 0, 0, 0)

	r.frame.draws++
	r.stats.Draws++
	r.stats.Triangles += uint64(count / 3)
	return nil
}

// EndFrame implements render.Renderer.
func (r *Renderer) EndFrame() error {
	const op = "EndFrame"
	if err := r.checkState(op, true); err != nil {
		return err
	}
	f := r.frame
	r.frame = nil
	r.state = render.StateInitialized

	f.pass.End()
	cmd, err := f.encoder.EndEncoding()
	if err != nil {
		f.encoder.Destroy()
		r.target.discard()
		return render.NewError(op, render.CodeEncode, fmt.Errorf("end encoding: %w", err))
	}

	index, err := r.queue.Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		r.device.FreeCommandBuffer(cmd)
		f.encoder.Destroy()
		r.target.discard()
		slogger().Error("webgpu: submit failed", "err", err)
		return render.NewError(op, render.CodeSubmit, err)
	}
	r.inflight = append(r.inflight, submission{index: index, cmd: cmd, encoder: f.encoder})

	if err := r.target.present(r.queue); err != nil {
		if errors.Is(err, hal.ErrSurfaceOutdated) {
			// The next acquire reconfigures the surface.
			slogger().Debug("webgpu: present on outdated surface", "err", err)
		} else {
			slogger().Error("webgpu: present failed", "err", err)
			return render.NewError(op, render.CodePresent, err)
		}
	}

	r.recycle(false)
	r.stats.Frames++
	return nil
}

// abortFrame drops an open frame without submitting it.
func (r *Renderer) abortFrame() {
	f := r.frame
	r.frame = nil
	r.state = render.StateInitialized
	f.pass.End()
	f.encoder.DiscardEncoding()
	f.encoder.Destroy()
	r.target.discard()
}

// recycle frees command buffers whose submission has completed. With all
// set it frees every one; the caller must have waited for the device.
func (r *Renderer) recycle(all bool) {
	if len(r.inflight) == 0 {
		return
	}
	completed := r.queue.PollCompleted()
	kept := r.inflight[:0]
	for _, s := range r.inflight {
		if !all && s.index > completed {
			kept = append(kept, s)
			continue
		}
		r.device.FreeCommandBuffer(s.cmd)
		s.encoder.Destroy()
	}
	clear(r.inflight[len(kept):])
	r.inflight = kept
}

// BindBuffer implements render.Renderer. The override applies to the next
// DrawMesh only.
func (r *Renderer) BindBuffer(kind render.BufferKind, buf render.Buffer) error {
	const op = "BindBuffer"
	if err := r.checkState(op, false); err != nil {
		return err
	}
	switch kind {
	case render.BufferVertex, render.BufferIndex, render.BufferConstant:
	default:
		slogger().Error("webgpu: unknown buffer type", "kind", kind)
		return render.NewError(op, render.CodeBuffer, render.ErrUnknownBufferKind)
	}

	b, err := asBuffer(buf)
	if err != nil {
		if errors.Is(err, render.ErrNilBuffer) {
			return r.misuse(op, render.CodeNilResource, err, "BindBuffer: "+kind.String()+" buffer is not set")
		}
		return r.misuse(op, render.CodeBackendMismatch, err, "BindBuffer: buffer was not created by the webgpu renderer")
	}
	if b.kind != kind {
		return r.misuse(op, render.CodeBuffer, render.ErrBufferKind,
			fmt.Sprintf("BindBuffer: %s buffer bound as %s", b.kind, kind))
	}

	switch kind {
	case render.BufferVertex:
		r.bound.vertex = b
	case render.BufferIndex:
		r.bound.index = b
	case render.BufferConstant:
		r.bound.constant = b
	}
	return nil
}
