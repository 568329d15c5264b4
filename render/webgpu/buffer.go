// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/steelcast/render"
)

// defaultConstantsSize is the size of the zero uniform block bound for
// materials without constants.
const defaultConstantsSize = 256

// Buffer is a GPU buffer of one render.BufferKind.
type Buffer struct {
	label string
	kind  render.BufferKind
	size  uint64
	raw   hal.Buffer
	group hal.BindGroup // constant buffers only

	queue    hal.Queue
	released bool
}

var _ render.Buffer = (*Buffer)(nil)

// Backend implements render.Buffer.
func (b *Buffer) Backend() render.Backend { return render.BackendWebGPU }

// Kind implements render.Buffer.
func (b *Buffer) Kind() render.BufferKind { return b.kind }

// Size implements render.Buffer.
func (b *Buffer) Size() uint64 { return b.size }

// Label returns the debug label.
func (b *Buffer) Label() string { return b.label }

func (b *Buffer) gpuBuffer() *Buffer { return b }

// write overwrites the buffer from offset 0.
func (b *Buffer) write(data []byte) error {
	if b.released {
		return render.ErrClosed
	}
	if uint64(len(data)) > b.size {
		return fmt.Errorf("write %d bytes into %d-byte buffer %s", len(data), b.size, b.label)
	}
	if len(data) == 0 {
		return nil
	}
	return b.queue.WriteBuffer(b.raw, 0, data)
}

func (b *Buffer) release(device hal.Device) {
	if b.released {
		return
	}
	b.released = true
	if b.group != nil {
		device.DestroyBindGroup(b.group)
		b.group = nil
	}
	if b.raw != nil {
		device.DestroyBuffer(b.raw)
		b.raw = nil
	}
}

// gpuBufferer is implemented by *Buffer and every type embedding it.
type gpuBufferer interface {
	gpuBuffer() *Buffer
}

// asBuffer unwraps a render.Buffer created by this package.
func asBuffer(buf render.Buffer) (*Buffer, error) {
	if buf == nil {
		return nil, render.ErrNilBuffer
	}
	g, ok := buf.(gpuBufferer)
	if !ok {
		return nil, render.ErrBackendMismatch
	}
	b := g.gpuBuffer()
	if b == nil || b.raw == nil {
		return nil, render.ErrNilBuffer
	}
	return b, nil
}

func bufferUsage(kind render.BufferKind) gputypes.BufferUsage {
	switch kind {
	case render.BufferVertex:
		return gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst
	case render.BufferIndex:
		return gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst
	default:
		return gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst
	}
}

// newBuffer allocates an untracked buffer; constant buffers also get a bind
// group on the shared layout.
func (r *Renderer) newBuffer(label string, kind render.BufferKind, size uint64) (*Buffer, error) {
	raw, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: bufferUsage(kind),
	})
	if err != nil {
		return nil, fmt.Errorf("create %s buffer %s: %w", kind, label, err)
	}
	b := &Buffer{label: label, kind: kind, size: size, raw: raw, queue: r.queue}

	if kind == render.BufferConstant {
		group, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:  label + "_group",
			Layout: r.bindLayout,
			Entries: []gputypes.BindGroupEntry{{
				Binding:  0,
				Resource: gputypes.BufferBinding{Buffer: raw.NativeHandle(), Size: size},
			}},
		})
		if err != nil {
			r.device.DestroyBuffer(raw)
			return nil, fmt.Errorf("create bind group for %s: %w", label, err)
		}
		b.group = group
	}
	slogger().Debug("webgpu: buffer created", "label", label, "kind", kind, "size", size)
	return b, nil
}

// ConstantBuffer is a uniform buffer holding exactly one T.
//
// T must be plain data laid out the way the shader's uniform block expects
// it; the bytes of T are copied verbatim.
type ConstantBuffer[T any] struct {
	*Buffer
	value T
}

// ConstantSize returns the allocation size for T: its size rounded up to a
// multiple of 16 bytes, and at least 16.
func ConstantSize[T any]() uint64 {
	var zero T
	size := (uint64(unsafe.Sizeof(zero)) + 15) &^ 15
	if size == 0 {
		size = 16
	}
	return size
}

// CreateConstantBuffer allocates a constant buffer for T and uploads initial.
// The renderer owns the buffer and releases it on Close.
func CreateConstantBuffer[T any](r *Renderer, initial T) (*ConstantBuffer[T], error) {
	const op = "CreateConstantBuffer"
	if err := r.checkState(op, false); err != nil {
		return nil, err
	}
	b, err := r.newBuffer(fmt.Sprintf("steelcast_constants_%d", len(r.resources)), render.BufferConstant, ConstantSize[T]())
	if err != nil {
		slogger().Error("webgpu: constant buffer creation failed", "err", err)
		return nil, render.NewError(op, render.CodeBuffer, err)
	}
	cb := &ConstantBuffer[T]{Buffer: b}
	if err := UpdateConstantBuffer(cb, initial); err != nil {
		b.release(r.device)
		return nil, err
	}
	r.track(b)
	return cb, nil
}

// UpdateConstantBuffer overwrites the whole buffer with v.
func UpdateConstantBuffer[T any](cb *ConstantBuffer[T], v T) error {
	const op = "UpdateConstantBuffer"
	if cb == nil || cb.Buffer == nil {
		return render.NewError(op, render.CodeNilResource, render.ErrNilBuffer)
	}
	cb.value = v
	data := make([]byte, cb.size)
	copy(data, unsafe.Slice((*byte)(unsafe.Pointer(&cb.value)), unsafe.Sizeof(cb.value)))
	if err := cb.write(data); err != nil {
		return render.NewError(op, render.CodeBuffer, err)
	}
	return nil
}

// Value returns the last value written.
func (cb *ConstantBuffer[T]) Value() T { return cb.value }
