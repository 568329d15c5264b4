// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/steelcast/event"
	"github.com/gogpu/steelcast/internal/cache"
	"github.com/gogpu/steelcast/render"
)

var (
	errNoBackend = errors.New("no HAL backend registered")
	errNoAdapter = errors.New("no GPU adapter found")
	errNilWindow = errors.New("window is nil")
)

// preferredVariants is the lookup order when no backend is configured.
var preferredVariants = []gputypes.Backend{
	gputypes.BackendVulkan,
	gputypes.BackendMetal,
	gputypes.BackendDX12,
	gputypes.BackendGL,
	gputypes.BackendEmpty,
}

// Viewport is the rectangle and depth range of the current frame.
type Viewport struct {
	X, Y, Width, Height float32
	MinDepth, MaxDepth  float32
}

// Stats counts the work submitted by a renderer.
type Stats struct {
	Frames    uint64
	Draws     uint64
	Triangles uint64
}

// resource is a GPU object created by a factory and owned by the renderer.
type resource interface {
	release(device hal.Device)
}

// submission is a command buffer in flight.
type submission struct {
	index   uint64
	cmd     hal.CommandBuffer
	encoder hal.CommandEncoder
}

// bindings holds the BindBuffer overrides for the next draw.
type bindings struct {
	vertex   *Buffer
	index    *Buffer
	constant *Buffer
}

// Renderer is the WebGPU implementation of render.Renderer.
//
// A Renderer is not safe for concurrent use.
type Renderer struct {
	opts  options
	state render.State
	// failed names the initialization step that failed.
	failed render.Code

	window   render.Window
	backend  hal.Backend
	instance hal.Instance
	surface  hal.Surface
	adapter  hal.ExposedAdapter
	device   hal.Device
	queue    hal.Queue
	external bool // device and queue belong to the host

	target     colorTarget
	depth      *depthTarget
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	defaults   *Buffer // bound when a material has no constant buffer

	resources []resource
	shaders   *cache.Cache[[32]byte, *compiledUnit]

	frame    *frame
	inflight []submission
	bound    bindings
	viewport Viewport
	stats    Stats
}

var _ render.Renderer = (*Renderer)(nil)

// New returns an uninitialized renderer.
func New(opts ...Option) *Renderer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Renderer{
		opts:    o,
		shaders: cache.New[[32]byte, *compiledUnit](shaderCacheSize),
	}
}

// Backend implements render.Renderer.
func (r *Renderer) Backend() render.Backend { return render.BackendWebGPU }

// State implements render.Renderer.
func (r *Renderer) State() render.State { return r.state }

// FailedStep returns the code of the step that made Initialize fail, or
// CodeUnknown.
func (r *Renderer) FailedStep() render.Code { return r.failed }

// AdapterInfo describes the adapter chosen by Initialize.
func (r *Renderer) AdapterInfo() gputypes.AdapterInfo { return r.adapter.Info }

// Viewport returns the viewport set by the last BeginFrame or Resize.
func (r *Renderer) Viewport() Viewport { return r.viewport }

// Stats returns the submission counters.
func (r *Renderer) Stats() Stats { return r.stats }

// Size returns the size of the color target.
func (r *Renderer) Size() render.Size {
	if r.target == nil {
		return render.Size{}
	}
	return r.target.size()
}

// Initialize implements render.Renderer.
func (r *Renderer) Initialize(w render.Window) error {
	const op = "Initialize"
	switch r.state {
	case render.StateUninitialized:
	case render.StateFailed:
		return render.NewError(op, render.CodeState, render.ErrInitFailed)
	case render.StateClosed:
		return render.NewError(op, render.CodeState, render.ErrClosed)
	default:
		return render.NewError(op, render.CodeState, render.ErrAlreadyInitialized)
	}
	if w == nil {
		return render.NewError(op, render.CodeState, errNilWindow)
	}

	if err := r.initialize(w); err != nil {
		r.teardown()
		r.state = render.StateFailed
		r.failed = render.CodeOf(err)
		slogger().Error("webgpu: initialize failed", "step", r.failed, "err", err)
		return err
	}

	r.window = w
	r.state = render.StateInitialized
	r.viewport = fullViewport(r.target.size())
	slogger().Info("webgpu: renderer initialized",
		"adapter", r.adapter.Info.Name,
		"backend", r.adapter.Info.Backend,
		"format", r.target.format(),
		"size", r.target.size())
	return nil
}

func (r *Renderer) initialize(w render.Window) error {
	const op = "Initialize"
	size := w.Size()

	if src, ok := w.(render.FrameSource); ok {
		if err := r.useHostDevice(src.DeviceProvider()); err != nil {
			return render.NewError(op, render.CodeDevice, err)
		}
		r.target = &hostTarget{source: src, last: size}
	} else {
		if err := r.createInstance(); err != nil {
			return render.NewError(op, render.CodeInstance, err)
		}
		if sh, ok := w.(render.SurfaceHandle); ok {
			display, window := sh.SurfaceHandles()
			surface, err := r.instance.CreateSurface(display, window)
			if err != nil {
				return render.NewError(op, render.CodeSurface, fmt.Errorf("create surface: %w", err))
			}
			r.surface = surface
		}
		if err := r.selectAdapter(); err != nil {
			return render.NewError(op, render.CodeAdapter, err)
		}
		if err := r.openDevice(); err != nil {
			return render.NewError(op, render.CodeDevice, err)
		}
		if err := r.createColorTarget(size); err != nil {
			return render.NewError(op, render.CodeColorTarget, err)
		}
	}

	depth, err := newDepthTarget(r.device, size)
	if err != nil {
		return render.NewError(op, render.CodeDepthTarget, err)
	}
	r.depth = depth

	if err := r.createLayouts(); err != nil {
		return render.NewError(op, render.CodeLayout, err)
	}
	return nil
}

func (r *Renderer) resolveBackend() (hal.Backend, error) {
	if r.opts.halBackend != nil {
		return r.opts.halBackend, nil
	}
	if r.opts.hasVariant {
		b, ok := hal.GetBackend(r.opts.variant)
		if !ok {
			return nil, fmt.Errorf("%w: %s", errNoBackend, r.opts.variant)
		}
		return b, nil
	}
	for _, v := range preferredVariants {
		if b, ok := hal.GetBackend(v); ok {
			return b, nil
		}
	}
	return nil, errNoBackend
}

func (r *Renderer) createInstance() error {
	backend, err := r.resolveBackend()
	if err != nil {
		return err
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{
		Backends: gputypes.Backends(1) << backend.Variant(),
	})
	if err != nil {
		return fmt.Errorf("create %s instance: %w", backend.Variant(), err)
	}
	r.backend = backend
	r.instance = instance
	return nil
}

// selectAdapter picks a discrete GPU when one is exposed, else the first adapter.
func (r *Renderer) selectAdapter() error {
	adapters := r.instance.EnumerateAdapters(r.surface)
	if len(adapters) == 0 {
		return errNoAdapter
	}
	chosen := adapters[0]
	for _, a := range adapters {
		if a.Info.DeviceType == gputypes.DeviceTypeDiscreteGPU {
			chosen = a
			break
		}
	}
	for _, a := range adapters {
		if a.Adapter != chosen.Adapter {
			a.Adapter.Destroy()
		}
	}
	r.adapter = chosen
	slogger().Info("webgpu: adapter selected",
		"name", chosen.Info.Name, "type", chosen.Info.DeviceType, "candidates", len(adapters))
	return nil
}

func (r *Renderer) openDevice() error {
	opened, err := r.adapter.Adapter.Open(0, r.adapter.Capabilities.Limits)
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	r.device = opened.Device
	r.queue = opened.Queue
	return nil
}

// useHostDevice borrows the device and queue of a host window. The provider
// must expose HalDevice() any and HalQueue() any.
func (r *Renderer) useHostDevice(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok || hp == nil {
		return fmt.Errorf("device provider %T does not expose HAL types", provider)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return errors.New("provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return errors.New("provider HalQueue is not hal.Queue")
	}
	r.device = device
	r.queue = queue
	r.external = true
	r.adapter.Info.Name = "host"
	return nil
}

func (r *Renderer) createColorTarget(size render.Size) error {
	if r.surface == nil {
		t, err := newOffscreenTarget(r.device, size)
		if err != nil {
			return err
		}
		r.target = t
		return nil
	}
	t, err := newSurfaceTarget(r.device, r.surface, r.surfaceFormat(), size)
	if err != nil {
		return err
	}
	r.target = t
	return nil
}

// surfaceFormat prefers BGRA8Unorm, then whatever the surface lists first.
func (r *Renderer) surfaceFormat() gputypes.TextureFormat {
	caps := r.adapter.Adapter.SurfaceCapabilities(r.surface)
	if caps == nil || len(caps.Formats) == 0 {
		return gputypes.TextureFormatBGRA8Unorm
	}
	for _, f := range caps.Formats {
		if f == gputypes.TextureFormatBGRA8Unorm {
			return f
		}
	}
	return caps.Formats[0]
}

func (r *Renderer) createLayouts() error {
	layout, err := r.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "steelcast_constants_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	r.bindLayout = layout

	pipeLayout, err := r.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "steelcast_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{r.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	r.pipeLayout = pipeLayout

	defaults, err := r.newBuffer("steelcast_default_constants", render.BufferConstant, defaultConstantsSize)
	if err != nil {
		return err
	}
	r.defaults = defaults
	return nil
}

// teardown destroys the objects created by Initialize in reverse order.
// It is safe on a partially initialized renderer.
func (r *Renderer) teardown() {
	if r.defaults != nil {
		r.defaults.release(r.device)
		r.defaults = nil
	}
	if r.pipeLayout != nil {
		r.device.DestroyPipelineLayout(r.pipeLayout)
		r.pipeLayout = nil
	}
	if r.bindLayout != nil {
		r.device.DestroyBindGroupLayout(r.bindLayout)
		r.bindLayout = nil
	}
	if r.depth != nil {
		r.depth.destroy()
		r.depth = nil
	}
	if r.target != nil {
		r.target.destroy()
		r.target = nil
	}
	if r.device != nil && !r.external {
		r.device.Destroy()
	}
	r.device = nil
	r.queue = nil
	if r.surface != nil {
		r.surface.Destroy()
		r.surface = nil
	}
	if r.adapter.Adapter != nil {
		r.adapter.Adapter.Destroy()
		r.adapter.Adapter = nil
	}
	if r.instance != nil {
		r.instance.Destroy()
		r.instance = nil
	}
}

// Resize implements render.Renderer. An empty size (a minimized window)
// is ignored.
func (r *Renderer) Resize(size render.Size) error {
	const op = "Resize"
	if err := r.checkState(op, false); err != nil {
		return err
	}
	if r.state == render.StateFrameInProgress {
		return render.NewError(op, render.CodeState, render.ErrFrameInProgress)
	}
	if size.Empty() {
		slogger().Debug("webgpu: ignoring empty resize", "size", size)
		return nil
	}
	if err := r.resizeTargets(op, size); err != nil {
		return err
	}
	r.viewport = fullViewport(size)
	return nil
}

func (r *Renderer) resizeTargets(op string, size render.Size) error {
	if err := r.target.resize(size); err != nil {
		slogger().Error("webgpu: resize color target failed", "size", size, "err", err)
		return render.NewError(op, render.CodeColorTarget, err)
	}
	return r.resizeDepth(op, size)
}

func (r *Renderer) resizeDepth(op string, size render.Size) error {
	if r.depth != nil && r.depth.extent == size {
		return nil
	}
	depth, err := newDepthTarget(r.device, size)
	if err != nil {
		slogger().Error("webgpu: resize depth target failed", "size", size, "err", err)
		return render.NewError(op, render.CodeDepthTarget, err)
	}
	if r.depth != nil {
		r.depth.destroy()
	}
	r.depth = depth
	slogger().Debug("webgpu: targets resized", "size", size)
	return nil
}

// Close implements render.Renderer. It waits for the GPU, then releases
// every resource in reverse creation order. Close is idempotent.
func (r *Renderer) Close() error {
	if r.state == render.StateClosed {
		return nil
	}
	if r.state == render.StateFrameInProgress {
		r.abortFrame()
	}
	var err error
	if r.device != nil {
		if werr := r.device.WaitIdle(); werr != nil {
			err = render.NewError("Close", render.CodeDevice, werr)
			slogger().Warn("webgpu: wait idle failed", "err", werr)
		}
		r.recycle(true)
		for i := len(r.resources) - 1; i >= 0; i-- {
			r.resources[i].release(r.device)
		}
	}
	r.resources = nil
	r.shaders.Clear()
	r.teardown()
	r.state = render.StateClosed
	slogger().Info("webgpu: renderer closed", "frames", r.stats.Frames)
	return err
}

// checkState rejects calls before Initialize, after a failed Initialize and
// after Close. inFrame additionally requires an open frame.
func (r *Renderer) checkState(op string, inFrame bool) error {
	switch r.state {
	case render.StateUninitialized:
		return render.NewError(op, render.CodeState, render.ErrNotInitialized)
	case render.StateFailed:
		return render.NewError(op, render.CodeState, render.ErrInitFailed)
	case render.StateClosed:
		return render.NewError(op, render.CodeState, render.ErrClosed)
	case render.StateInitialized:
		if inFrame {
			return render.NewError(op, render.CodeState, render.ErrNoFrame)
		}
	}
	return nil
}

func (r *Renderer) track(res resource) {
	r.resources = append(r.resources, res)
}

// misuse logs a logical error, reports it to the event emitter with the
// location of the caller of the public method, and returns it.
func (r *Renderer) misuse(op string, code render.Code, cause error, msg string) error {
	err := render.NewError(op, code, cause)
	slogger().Error("webgpu: "+msg, "op", op, "code", code)
	if r.opts.events != nil {
		loc := event.Caller(2)
		if ferr := r.opts.events.Fire(event.New(event.ErrorArgs{Message: msg, Location: loc})); ferr != nil {
			slogger().Warn("webgpu: error event not queued", "err", ferr)
		}
	}
	return err
}

func fullViewport(size render.Size) Viewport {
	return Viewport{
		Width:    float32(size.Width),
		Height:   float32(size.Height),
		MaxDepth: 1,
	}
}
