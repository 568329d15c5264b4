// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"errors"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/steelcast/event"
	"github.com/gogpu/steelcast/render"
)

type testWindow struct {
	title string
	size  render.Size
}

func (w *testWindow) Title() string     { return w.title }
func (w *testWindow) Size() render.Size { return w.size }

// recorder is a synchronous event.Emitter.
type recorder struct {
	mu     sync.Mutex
	events []*event.Event
}

func (r *recorder) Fire(e *event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) errors() []event.ErrorArgs {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []event.ErrorArgs
	for _, e := range r.events {
		if a, ok := e.Args.(event.ErrorArgs); ok {
			out = append(out, a)
		}
	}
	return out
}

func newTestRenderer(t *testing.T, opts ...Option) (*Renderer, *recorder) {
	t.Helper()
	rec := &recorder{}
	opts = append([]Option{WithHALBackend(noop.API{}), WithEvents(rec)}, opts...)
	r := New(opts...)
	if err := r.Initialize(&testWindow{title: "test", size: render.Size{Width: 800, Height: 600}}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r, rec
}

// quad is two CCW triangles facing -z.
func quad() ([]render.Vertex, []uint32) {
	n := mgl32.Vec3{0, 0, -1}
	return []render.Vertex{
		{Position: mgl32.Vec3{-0.5, -0.5, 0}, Normal: n, UV: mgl32.Vec2{0, 0}},
		{Position: mgl32.Vec3{0.5, -0.5, 0}, Normal: n, UV: mgl32.Vec2{1, 0}},
		{Position: mgl32.Vec3{0.5, 0.5, 0}, Normal: n, UV: mgl32.Vec2{1, 1}},
		{Position: mgl32.Vec3{-0.5, 0.5, 0}, Normal: n, UV: mgl32.Vec2{0, 1}},
	}, []uint32{0, 1, 2, 2, 3, 0}
}

type matrices struct {
	World, View, MVP mgl32.Mat4
	Pad              float32
}

// foreign types belong to no backend this renderer knows.
type foreignShader struct{}

func (foreignShader) Backend() render.Backend { return "foreign" }
func (foreignShader) Label() string           { return "foreign" }

type foreignMaterial struct{}

func (foreignMaterial) Backend() render.Backend  { return "foreign" }
func (foreignMaterial) Shader() render.Shader    { return foreignShader{} }
func (foreignMaterial) Constants() render.Buffer { return nil }

type foreignBuffer struct{}

func (foreignBuffer) Backend() render.Backend { return "foreign" }
func (foreignBuffer) Kind() render.BufferKind { return render.BufferConstant }
func (foreignBuffer) Size() uint64            { return 16 }

// faults wraps the noop backend and fails texture creation by label.
type faults struct {
	failTexture string

	mu                sync.Mutex
	textures          int
	deviceDestroyed   bool
	instanceDestroyed bool
}

var errInjected = errors.New("injected failure")

type faultBackend struct {
	noop.API
	f *faults
}

func (b faultBackend) CreateInstance(desc *hal.InstanceDescriptor) (hal.Instance, error) {
	inst, err := b.API.CreateInstance(desc)
	if err != nil {
		return nil, err
	}
	return &faultInstance{Instance: inst, f: b.f}, nil
}

type faultInstance struct {
	hal.Instance
	f *faults
}

func (i *faultInstance) EnumerateAdapters(s hal.Surface) []hal.ExposedAdapter {
	adapters := i.Instance.EnumerateAdapters(s)
	for k := range adapters {
		adapters[k].Adapter = &faultAdapter{Adapter: adapters[k].Adapter, f: i.f}
	}
	return adapters
}

func (i *faultInstance) Destroy() {
	i.f.instanceDestroyed = true
	i.Instance.Destroy()
}

type faultAdapter struct {
	hal.Adapter
	f *faults
}

func (a *faultAdapter) Open(features gputypes.Features, limits gputypes.Limits) (hal.OpenDevice, error) {
	od, err := a.Adapter.Open(features, limits)
	if err != nil {
		return od, err
	}
	od.Device = &faultDevice{Device: od.Device, f: a.f}
	return od, nil
}

type faultDevice struct {
	hal.Device
	f *faults
}

func (d *faultDevice) CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error) {
	if desc.Label == d.f.failTexture {
		return nil, errInjected
	}
	d.f.mu.Lock()
	d.f.textures++
	d.f.mu.Unlock()
	return d.Device.CreateTexture(desc)
}

func (d *faultDevice) DestroyTexture(t hal.Texture) {
	d.f.mu.Lock()
	d.f.textures--
	d.f.mu.Unlock()
	d.Device.DestroyTexture(t)
}

func (d *faultDevice) Destroy() {
	d.f.deviceDestroyed = true
	d.Device.Destroy()
}
