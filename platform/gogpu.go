package platform

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gogpu"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/steelcast/render"
)

var errNoFrame = errors.New("platform: no frame in progress")

// Gogpu is a native window opened by the gogpu framework. gogpu owns the
// device and the swap chain, so the window is a render.FrameSource: the
// renderer borrows the device and draws into the surface view of the frame
// in progress.
//
// The device is created when the loop starts. Renderers bound to the window
// must be initialized from inside the first frame.
type Gogpu struct {
	app  *gogpu.App
	keys *KeyState

	mu    sync.Mutex
	title string
	size  render.Size
	dc    *gogpu.Context

	teardown teardownHook

	running atomic.Bool
	closed  atomic.Bool
}

// NewGogpu creates the gogpu application backing a window. The OS window
// opens when Run is called.
func NewGogpu(title string, size render.Size) *Gogpu {
	app := gogpu.NewApp(gogpu.DefaultConfig().
		WithTitle(title).
		WithSize(size.Width, size.Height))

	g := &Gogpu{
		app:   app,
		keys:  NewKeyState(),
		title: title,
		size:  size,
	}
	g.keys.Attach(app.EventSource())
	return g
}

func (g *Gogpu) Title() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.title
}

// Size returns the surface size of the last frame, or the requested size
// before the first frame.
func (g *Gogpu) Size() render.Size {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.size
}

// SetTitle records the title. gogpu applies the title when the window
// opens, so changes after Run are reported by Title only.
func (g *Gogpu) SetTitle(title string) {
	g.mu.Lock()
	g.title = title
	g.mu.Unlock()
}

// SetSize records the requested size. The OS window keeps the size the
// user gives it once open.
func (g *Gogpu) SetSize(size render.Size) {
	g.mu.Lock()
	g.size = size
	g.mu.Unlock()
}

func (g *Gogpu) Keys() *KeyState { return g.keys }

// Run opens the window and calls frame from gogpu's draw callback. It
// returns when the user closes the window, ctx is done, Close is called, or
// frame returns an error.
//
// gogpu destroys its device before its own Run returns. The teardown hook
// therefore runs from gogpu's close callback, on the render thread, ahead of
// that. If no frame was drawn the hook runs after gogpu returns instead.
func (g *Gogpu) Run(ctx context.Context, frame FrameFunc) error {
	if g.closed.Load() {
		return ErrClosed
	}
	if !g.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer g.running.Store(false)

	var (
		last    time.Time
		stopped bool
		drawn   bool
		loopErr error
	)
	g.app.OnDraw(func(dc *gogpu.Context) {
		if stopped {
			return
		}
		if err := ctx.Err(); err != nil || g.closed.Load() {
			loopErr, stopped = err, true
			g.app.Quit()
			return
		}
		w, h := dc.Width(), dc.Height()
		if w <= 0 || h <= 0 {
			return
		}

		now := time.Now()
		var dt time.Duration
		if !last.IsZero() {
			dt = now.Sub(last)
		}
		last = now

		g.mu.Lock()
		g.dc = dc
		g.size = render.Size{Width: w, Height: h}
		g.mu.Unlock()

		drawn = true
		err := frame(dt)

		g.mu.Lock()
		g.dc = nil
		g.mu.Unlock()

		if err != nil {
			loopErr, stopped = err, true
			g.app.Quit()
		}
	})
	g.app.OnClose(func() {
		slogger().Info("platform: window closed", "title", g.Title())
		g.teardown.run(stopErr(loopErr))
	})

	slogger().Info("platform: gogpu loop started", "size", g.Size())
	err := stopErr(loopErr)
	if runErr := g.app.Run(); runErr != nil {
		err = fmt.Errorf("platform: gogpu run: %w", runErr)
	}
	if fn := g.teardown.take(); fn != nil {
		if drawn {
			// The device is gone; releasing now would touch freed objects.
			slogger().Warn("platform: gogpu closed without a close callback, GPU resources not released")
		} else {
			fn(err)
		}
	}
	return err
}

// OnTeardown implements Window.
func (g *Gogpu) OnTeardown(fn func(err error)) { g.teardown.set(fn) }

// Close stops a running loop at the next frame.
func (g *Gogpu) Close() error {
	g.closed.Store(true)
	return nil
}

// DeviceProvider returns gogpu's device provider. It exposes HalDevice and
// HalQueue once the loop has started.
func (g *Gogpu) DeviceProvider() any {
	return g.app.GPUContextProvider()
}

// FrameView returns the HAL view of the surface texture being drawn.
func (g *Gogpu) FrameView() (any, render.Size, error) {
	g.mu.Lock()
	dc, size := g.dc, g.size
	g.mu.Unlock()
	if dc == nil {
		return nil, render.Size{}, errNoFrame
	}
	view, err := halView(dc.SurfaceView())
	if err != nil {
		return nil, render.Size{}, err
	}
	return view, size, nil
}

// SurfaceFormat returns the swap chain format, or Undefined before the
// device exists.
func (g *Gogpu) SurfaceFormat() gputypes.TextureFormat {
	p := g.app.GPUContextProvider()
	if p == nil {
		return gputypes.TextureFormatUndefined
	}
	return p.SurfaceFormat()
}

// halView unwraps the surface view handed out by gogpu.
func halView(v any) (hal.TextureView, error) {
	var view hal.TextureView
	switch t := v.(type) {
	case *wgpu.TextureView:
		if t != nil {
			view = t.HalTextureView()
		}
	case gpucontext.TextureView:
		if !t.IsNil() {
			view = (*wgpu.TextureView)(t.Pointer()).HalTextureView()
		}
	case hal.TextureView:
		view = t
	default:
		return nil, fmt.Errorf("platform: unsupported surface view %T", v)
	}
	if view == nil {
		return nil, fmt.Errorf("platform: surface view released")
	}
	return view, nil
}
