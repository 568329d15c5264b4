// Package platform provides the windows a steelcast application runs in.
//
// Two implementations exist. Headless draws into an offscreen target at a
// fixed time step and is driven by tests and CI. Gogpu opens a native window
// through the gogpu framework and shares its GPU device with the renderer.
//
// A Window drives the frame loop:
//
//	err := w.Run(ctx, func(dt time.Duration) error {
//	    if w.Keys().Down(gpucontext.KeyEscape) {
//	        return platform.ErrQuit
//	    }
//	    return drawFrame(dt)
//	})
//
// Code that owns GPU objects bound to the window releases them from the
// OnTeardown hook, which runs before the window gives up its device.
package platform

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gogpu/steelcast/render"
)

var (
	// ErrQuit is returned by a FrameFunc to stop the loop cleanly.
	// Run then returns nil.
	ErrQuit = errors.New("platform: quit")

	// ErrClosed is returned by Run on a closed window.
	ErrClosed = errors.New("platform: window closed")

	// ErrRunning is returned by Run when the loop is already running.
	ErrRunning = errors.New("platform: window already running")
)

// FrameFunc is called once per frame with the time elapsed since the
// previous frame. Returning an error stops the loop.
type FrameFunc func(dt time.Duration) error

// Window is an application window.
type Window interface {
	render.Window

	// SetTitle changes the window title.
	SetTitle(title string)

	// SetSize requests a new client area size.
	SetSize(size render.Size)

	// Keys returns the keyboard state updated by the window.
	Keys() *KeyState

	// Run drives the frame loop until the window closes, ctx is done, or
	// frame returns an error.
	Run(ctx context.Context, frame FrameFunc) error

	// OnTeardown sets fn to run once when the next loop ends, on the
	// thread that ran the frames and while the window's GPU device is
	// still alive. err is the value Run returns. Renderers that draw into
	// the window are released here.
	OnTeardown(fn func(err error))

	// Close releases the window.
	Close() error
}

// teardownHook holds the function run when a loop ends.
type teardownHook struct {
	mu sync.Mutex
	fn func(err error)
}

func (t *teardownHook) set(fn func(err error)) {
	t.mu.Lock()
	t.fn = fn
	t.mu.Unlock()
}

// take removes and returns the pending function.
func (t *teardownHook) take() func(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn := t.fn
	t.fn = nil
	return fn
}

func (t *teardownHook) run(err error) {
	if fn := t.take(); fn != nil {
		fn(err)
	}
}

// stopErr maps the error that ended a loop to the value Run returns.
func stopErr(err error) error {
	if errors.Is(err, ErrQuit) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
