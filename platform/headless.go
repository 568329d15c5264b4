package platform

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/steelcast/render"
)

// DefaultStep is the frame time reported by a headless window.
const DefaultStep = time.Second / 60

// Headless is a window without a display. A renderer bound to it draws
// into an offscreen texture. Frames advance at a fixed step as fast as the
// frame function allows.
type Headless struct {
	keys *KeyState

	mu    sync.Mutex
	title string
	size  render.Size

	teardown teardownHook

	limit   uint64
	step    time.Duration
	frames  atomic.Uint64
	running atomic.Bool
	closed  atomic.Bool
}

// HeadlessOption configures a Headless window.
type HeadlessOption func(*Headless)

// WithFrameLimit stops Run after n frames. Zero means no limit.
func WithFrameLimit(n uint64) HeadlessOption {
	return func(h *Headless) { h.limit = n }
}

// WithStep sets the frame time passed to the frame function.
func WithStep(d time.Duration) HeadlessOption {
	return func(h *Headless) {
		if d > 0 {
			h.step = d
		}
	}
}

// NewHeadless returns a headless window with the given title and size.
func NewHeadless(title string, size render.Size, opts ...HeadlessOption) *Headless {
	h := &Headless{
		keys:  NewKeyState(),
		title: title,
		size:  size,
		step:  DefaultStep,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Headless) Title() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.title
}

func (h *Headless) Size() render.Size {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.size
}

func (h *Headless) SetTitle(title string) {
	h.mu.Lock()
	h.title = title
	h.mu.Unlock()
}

// SetSize changes the size. The renderer picks it up on the next frame.
func (h *Headless) SetSize(size render.Size) {
	h.mu.Lock()
	h.size = size
	h.mu.Unlock()
}

func (h *Headless) Keys() *KeyState { return h.keys }

// Frames returns the number of frames run so far.
func (h *Headless) Frames() uint64 { return h.frames.Load() }

// Run calls frame until the frame limit is reached, ctx is done, Close is
// called, or frame returns an error. ErrQuit and context cancellation end
// the loop without an error. The teardown hook runs before Run returns.
func (h *Headless) Run(ctx context.Context, frame FrameFunc) error {
	if h.closed.Load() {
		return ErrClosed
	}
	if !h.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer h.running.Store(false)

	slogger().Info("platform: headless loop started", "size", h.Size(), "limit", h.limit)
	err := h.loop(ctx, frame)
	h.teardown.run(err)
	return err
}

func (h *Headless) loop(ctx context.Context, frame FrameFunc) error {
	for h.limit == 0 || h.frames.Load() < h.limit {
		if h.closed.Load() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return stopErr(err)
		}
		if err := frame(h.step); err != nil {
			return stopErr(err)
		}
		h.frames.Add(1)
	}
	return nil
}

// OnTeardown implements Window.
func (h *Headless) OnTeardown(fn func(err error)) { h.teardown.set(fn) }

// Close stops a running loop after the current frame.
func (h *Headless) Close() error {
	h.closed.Store(true)
	return nil
}
