package steelcast

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal/noop"
	"golang.org/x/image/bmp"

	"github.com/gogpu/steelcast/event"
	"github.com/gogpu/steelcast/platform"
	"github.com/gogpu/steelcast/render"
	"github.com/gogpu/steelcast/render/webgpu"
)

// counter tallies delivered events by kind.
type counter struct {
	mu     sync.Mutex
	counts map[event.Kind]int
	errors []event.ErrorArgs
}

func watch(s *event.System) *counter {
	c := &counter{counts: make(map[event.Kind]int)}
	for _, k := range []event.Kind{event.KindError, event.KindAppStart, event.KindAppStop, event.KindRenderLoop} {
		s.Register(k, func(e *event.Event) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.counts[e.Kind]++
			if a, ok := e.Args.(event.ErrorArgs); ok {
				c.errors = append(c.errors, a)
			}
		})
	}
	return c
}

func (c *counter) get(k event.Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[k]
}

// newTestApp builds an application on the noop HAL backend.
func newTestApp(t *testing.T, cfg Config, opts ...Option) (*Application, *counter) {
	t.Helper()
	sys := event.NewSystem(event.WithQueueSize(cfg.EventQueueSize))
	r := webgpu.New(webgpu.WithHALBackend(noop.API{}), webgpu.WithEvents(sys))
	app, err := New(cfg, append([]Option{WithEventSystem(sys), WithRenderer(r)}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return app, watch(sys)
}

func TestRunHeadless(t *testing.T) {
	cfg := DefaultConfig().WithSize(64, 32).WithHeadless(5)
	app, events := newTestApp(t, cfg)

	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if app.Frame() != 5 {
		t.Errorf("Frame() = %d, want 5", app.Frame())
	}
	if got := app.Renderer().State(); got != render.StateClosed {
		t.Errorf("renderer state = %v, want Closed", got)
	}

	// Run halts the dispatcher after the stop event, so every event has
	// been delivered.
	if events.get(event.KindAppStart) != 1 || events.get(event.KindAppStop) != 1 {
		t.Errorf("AppStart, AppStop = %d, %d, want 1, 1",
			events.get(event.KindAppStart), events.get(event.KindAppStop))
	}
	if got := events.get(event.KindRenderLoop); got != 5 {
		t.Errorf("RenderLoop events = %d, want 5", got)
	}
	if got := events.get(event.KindError); got != 0 {
		t.Errorf("Error events = %d, want 0: %v", got, events.errors)
	}
	if !app.Assets().IsAssetLoaded("basic.wgsl") {
		t.Error("shader asset not cached")
	}
}

// orderWindow records when the renderer is released relative to the
// window's own teardown.
type orderWindow struct {
	*platform.Headless
	r   render.Renderer
	log []string
}

func (w *orderWindow) OnTeardown(fn func(error)) {
	w.Headless.OnTeardown(func(err error) {
		w.log = append(w.log, "teardown:"+w.r.State().String())
		fn(err)
		w.log = append(w.log, "released:"+w.r.State().String())
	})
}

func (w *orderWindow) Run(ctx context.Context, frame platform.FrameFunc) error {
	err := w.Headless.Run(ctx, frame)
	w.log = append(w.log, "returned:"+w.r.State().String())
	return err
}

func (w *orderWindow) Close() error {
	w.log = append(w.log, "close")
	return w.Headless.Close()
}

func TestRunClosesRendererInTeardown(t *testing.T) {
	cfg := DefaultConfig().WithSize(64, 32).WithHeadless(2)
	sys := event.NewSystem()
	r := webgpu.New(webgpu.WithHALBackend(noop.API{}), webgpu.WithEvents(sys))
	win := &orderWindow{Headless: platform.NewHeadless(cfg.Title, cfg.Size, platform.WithFrameLimit(2)), r: r}
	app, err := New(cfg, WithEventSystem(sys), WithRenderer(r), WithWindow(win))
	if err != nil {
		t.Fatal(err)
	}
	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{
		"teardown:" + render.StateInitialized.String(),
		"released:" + render.StateClosed.String(),
		"returned:" + render.StateClosed.String(),
		"close",
	}
	if strings.Join(win.log, ",") != strings.Join(want, ",") {
		t.Errorf("order = %v, want %v", win.log, want)
	}
}

func TestRunStats(t *testing.T) {
	cfg := DefaultConfig().WithSize(64, 32)
	win := platform.NewHeadless(cfg.Title, cfg.Size, platform.WithFrameLimit(10), platform.WithStep(100*time.Millisecond))
	app, _ := newTestApp(t, cfg, WithWindow(win))

	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	stats := app.gpu.Stats()
	if stats.Frames != 10 || stats.Draws != 10 || stats.Triangles != 120 {
		t.Errorf("Stats = %+v, want 10 frames, 10 draws, 120 triangles", stats)
	}
	if title := win.Title(); !strings.HasPrefix(title, cfg.Title+" | frame 10") {
		t.Errorf("title = %q, want frame statistics", title)
	}
}

func TestRunMovesCamera(t *testing.T) {
	cfg := DefaultConfig().WithSize(64, 32)
	win := platform.NewHeadless(cfg.Title, cfg.Size, platform.WithFrameLimit(4), platform.WithStep(250*time.Millisecond))
	app, _ := newTestApp(t, cfg, WithWindow(win))

	start := app.Camera().Position
	fwd := app.Camera().Forward()
	win.Keys().Press(gpucontext.KeyW)
	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// One second at the default speed of 2.
	want := start.Add(fwd.Mul(2))
	if d := app.Camera().Position.Sub(want).Len(); d > 1e-4 {
		t.Errorf("Position = %v, want %v", app.Camera().Position, want)
	}
}

func TestRunEscapeQuits(t *testing.T) {
	cfg := DefaultConfig().WithSize(64, 32)
	win := platform.NewHeadless(cfg.Title, cfg.Size)
	app, _ := newTestApp(t, cfg, WithWindow(win))

	win.Keys().Press(gpucontext.KeyEscape)
	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Escape did not stop the loop")
	}
	if app.Frame() != 0 {
		t.Errorf("Frame() = %d, want 0", app.Frame())
	}
}

func TestStopFromEvent(t *testing.T) {
	cfg := DefaultConfig().WithSize(64, 32).WithHeadless(0)
	app, _ := newTestApp(t, cfg)

	stopped := make(chan struct{})
	var once sync.Once
	app.Events().Register(event.KindRenderLoop, func(e *event.Event) {
		args := e.Args.(event.AppArgs)
		if args.App.Frame() >= 3 {
			args.App.Stop()
			once.Do(func() { close(stopped) })
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	select {
	case <-stopped:
	default:
		t.Fatal("loop ended without Stop")
	}
	if app.Frame() < 3 {
		t.Errorf("Frame() = %d, want at least 3", app.Frame())
	}
}

func TestRunCapture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.bmp")
	cfg := DefaultConfig().WithSize(64, 32).WithHeadless(2).WithCaptureFile(path)
	app, _ := newTestApp(t, cfg)

	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("capture not written: %v", err)
	}
	defer f.Close()
	img, err := bmp.Decode(f)
	if err != nil {
		t.Fatalf("decode capture: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
		t.Errorf("capture bounds = %v, want 64x32", b)
	}
}

func TestRunShaderMissing(t *testing.T) {
	cfg := DefaultConfig().WithSize(64, 32).WithHeadless(3)
	sys := event.NewSystem()
	r := webgpu.New(webgpu.WithHALBackend(noop.API{}), webgpu.WithEvents(sys), webgpu.WithSources(fstest.MapFS{}))
	app, err := New(cfg, WithEventSystem(sys), WithRenderer(r))
	if err != nil {
		t.Fatal(err)
	}
	events := watch(sys)

	if err := app.Run(context.Background()); err == nil {
		t.Fatal("Run = nil, want the shader load error")
	}
	if app.Frame() != 0 {
		t.Errorf("Frame() = %d, want 0", app.Frame())
	}
	if got := events.get(event.KindError); got == 0 {
		t.Error("no Error event for the failed load")
	}
	if app.Assets().IsAssetLoaded("basic.wgsl") {
		t.Error("failed shader left in the cache")
	}
}

func TestTwoApplications(t *testing.T) {
	cfg := DefaultConfig().WithSize(64, 32).WithHeadless(2)
	a, _ := newTestApp(t, cfg)
	b, _ := newTestApp(t, cfg.WithTitle("second"))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, app := range []*Application{a, b} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = app.Run(context.Background())
		}()
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Errorf("app %d: Run = %v", i, err)
		}
	}
	if a.Frame() != 2 || b.Frame() != 2 {
		t.Errorf("frames = %d, %d, want 2, 2", a.Frame(), b.Frame())
	}
}

type otherRenderer struct{ render.Renderer }

func (otherRenderer) Backend() render.Backend { return "other" }

func TestNewErrors(t *testing.T) {
	if _, err := New(DefaultConfig().WithSize(0, 0)); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("New(empty size) = %v, want ErrInvalidConfig", err)
	}
	if _, err := New(DefaultConfig().WithHeadless(1), WithRenderer(otherRenderer{})); !errors.Is(err, ErrUnsupportedRenderer) {
		t.Errorf("New(other renderer) = %v, want ErrUnsupportedRenderer", err)
	}
	if _, err := New(DefaultConfig().WithHeadless(1).WithBackend("vulkan")); !errors.Is(err, render.ErrBackendNotAvailable) {
		t.Errorf("New(unregistered backend) = %v, want ErrBackendNotAvailable", err)
	}
}

func TestNewDefaults(t *testing.T) {
	app, err := New(DefaultConfig().WithHeadless(1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := app.Window().(*platform.Headless); !ok {
		t.Errorf("window = %T, want *platform.Headless", app.Window())
	}
	if app.Renderer().Backend() != render.BackendWebGPU {
		t.Errorf("backend = %q", app.Renderer().Backend())
	}
	if app.Title() != DefaultTitle {
		t.Errorf("Title() = %q", app.Title())
	}

	// An empty backend falls back to the best registered one.
	app, err = New(DefaultConfig().WithHeadless(1).WithBackend(""))
	if err != nil {
		t.Fatalf("New(no backend): %v", err)
	}
	if app.Renderer().Backend() != render.BackendWebGPU {
		t.Errorf("default backend = %q, want %q", app.Renderer().Backend(), render.BackendWebGPU)
	}
}
