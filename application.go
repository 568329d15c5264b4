package steelcast

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/text/language"

	"github.com/gogpu/steelcast/asset"
	"github.com/gogpu/steelcast/camera"
	"github.com/gogpu/steelcast/event"
	"github.com/gogpu/steelcast/platform"
	"github.com/gogpu/steelcast/render"
	"github.com/gogpu/steelcast/render/webgpu"
	"github.com/gogpu/steelcast/resources"
)

// ErrUnsupportedRenderer is returned by New for renderers other than the
// webgpu backend.
var ErrUnsupportedRenderer = errors.New("steelcast: unsupported renderer")

// MatrixBuffer is the per-object uniform block bound at group 0, binding 0.
// It occupies 196 bytes, padded to 208 on the GPU.
type MatrixBuffer struct {
	World mgl32.Mat4
	View  mgl32.Mat4
	MVP   mgl32.Mat4
	Pad   float32
}

// World places the cube in the scene.
var World = mgl32.Translate3D(1, 0, 1)

// Option configures an Application.
type Option func(*Application)

// WithWindow replaces the window built from the Config.
func WithWindow(w platform.Window) Option {
	return func(a *Application) { a.window = w }
}

// WithRenderer replaces the renderer built from the Config. The renderer
// must not be initialized yet.
func WithRenderer(r render.Renderer) Option {
	return func(a *Application) { a.renderer = r }
}

// WithEventSystem replaces the event system built from the Config. The
// system must not be launched yet.
func WithEventSystem(s *event.System) Option {
	return func(a *Application) { a.events = s }
}

// WithLanguage sets the locale of the title statistics.
func WithLanguage(tag language.Tag) Option {
	return func(a *Application) { a.lang = tag }
}

// Application composes a window, a renderer, an event system and an asset
// manager, and runs the render loop of a single lit cube under a fly
// camera. Several applications may exist at once.
type Application struct {
	cfg      Config
	lang     language.Tag
	window   platform.Window
	renderer render.Renderer
	gpu      *webgpu.Renderer
	events   *event.System
	assets   *asset.Manager
	camera   *camera.Camera

	// Built on the first frame.
	ready    bool
	mesh     render.Mesh
	matrices *webgpu.ConstantBuffer[MatrixBuffer]
	stats    *titleStats

	// Set by release on the window's loop thread.
	released   bool
	captureErr error

	frame   atomic.Uint64
	stopped atomic.Bool
}

// New builds an application from cfg. Options inject replacements for the
// parts New would otherwise build.
func New(cfg Config, opts ...Option) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &Application{cfg: cfg, lang: language.English, camera: camera.New()}
	for _, opt := range opts {
		opt(a)
	}

	if a.events == nil {
		a.events = event.NewSystem(event.WithQueueSize(cfg.EventQueueSize))
	}
	a.events.Register(event.KindError, logErrorEvent)

	if a.renderer == nil {
		r, err := newRenderer(cfg, a.events)
		if err != nil {
			return nil, err
		}
		a.renderer = r
	}
	gpu, ok := a.renderer.(*webgpu.Renderer)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRenderer, a.renderer.Backend())
	}
	a.gpu = gpu

	if a.window == nil {
		a.window = newWindow(cfg)
	}
	a.assets = asset.NewManager(a.renderer, a.events)
	a.stats = newTitleStats(a.lang)
	return a, nil
}

func newRenderer(cfg Config, events event.Emitter) (render.Renderer, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = render.DefaultBackend()
	}
	if backend != render.BackendWebGPU {
		return render.New(backend)
	}
	opts := []webgpu.Option{webgpu.WithEvents(events)}
	if cfg.ShaderDir != "" {
		opts = append(opts, webgpu.WithSources(os.DirFS(cfg.ShaderDir)))
	}
	return webgpu.New(opts...), nil
}

func newWindow(cfg Config) platform.Window {
	if cfg.Headless {
		return platform.NewHeadless(cfg.Title, cfg.Size, platform.WithFrameLimit(cfg.Frames))
	}
	return platform.NewGogpu(cfg.Title, cfg.Size)
}

// logErrorEvent is the default Error callback.
func logErrorEvent(e *event.Event) {
	if args, ok := e.Args.(event.ErrorArgs); ok {
		Logger().Error("steelcast: error event", "message", args.Message, "location", args.Location.String())
	}
}

// Config returns the configuration the application was built with.
func (a *Application) Config() Config { return a.cfg }

// Window returns the application window.
func (a *Application) Window() platform.Window { return a.window }

// Renderer returns the renderer.
func (a *Application) Renderer() render.Renderer { return a.renderer }

// Events returns the event system. Callbacks registered before Run see the
// AppStart event.
func (a *Application) Events() *event.System { return a.events }

// Assets returns the asset manager.
func (a *Application) Assets() *asset.Manager { return a.assets }

// Camera returns the camera.
func (a *Application) Camera() *camera.Camera { return a.camera }

// Title returns the current window title.
func (a *Application) Title() string { return a.window.Title() }

// Frame returns the number of frames rendered.
func (a *Application) Frame() uint64 { return a.frame.Load() }

// Stop ends the render loop before the next frame.
func (a *Application) Stop() { a.stopped.Store(true) }

// Run launches the event dispatcher, runs the render loop until the window
// closes, Stop is called, ctx is done or the quit key is pressed, and then
// releases everything the application owns. An application runs once.
func (a *Application) Run(ctx context.Context) error {
	if err := a.events.Launch(); err != nil {
		return fmt.Errorf("steelcast: launch events: %w", err)
	}
	Logger().Info("steelcast: application started",
		"title", a.cfg.Title, "size", a.cfg.Size, "backend", a.renderer.Backend())

	a.fire(event.KindAppStart)
	a.window.OnTeardown(a.release)
	err := a.window.Run(ctx, a.tick)
	if err == nil {
		err = a.captureErr
	}
	a.fire(event.KindAppStop)

	a.shutdown()
	if err != nil {
		Logger().Error("steelcast: application failed", "err", err)
		return err
	}
	Logger().Info("steelcast: application stopped", "frames", a.Frame())
	return nil
}

func (a *Application) fire(kind event.Kind) {
	if err := a.events.Fire(event.New(event.AppArgs{Kind: kind, App: a})); err != nil {
		Logger().Warn("steelcast: lifecycle event not queued", "kind", kind.String(), "err", err)
	}
}

// release captures the last frame if asked to and closes the renderer. The
// window calls it after the last frame, on the loop's thread, while the
// device is still alive.
func (a *Application) release(loopErr error) {
	if loopErr == nil && a.cfg.CaptureFile != "" && a.ready {
		a.captureErr = a.capture(a.cfg.CaptureFile)
	}
	if err := a.renderer.Close(); err != nil {
		Logger().Warn("steelcast: renderer close", "err", err)
	}
	a.released = true
}

// shutdown delivers the queued events, then releases the window. The
// renderer was closed by release.
func (a *Application) shutdown() {
	a.events.Halt()
	if !a.released && a.renderer.State() != render.StateUninitialized {
		Logger().Warn("steelcast: window ended without teardown, renderer left open",
			"state", a.renderer.State().String())
	}
	if err := a.window.Close(); err != nil {
		Logger().Warn("steelcast: window close", "err", err)
	}
}

// setup initializes the renderer and builds the scene. It runs inside the
// first frame, once a gogpu window has its device.
func (a *Application) setup() error {
	if err := a.renderer.Initialize(a.window); err != nil {
		return err
	}

	loaded, err := a.assets.LoadAsset(asset.KindShader, resources.Basic)
	if err != nil {
		return err
	}
	shader, ok := loaded.(*asset.ShaderAsset)
	if !ok {
		return fmt.Errorf("steelcast: %s is %T, not a shader", resources.Basic, loaded)
	}

	a.matrices, err = webgpu.CreateConstantBuffer(a.gpu, a.matrixValues(a.window.Size()))
	if err != nil {
		return err
	}
	mat, err := shader.PackMaterial(a.matrices)
	if err != nil {
		return err
	}
	a.mesh, err = a.renderer.CreateMesh(CubeVertices(), CubeIndices(), mat)
	if err != nil {
		return err
	}
	a.ready = true
	return nil
}

func (a *Application) matrixValues(size render.Size) MatrixBuffer {
	return MatrixBuffer{
		World: World,
		View:  a.camera.View(),
		MVP:   a.camera.MVP(World, size.Aspect()),
	}
}

// tick renders one frame.
func (a *Application) tick(dt time.Duration) error {
	if a.stopped.Load() {
		return platform.ErrQuit
	}
	if !a.ready {
		if err := a.setup(); err != nil {
			return err
		}
	}
	if applyInput(a.camera, a.window.Keys(), dt, a.cfg.MoveSpeed) {
		return platform.ErrQuit
	}

	size := a.window.Size()
	if err := webgpu.UpdateConstantBuffer(a.matrices, a.matrixValues(size)); err != nil {
		return err
	}
	if err := a.renderer.BeginFrame(size); err != nil {
		return err
	}
	if err := a.renderer.DrawMesh(a.mesh); err != nil {
		return errors.Join(err, a.renderer.EndFrame())
	}
	if err := a.renderer.EndFrame(); err != nil {
		return err
	}

	n := a.frame.Add(1)
	a.fire(event.KindRenderLoop)
	if title, ok := a.stats.add(a.cfg.Title, dt, n, a.gpu.Stats().Draws); ok {
		a.window.SetTitle(title)
	}
	return nil
}

func (a *Application) capture(path string) error {
	img, err := a.gpu.Capture()
	if err != nil {
		return err
	}
	if err := writeBMP(path, img); err != nil {
		return err
	}
	Logger().Info("steelcast: frame captured", "path", path, "size", img.Bounds().Size())
	return nil
}
