package steelcast

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/steelcast/event"
	"github.com/gogpu/steelcast/render"
)

// Default configuration values.
const (
	DefaultTitle     = "Steelcast Window"
	DefaultWidth     = 800
	DefaultHeight    = 600
	DefaultMoveSpeed = 2 // units per second
)

// ErrInvalidConfig is returned for configurations that cannot run.
var ErrInvalidConfig = errors.New("steelcast: invalid config")

// Config describes an application. Build one with DefaultConfig and the
// With methods, or load overrides from a TOML file with LoadConfig:
//
//	title = "Demo"
//	headless = true
//	frames = 120
//	capture_file = "last.bmp"
//
//	[size]
//	width = 1024
//	height = 768
type Config struct {
	Title string      `toml:"title"`
	Size  render.Size `toml:"size"`
	// Backend names the renderer. Empty selects render.DefaultBackend.
	Backend render.Backend `toml:"backend"`

	// Headless draws offscreen without opening a window.
	Headless bool `toml:"headless"`
	// Frames stops a headless run after that many frames. Zero runs until
	// the application is stopped.
	Frames uint64 `toml:"frames"`
	// CaptureFile, when set, receives the last headless frame as BMP.
	CaptureFile string `toml:"capture_file"`

	// MoveSpeed is the camera speed in units per second.
	MoveSpeed float32 `toml:"move_speed"`
	// EventQueueSize is the capacity of the event queue.
	EventQueueSize int `toml:"event_queue_size"`
	// ShaderDir replaces the embedded shaders with a directory on disk.
	ShaderDir string `toml:"shader_dir"`
}

// DefaultConfig returns the configuration of the demo application.
func DefaultConfig() Config {
	return Config{
		Title:          DefaultTitle,
		Size:           render.Size{Width: DefaultWidth, Height: DefaultHeight},
		Backend:        render.BackendWebGPU,
		MoveSpeed:      DefaultMoveSpeed,
		EventQueueSize: event.DefaultQueueSize,
	}
}

// WithTitle returns a copy with the window title set.
func (c Config) WithTitle(title string) Config {
	c.Title = title
	return c
}

// WithSize returns a copy with the window size set.
func (c Config) WithSize(width, height int) Config {
	c.Size = render.Size{Width: width, Height: height}
	return c
}

// WithBackend returns a copy with the renderer backend set.
func (c Config) WithBackend(b render.Backend) Config {
	c.Backend = b
	return c
}

// WithHeadless returns a copy that runs without a window for at most
// frames frames.
func (c Config) WithHeadless(frames uint64) Config {
	c.Headless = true
	c.Frames = frames
	return c
}

// WithCaptureFile returns a copy that writes the last headless frame to path.
func (c Config) WithCaptureFile(path string) Config {
	c.CaptureFile = path
	return c
}

// WithMoveSpeed returns a copy with the camera speed set.
func (c Config) WithMoveSpeed(speed float32) Config {
	c.MoveSpeed = speed
	return c
}

// WithEventQueueSize returns a copy with the event queue capacity set.
func (c Config) WithEventQueueSize(n int) Config {
	c.EventQueueSize = n
	return c
}

// WithShaderDir returns a copy that loads shaders from dir.
func (c Config) WithShaderDir(dir string) Config {
	c.ShaderDir = dir
	return c
}

// Validate reports the first setting that prevents the application from
// running.
func (c Config) Validate() error {
	switch {
	case c.Size.Empty():
		return fmt.Errorf("%w: size %s", ErrInvalidConfig, c.Size)
	case c.MoveSpeed < 0:
		return fmt.Errorf("%w: negative move speed %v", ErrInvalidConfig, c.MoveSpeed)
	case c.EventQueueSize < 1:
		return fmt.Errorf("%w: event queue size %d", ErrInvalidConfig, c.EventQueueSize)
	case c.CaptureFile != "" && !c.Headless:
		return fmt.Errorf("%w: capture_file requires headless", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads a TOML file and applies it over DefaultConfig. Keys
// that do not name a Config field are rejected.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("steelcast: read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig is LoadConfig for TOML already in memory.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, strict.String())
		}
		return Config{}, fmt.Errorf("steelcast: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
