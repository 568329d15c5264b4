package steelcast

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/steelcast/event"
	"github.com/gogpu/steelcast/render"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if c.Title != "Steelcast Window" {
		t.Errorf("Title = %q, want Steelcast Window", c.Title)
	}
	if c.Size != (render.Size{Width: 800, Height: 600}) {
		t.Errorf("Size = %v, want 800x600", c.Size)
	}
	if c.Backend != render.BackendWebGPU {
		t.Errorf("Backend = %q, want webgpu", c.Backend)
	}
	if c.MoveSpeed != 2 || c.EventQueueSize != event.DefaultQueueSize {
		t.Errorf("MoveSpeed, EventQueueSize = %v, %d", c.MoveSpeed, c.EventQueueSize)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestConfigWith(t *testing.T) {
	base := DefaultConfig()
	c := base.WithTitle("demo").
		WithSize(320, 200).
		WithHeadless(10).
		WithCaptureFile("out.bmp").
		WithMoveSpeed(5).
		WithEventQueueSize(16).
		WithShaderDir("shaders")

	if c.Title != "demo" || c.Size != (render.Size{Width: 320, Height: 200}) {
		t.Errorf("Title, Size = %q, %v", c.Title, c.Size)
	}
	if !c.Headless || c.Frames != 10 || c.CaptureFile != "out.bmp" {
		t.Errorf("Headless, Frames, CaptureFile = %v, %d, %q", c.Headless, c.Frames, c.CaptureFile)
	}
	if c.MoveSpeed != 5 || c.EventQueueSize != 16 || c.ShaderDir != "shaders" {
		t.Errorf("MoveSpeed, EventQueueSize, ShaderDir = %v, %d, %q", c.MoveSpeed, c.EventQueueSize, c.ShaderDir)
	}
	if base.Title != DefaultTitle {
		t.Error("With methods modified the receiver")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"empty size", DefaultConfig().WithSize(0, 600)},
		{"negative speed", DefaultConfig().WithMoveSpeed(-1)},
		{"no queue", DefaultConfig().WithEventQueueSize(0)},
		{"capture with window", DefaultConfig().WithCaptureFile("x.bmp")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
title = "From File"
headless = true
frames = 3
move_speed = 4.5

[size]
width = 1024
height = 768
`))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Title != "From File" || !cfg.Headless || cfg.Frames != 3 || cfg.MoveSpeed != 4.5 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Size != (render.Size{Width: 1024, Height: 768}) {
		t.Errorf("Size = %v, want 1024x768", cfg.Size)
	}
	// Keys missing from the file keep their defaults.
	if cfg.Backend != render.BackendWebGPU || cfg.EventQueueSize != event.DefaultQueueSize {
		t.Errorf("defaults lost: Backend = %q, EventQueueSize = %d", cfg.Backend, cfg.EventQueueSize)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		invalid bool
	}{
		{"unknown key", `colour = "red"`, true},
		{"bad size", "[size]\nwidth = 0", true},
		{"syntax", `title = `, false},
		{"type", `frames = "many"`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.data))
			if err == nil {
				t.Fatal("ParseConfig() = nil, want an error")
			}
			if got := errors.Is(err, ErrInvalidConfig); got != tt.invalid {
				t.Errorf("errors.Is(%v, ErrInvalidConfig) = %v, want %v", err, got, tt.invalid)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steelcast.toml")
	if err := os.WriteFile(path, []byte(`title = "Loaded"`), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Title != "Loaded" {
		t.Errorf("Title = %q, want Loaded", cfg.Title)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadConfig(missing) = %v, want ErrNotExist", err)
	}
}
