// Command steelcast opens a window and renders a lit cube under a fly
// camera.
//
// Usage:
//
//	steelcast [-config file.toml] [-v] [-headless frames] [-capture out.bmp]
//
// W/S move forward and back, A/D strafe, Q/E move up and down, Escape
// quits.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	_ "github.com/gogpu/wgpu/hal/allbackends" // Register Vulkan, Metal, DX12, GLES and software HAL backends

	"github.com/gogpu/steelcast"
	"github.com/gogpu/steelcast/render"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "steelcast: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "TOML file overriding the default configuration")
		verbose    = flag.Bool("v", false, "enable debug logging")
		headless   = flag.Uint64("headless", 0, "render this many frames offscreen and exit")
		capture    = flag.String("capture", "", "write the last headless frame to this BMP file")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	steelcast.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := steelcast.DefaultConfig()
	if *configPath != "" {
		loaded, err := steelcast.LoadConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *headless > 0 {
		cfg = cfg.WithHeadless(*headless)
	}
	if *capture != "" {
		cfg = cfg.WithCaptureFile(*capture)
	}
	if cfg.Backend == "" {
		cfg = cfg.WithBackend(render.DefaultBackend())
	}
	if !render.IsRegistered(cfg.Backend) {
		return fmt.Errorf("backend %q not available (have %s)",
			cfg.Backend, strings.Join(backendNames(), ", "))
	}

	app, err := steelcast.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return app.Run(ctx)
}

func backendNames() []string {
	var names []string
	for _, b := range render.Available() {
		names = append(names, string(b))
	}
	return names
}
