// Package steelcast is a small real-time 3D engine built on the gogpu
// stack.
//
// An Application opens a window, initializes a WebGPU renderer on the
// wgpu HAL, compiles the embedded WGSL shaders through the asset manager
// and draws a lit cube under a fly camera every frame:
//
//	app, err := steelcast.New(steelcast.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// W and S move the camera forward and back, A and D strafe, Q and E move
// up and down, and Escape quits.
//
// # Packages
//
//   - event: typed events and the background dispatcher
//   - asset: the path-keyed asset cache
//   - render: the backend-neutral renderer contract
//   - render/webgpu: the renderer on gogpu/wgpu
//   - camera: left-handed view and projection transforms
//   - platform: gogpu and headless windows
//
// # Headless runs
//
// DefaultConfig().WithHeadless(n) renders n frames offscreen without a
// display, and WithCaptureFile writes the last frame as a BMP. Headless
// runs need a HAL backend; the cmd/steelcast binary registers all of them.
//
// # Logging
//
// steelcast is silent by default. SetLogger installs an slog logger in
// every package.
package steelcast
