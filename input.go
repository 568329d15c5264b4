package steelcast

import (
	"time"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/steelcast/camera"
	"github.com/gogpu/steelcast/platform"
)

// Key bindings of the fly camera.
const (
	KeyForward = gpucontext.KeyW
	KeyBack    = gpucontext.KeyS
	KeyLeft    = gpucontext.KeyA
	KeyRight   = gpucontext.KeyD
	KeyUp      = gpucontext.KeyQ
	KeyDown    = gpucontext.KeyE
	KeyQuit    = gpucontext.KeyEscape
)

// applyInput moves cam for every held movement key, speed units per second
// scaled by dt. It reports whether the quit key is held.
func applyInput(cam *camera.Camera, keys *platform.KeyState, dt time.Duration, speed float32) (quit bool) {
	if keys.Down(KeyQuit) {
		return true
	}
	d := speed * float32(dt.Seconds())
	if d == 0 {
		return false
	}

	axis := func(pos, neg gpucontext.Key) float32 {
		var v float32
		if keys.Down(pos) {
			v += d
		}
		if keys.Down(neg) {
			v -= d
		}
		return v
	}
	if v := axis(KeyForward, KeyBack); v != 0 {
		cam.MoveForward(v)
	}
	if v := axis(KeyRight, KeyLeft); v != 0 {
		cam.MoveRight(v)
	}
	if v := axis(KeyUp, KeyDown); v != 0 {
		cam.MoveUp(v)
	}
	return false
}
