package platform

import (
	"sync"
	"testing"

	"github.com/gogpu/gpucontext"
)

// keyEvents is a KeySource driven by the test.
type keyEvents struct {
	press, release func(gpucontext.Key, gpucontext.Modifiers)
}

func (e *keyEvents) OnKeyPress(fn func(gpucontext.Key, gpucontext.Modifiers))   { e.press = fn }
func (e *keyEvents) OnKeyRelease(fn func(gpucontext.Key, gpucontext.Modifiers)) { e.release = fn }

func TestKeyStateAttach(t *testing.T) {
	k := NewKeyState()
	src := &keyEvents{}
	k.Attach(src)

	src.press(gpucontext.KeyA, 0)
	src.press(gpucontext.KeyQ, gpucontext.Modifiers(0))
	if !k.Down(gpucontext.KeyA) || !k.Down(gpucontext.KeyQ) {
		t.Error("pressed keys not held")
	}
	src.release(gpucontext.KeyA, 0)
	if k.Down(gpucontext.KeyA) {
		t.Error("released key still held")
	}
	if k.Down(gpucontext.KeyEscape) {
		t.Error("Escape held without a press")
	}

	k.Reset()
	if k.Down(gpucontext.KeyQ) {
		t.Error("Reset left a key held")
	}
}

// gpucontext.NullEventSource satisfies KeySource.
var _ KeySource = gpucontext.NullEventSource{}

func TestKeyStateConcurrent(t *testing.T) {
	k := NewKeyState()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(key gpucontext.Key) {
			defer wg.Done()
			for range 100 {
				k.Press(key)
				_ = k.Down(key)
				k.Release(key)
			}
		}(gpucontext.KeyA + gpucontext.Key(i))
	}
	wg.Wait()
	for i := range 8 {
		if key := gpucontext.KeyA + gpucontext.Key(i); k.Down(key) {
			t.Errorf("key %v held after release", key)
		}
	}
}
