package platform

import (
	"sync"

	"github.com/gogpu/gpucontext"
)

// KeyState tracks which keys are held. Key events may arrive on any
// goroutine; the frame loop reads the state with Down.
type KeyState struct {
	mu   sync.RWMutex
	down map[gpucontext.Key]bool
}

// NewKeyState returns a state with no key held.
func NewKeyState() *KeyState {
	return &KeyState{down: make(map[gpucontext.Key]bool)}
}

// KeySource is the keyboard part of gpucontext.EventSource.
type KeySource interface {
	OnKeyPress(func(gpucontext.Key, gpucontext.Modifiers))
	OnKeyRelease(func(gpucontext.Key, gpucontext.Modifiers))
}

// Attach registers press and release handlers on src.
func (k *KeyState) Attach(src KeySource) {
	src.OnKeyPress(func(key gpucontext.Key, _ gpucontext.Modifiers) { k.Press(key) })
	src.OnKeyRelease(func(key gpucontext.Key, _ gpucontext.Modifiers) { k.Release(key) })
}

// Press marks key as held.
func (k *KeyState) Press(key gpucontext.Key) {
	k.mu.Lock()
	k.down[key] = true
	k.mu.Unlock()
}

// Release marks key as released.
func (k *KeyState) Release(key gpucontext.Key) {
	k.mu.Lock()
	delete(k.down, key)
	k.mu.Unlock()
}

// Down reports whether key is held.
func (k *KeyState) Down(key gpucontext.Key) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.down[key]
}

// Reset releases every key.
func (k *KeyState) Reset() {
	k.mu.Lock()
	clear(k.down)
	k.mu.Unlock()
}
