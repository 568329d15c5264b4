package asset

import (
	"fmt"
	"sync"

	"github.com/gogpu/steelcast/event"
)

// Manager is a path-keyed asset cache.
//
// Manager is safe for concurrent use, though assets are loaded on the
// caller's goroutine.
type Manager struct {
	factory ShaderFactory
	events  event.Emitter

	mu     sync.RWMutex
	assets map[string]Asset
	order  []string
}

// NewManager returns an empty manager. events may be nil.
func NewManager(factory ShaderFactory, events event.Emitter) *Manager {
	return &Manager{
		factory: factory,
		events:  events,
		assets:  make(map[string]Asset),
	}
}

// LoadAsset loads the asset of kind at path and caches it.
//
// A path that is already present, or a kind without a loader, yields a nil
// asset, an error and one Error event; the cache is left as it was. A shader
// is cached before it loads, and removed again if loading fails.
func (m *Manager) LoadAsset(kind Kind, path string) (Asset, error) {
	var a Asset
	switch kind {
	case KindShader:
		a = NewShaderAsset(m.factory, path)
	default:
		// Checked before the path so a bad kind never touches the cache.
		if m.IsAssetLoaded(path) {
			return nil, m.fail(fmt.Errorf("%w: %s", ErrAlreadyLoaded, path))
		}
		return nil, m.fail(fmt.Errorf("%w: %s (%s)", ErrUnsupportedKind, kind, path))
	}

	m.mu.Lock()
	if _, ok := m.assets[path]; ok {
		m.mu.Unlock()
		return nil, m.fail(fmt.Errorf("%w: %s", ErrAlreadyLoaded, path))
	}
	m.assets[path] = a
	m.order = append(m.order, path)
	m.mu.Unlock()

	if err := a.Load(); err != nil {
		m.remove(path)
		return nil, m.fail(err)
	}
	slogger().Debug("asset: loaded", "kind", kind, "path", path)
	return a, nil
}

func (m *Manager) remove(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.assets, path)
	for i, p := range m.order {
		if p == path {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// fail logs err and reports it as an Error event located at the caller of
// LoadAsset.
func (m *Manager) fail(err error) error {
	slogger().Error("asset: load failed", "err", err)
	if m.events != nil {
		ev := event.New(event.ErrorArgs{Message: err.Error(), Location: event.Caller(2)})
		if ferr := m.events.Fire(ev); ferr != nil {
			slogger().Warn("asset: error event not queued", "err", ferr)
		}
	}
	return err
}

// GetAsset returns the asset cached at path, or nil.
func (m *Manager) GetAsset(path string) Asset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.assets[path]
}

// IsAssetLoaded reports whether path is cached.
func (m *Manager) IsAssetLoaded(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.assets[path]
	return ok
}

// AssetsOfType returns the cached assets of kind in load order.
func (m *Manager) AssetsOfType(kind Kind) []Asset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Asset
	for _, p := range m.order {
		if a := m.assets[p]; a.Kind() == kind {
			out = append(out, a)
		}
	}
	return out
}

// Len returns the number of cached assets.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.assets)
}
