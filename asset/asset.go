// Package asset caches engine assets by path.
//
// A Manager holds at most one asset per path. Loading a path twice, or
// loading a kind the engine cannot load yet, is reported as an Error event
// and returns a nil asset:
//
//	m := asset.NewManager(renderer, events)
//	a, err := m.LoadAsset(asset.KindShader, "basic.wgsl")
//	if err != nil {
//	    return err
//	}
//	mat, err := a.(*asset.ShaderAsset).PackMaterial(constants)
package asset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/steelcast/render"
)

// Errors returned by the manager and by assets.
var (
	// ErrAlreadyLoaded is returned when a path is loaded twice.
	ErrAlreadyLoaded = errors.New("asset: already loaded")

	// ErrUnsupportedKind is returned for kinds without a loader.
	ErrUnsupportedKind = errors.New("asset: unsupported kind")

	// ErrNotLoaded is returned by operations that need a loaded asset.
	ErrNotLoaded = errors.New("asset: not loaded")
)

// Kind identifies an asset variant.
type Kind uint8

const (
	// KindModel is mesh data read from a file. It has no loader yet.
	KindModel Kind = iota + 1

	// KindShader is a WGSL shader program.
	KindShader
)

func (k Kind) String() string {
	switch k {
	case KindModel:
		return "model"
	case KindShader:
		return "shader"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Asset is a loadable resource identified by its path.
type Asset interface {
	Kind() Kind
	Path() string
	Load() error
}

// ShaderFactory is the part of a renderer that shader assets use.
// render.Renderer implements it.
type ShaderFactory interface {
	CreateShader(paths ...string) (render.Shader, error)
	NewMaterialSpec(shader render.Shader, constants render.Buffer) render.MaterialSpec
	CreateMaterial(spec render.MaterialSpec) (render.Material, error)
}

// StagePathSeparator joins a vertex and a fragment path in one asset path.
const StagePathSeparator = "+"

// StagePath returns the asset path of a shader split across two files.
func StagePath(vertex, fragment string) string {
	return vertex + StagePathSeparator + fragment
}

// ShaderAsset is a compiled shader. Its path is either one WGSL file holding
// both stages or a StagePath.
type ShaderAsset struct {
	path    string
	factory ShaderFactory
	shader  render.Shader
}

// NewShaderAsset returns an unloaded shader asset.
func NewShaderAsset(factory ShaderFactory, path string) *ShaderAsset {
	return &ShaderAsset{path: path, factory: factory}
}

// Kind implements Asset.
func (a *ShaderAsset) Kind() Kind { return KindShader }

// Path implements Asset.
func (a *ShaderAsset) Path() string { return a.path }

// Load compiles the shader through the factory.
func (a *ShaderAsset) Load() error {
	if a.factory == nil {
		return fmt.Errorf("asset: shader %s: no renderer", a.path)
	}
	shader, err := a.factory.CreateShader(strings.Split(a.path, StagePathSeparator)...)
	if err != nil {
		return fmt.Errorf("asset: load shader %s: %w", a.path, err)
	}
	a.shader = shader
	return nil
}

// Shader returns the compiled shader, or nil before Load.
func (a *ShaderAsset) Shader() render.Shader { return a.shader }

// PackMaterial builds a material from the shader and an optional constant
// buffer.
func (a *ShaderAsset) PackMaterial(constants render.Buffer) (render.Material, error) {
	if a.shader == nil {
		return nil, fmt.Errorf("%w: shader %s", ErrNotLoaded, a.path)
	}
	mat, err := a.factory.CreateMaterial(a.factory.NewMaterialSpec(a.shader, constants))
	if err != nil {
		return nil, fmt.Errorf("asset: pack material for %s: %w", a.path, err)
	}
	return mat, nil
}
