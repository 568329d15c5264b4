// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/steelcast/render"
)

// Entry points every shader must provide.
const (
	VertexEntry   = "vs_main"
	FragmentEntry = "fs_main"
)

// Shader is a compiled vertex and fragment stage with its render pipeline.
type Shader struct {
	label    string
	vertex   hal.ShaderModule
	fragment hal.ShaderModule // same as vertex unless split
	split    bool
	pipeline hal.RenderPipeline
	inputs   []gputypes.VertexAttribute

	released bool
}

var _ render.Shader = (*Shader)(nil)

// Backend implements render.Shader.
func (s *Shader) Backend() render.Backend { return render.BackendWebGPU }

// Label implements render.Shader.
func (s *Shader) Label() string { return s.label }

// VertexAttributes returns the vertex inputs reflected from vs_main, in
// location order.
func (s *Shader) VertexAttributes() []gputypes.VertexAttribute {
	return append([]gputypes.VertexAttribute(nil), s.inputs...)
}

func (s *Shader) release(device hal.Device) {
	if s.released {
		return
	}
	s.released = true
	if s.pipeline != nil {
		device.DestroyRenderPipeline(s.pipeline)
	}
	if s.split && s.fragment != nil {
		device.DestroyShaderModule(s.fragment)
	}
	if s.vertex != nil {
		device.DestroyShaderModule(s.vertex)
	}
}

// compiledUnit is one validated WGSL source.
type compiledUnit struct {
	source string
	module *ir.Module
	spirv  []uint32
}

// CreateShader implements render.Renderer. With one path the file holds
// both stages; with two the first is the vertex and the second the
// fragment source.
func (r *Renderer) CreateShader(paths ...string) (render.Shader, error) {
	const op = "CreateShader"
	if err := r.checkState(op, false); err != nil {
		return nil, err
	}
	if len(paths) != 1 && len(paths) != 2 {
		return nil, render.NewError(op, render.CodeShaderSource, render.ErrBadShaderPaths)
	}

	vsPath, fsPath := paths[0], paths[len(paths)-1]
	vsUnit, err := r.loadUnit(op, vsPath)
	if err != nil {
		return nil, err
	}
	fsUnit := vsUnit
	if fsPath != vsPath {
		if fsUnit, err = r.loadUnit(op, fsPath); err != nil {
			return nil, err
		}
	}

	vsEntry, err := findEntry(vsUnit.module, VertexEntry, ir.StageVertex)
	if err != nil {
		return nil, r.compileFailure(op, render.CodeShaderCompile, fmt.Errorf("%s: %w", vsPath, err))
	}
	if _, err := findEntry(fsUnit.module, FragmentEntry, ir.StageFragment); err != nil {
		return nil, r.compileFailure(op, render.CodeShaderCompile, fmt.Errorf("%s: %w", fsPath, err))
	}

	inputs, err := reflectVertexInputs(vsUnit.module, &vsEntry.Function)
	if err != nil {
		return nil, r.compileFailure(op, render.CodeInputLayout, fmt.Errorf("%s: %w", vsPath, err))
	}
	attrs, err := matchVertexLayout(inputs)
	if err != nil {
		return nil, r.compileFailure(op, render.CodeInputLayout, fmt.Errorf("%s: %w", vsPath, err))
	}

	label := strings.Join(paths, "+")
	sh := &Shader{label: label, inputs: attrs}
	if sh.vertex, err = r.createModule(label+"_vs", vsUnit); err != nil {
		return nil, r.compileFailure(op, render.CodePipeline, err)
	}
	sh.fragment = sh.vertex
	if fsUnit != vsUnit {
		sh.split = true
		if sh.fragment, err = r.createModule(label+"_fs", fsUnit); err != nil {
			sh.release(r.device)
			return nil, r.compileFailure(op, render.CodePipeline, err)
		}
	}
	if sh.pipeline, err = r.createPipeline(label, sh.vertex, sh.fragment, attrs); err != nil {
		sh.release(r.device)
		return nil, r.compileFailure(op, render.CodePipeline, err)
	}

	r.track(sh)
	slogger().Debug("webgpu: shader created", "label", label, "inputs", len(attrs))
	return sh, nil
}

func (r *Renderer) compileFailure(op string, code render.Code, err error) error {
	slogger().Error("webgpu: shader creation failed", "code", code, "err", err)
	return render.NewError(op, code, err)
}

// loadUnit reads and compiles one WGSL file. Identical sources compile once.
func (r *Renderer) loadUnit(op, path string) (*compiledUnit, error) {
	src, err := fs.ReadFile(r.opts.sources, path)
	if err != nil {
		return nil, r.compileFailure(op, render.CodeShaderSource, fmt.Errorf("read %s: %w", path, err))
	}
	key := sha256.Sum256(src)
	unit, err := r.shaders.GetOrCompute(key, func() (*compiledUnit, error) {
		return compileWGSL(string(src))
	})
	if err != nil {
		return nil, r.compileFailure(op, render.CodeShaderCompile, fmt.Errorf("%s: %w", path, err))
	}
	return unit, nil
}

// compileWGSL parses, lowers and validates src and generates SPIR-V.
func compileWGSL(src string) (*compiledUnit, error) {
	ast, err := naga.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	module, err := naga.LowerWithSource(ast, src)
	if err != nil {
		return nil, fmt.Errorf("lower: %w", err)
	}
	verrs, err := naga.Validate(module)
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	if len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, ve := range verrs {
			errs[i] = ve
		}
		return nil, fmt.Errorf("validate: %w", errors.Join(errs...))
	}
	code, err := naga.GenerateSPIRV(module, spirv.Options{Version: spirv.Version1_3})
	if err != nil {
		return nil, err
	}
	return &compiledUnit{source: src, module: module, spirv: spirvWords(code)}, nil
}

// spirvWords converts little-endian SPIR-V bytes to words.
func spirvWords(code []byte) []uint32 {
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	return words
}

func findEntry(m *ir.Module, name string, stage ir.ShaderStage) (*ir.EntryPoint, error) {
	for i := range m.EntryPoints {
		ep := &m.EntryPoints[i]
		if ep.Name == name {
			if ep.Stage != stage {
				return nil, fmt.Errorf("entry point %s has the wrong stage", name)
			}
			return ep, nil
		}
	}
	return nil, fmt.Errorf("missing entry point %s", name)
}

// vertexInput is one @location input of the vertex entry point.
type vertexInput struct {
	name     string
	location uint32
	kind     render.AttributeKind
}

// reflectVertexInputs collects the @location inputs of fn, looking through
// struct arguments. Built-in inputs are skipped.
func reflectVertexInputs(m *ir.Module, fn *ir.Function) ([]vertexInput, error) {
	var inputs []vertexInput
	add := func(name string, th ir.TypeHandle, b *ir.Binding) error {
		if b == nil {
			return nil
		}
		loc, ok := (*b).(ir.LocationBinding)
		if !ok {
			return nil
		}
		kind, err := attributeKind(m, th)
		if err != nil {
			return fmt.Errorf("input %s @location(%d): %w", name, loc.Location, err)
		}
		inputs = append(inputs, vertexInput{name: name, location: loc.Location, kind: kind})
		return nil
	}

	for _, arg := range fn.Arguments {
		if arg.Binding != nil {
			if err := add(arg.Name, arg.Type, arg.Binding); err != nil {
				return nil, err
			}
			continue
		}
		if int(arg.Type) >= len(m.Types) {
			return nil, fmt.Errorf("argument %s: bad type handle %d", arg.Name, arg.Type)
		}
		st, ok := m.Types[arg.Type].Inner.(ir.StructType)
		if !ok {
			return nil, fmt.Errorf("argument %s has no binding", arg.Name)
		}
		for _, member := range st.Members {
			if err := add(arg.Name+"."+member.Name, member.Type, member.Binding); err != nil {
				return nil, err
			}
		}
	}
	sort.Slice(inputs, func(i, j int) bool { return inputs[i].location < inputs[j].location })
	return inputs, nil
}

func attributeKind(m *ir.Module, th ir.TypeHandle) (render.AttributeKind, error) {
	if int(th) >= len(m.Types) {
		return 0, fmt.Errorf("bad type handle %d", th)
	}
	vec, ok := m.Types[th].Inner.(ir.VectorType)
	if !ok || vec.Scalar.Kind != ir.ScalarFloat || vec.Scalar.Width != 4 {
		return 0, errors.New("only vec2<f32> and vec3<f32> inputs are supported")
	}
	switch vec.Size {
	case ir.Vec2:
		return render.AttributeFloat2, nil
	case ir.Vec3:
		return render.AttributeFloat3, nil
	default:
		return 0, fmt.Errorf("vec%d<f32> input is not part of the vertex format", vec.Size)
	}
}

// matchVertexLayout checks the reflected inputs against render.Vertex and
// returns the pipeline attributes. A shader may consume a subset of the
// vertex attributes.
func matchVertexLayout(inputs []vertexInput) ([]gputypes.VertexAttribute, error) {
	layout := render.VertexLayout()
	attrs := make([]gputypes.VertexAttribute, 0, len(inputs))
	for _, in := range inputs {
		if int(in.location) >= len(layout) {
			return nil, fmt.Errorf("input %s uses @location(%d), the vertex format has %d attributes",
				in.name, in.location, len(layout))
		}
		want := layout[in.location]
		if want.Kind != in.kind {
			return nil, fmt.Errorf("input %s @location(%d) is %s, the vertex format has %s",
				in.name, in.location, kindName(in.kind), kindName(want.Kind))
		}
		attrs = append(attrs, gputypes.VertexAttribute{
			Format:         vertexFormat(want.Kind),
			Offset:         want.Offset,
			ShaderLocation: want.Location,
		})
	}
	return attrs, nil
}

func vertexFormat(k render.AttributeKind) gputypes.VertexFormat {
	if k == render.AttributeFloat2 {
		return gputypes.VertexFormatFloat32x2
	}
	return gputypes.VertexFormatFloat32x3
}

func kindName(k render.AttributeKind) string {
	if k == render.AttributeFloat2 {
		return "vec2<f32>"
	}
	return "vec3<f32>"
}

// createModule uploads a unit as SPIR-V where the backend consumes it
// directly, and as WGSL otherwise.
func (r *Renderer) createModule(label string, unit *compiledUnit) (hal.ShaderModule, error) {
	src := hal.ShaderSource{WGSL: unit.source}
	if r.backend != nil {
		switch r.backend.Variant() {
		case gputypes.BackendVulkan, gputypes.BackendEmpty:
			src = hal.ShaderSource{SPIRV: unit.spirv}
		}
	}
	module, err := r.device.CreateShaderModule(&hal.ShaderModuleDescriptor{Label: label, Source: src})
	if err != nil {
		return nil, fmt.Errorf("create shader module %s: %w", label, err)
	}
	return module, nil
}

func (r *Renderer) createPipeline(label string, vs, fs hal.ShaderModule, attrs []gputypes.VertexAttribute) (hal.RenderPipeline, error) {
	stencil := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
	}
	replace := gputypes.BlendStateReplace()
	pipeline, err := r.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label + "_pipeline",
		Layout: r.pipeLayout,
		Vertex: hal.VertexState{
			Module:     vs,
			EntryPoint: VertexEntry,
			Buffers: []gputypes.VertexBufferLayout{{
				ArrayStride: render.VertexSize,
				StepMode:    gputypes.VertexStepModeVertex,
				Attributes:  attrs,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  gputypes.CullModeBack,
		},
		DepthStencil: &hal.DepthStencilState{
			Format:            DepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      gputypes.CompareFunctionLessEqual,
			StencilFront:      stencil,
			StencilBack:       stencil,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
		Fragment: &hal.FragmentState{
			Module:     fs,
			EntryPoint: FragmentEntry,
			Targets: []gputypes.ColorTargetState{{
				Format:    r.target.format(),
				Blend:     &replace,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create render pipeline %s: %w", label, err)
	}
	return pipeline, nil
}
