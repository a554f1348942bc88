package gpu

import (
	"unsafe"

	"github.com/gekko3d/galaxy"
	"github.com/go-gl/mathgl/mgl32"
)

// PointUniforms matches the WGSL Uniforms struct (160 bytes with tail padding).
type PointUniforms struct {
	View       mgl32.Mat4
	Proj       mgl32.Mat4
	Viewport   [2]float32 // surface pixels
	Time       float32
	Size       float32 // Size * pixel ratio
	SpinRate   float32
	EncodeSrgb float32 // 1 when the surface is not sRGB
	_          [2]float32
}

const PointUniformsSize = uint64(unsafe.Sizeof(PointUniforms{}))

func (u *PointUniforms) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(u)), PointUniformsSize)
}

// Material is the handle the render loop uses to drive the galaxy shader.
// Setters only touch the CPU copy; PointsPass uploads it once per frame when
// something changed.
type Material struct {
	uniforms PointUniforms
	dirty    bool
}

func NewMaterial() *Material {
	return &Material{
		uniforms: PointUniforms{
			View:     mgl32.Ident4(),
			Proj:     mgl32.Ident4(),
			Viewport: [2]float32{1, 1},
			SpinRate: galaxy.SpinRate(1),
		},
		dirty: true,
	}
}

func (m *Material) SetTime(t float32) {
	m.uniforms.Time = t
	m.dirty = true
}

// SetSize takes the base point size in logical pixels.
func (m *Material) SetSize(size, pixelRatio float32) {
	m.uniforms.Size = size * pixelRatio
	m.dirty = true
}

func (m *Material) SetSpin(spin float32) {
	m.uniforms.SpinRate = galaxy.SpinRate(spin)
	m.dirty = true
}

func (m *Material) SetViewport(width, height uint32) {
	m.uniforms.Viewport = [2]float32{float32(max(width, 1)), float32(max(height, 1))}
	m.dirty = true
}

func (m *Material) SetEncodeSrgb(encode bool) {
	m.uniforms.EncodeSrgb = 0
	if encode {
		m.uniforms.EncodeSrgb = 1
	}
	m.dirty = true
}

func (m *Material) SetMatrices(view, proj mgl32.Mat4) {
	m.uniforms.View = view
	m.uniforms.Proj = proj
	m.dirty = true
}

// ApplyParams pushes the parameters that live in uniforms rather than in the
// generated buffers.
func (m *Material) ApplyParams(params galaxy.GenerationParameters, pixelRatio float32) {
	m.SetSize(params.Size, pixelRatio)
	m.SetSpin(params.Spin)
}

func (m *Material) Uniforms() PointUniforms {
	return m.uniforms
}

func (m *Material) Dirty() bool {
	return m.dirty
}

// take returns the uniforms to upload and clears the dirty flag.
func (m *Material) take() (*PointUniforms, bool) {
	if !m.dirty {
		return nil, false
	}
	m.dirty = false
	u := m.uniforms
	return &u, true
}
