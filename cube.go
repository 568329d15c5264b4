package steelcast

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/steelcast/render"
)

// cubeFace is one side of the unit cube. Corners are listed counter-clockwise
// as seen from outside with a left-handed camera, and triangulated as
// (0, 1, 2) and (2, 3, 0).
type cubeFace struct {
	normal  mgl32.Vec3
	corners [4]mgl32.Vec3
}

var (
	c0 = mgl32.Vec3{-0.5, -0.5, -0.5}
	c1 = mgl32.Vec3{0.5, -0.5, -0.5}
	c2 = mgl32.Vec3{0.5, 0.5, -0.5}
	c3 = mgl32.Vec3{-0.5, 0.5, -0.5}
	c4 = mgl32.Vec3{-0.5, -0.5, 0.5}
	c5 = mgl32.Vec3{0.5, -0.5, 0.5}
	c6 = mgl32.Vec3{0.5, 0.5, 0.5}
	c7 = mgl32.Vec3{-0.5, 0.5, 0.5}
)

// Faces in vertex order: front (-Z), back, left, right, top, bottom.
var cubeFaces = [6]cubeFace{
	{mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{c0, c1, c2, c3}},
	{mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{c5, c4, c7, c6}},
	{mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{c4, c0, c3, c7}},
	{mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{c1, c5, c6, c2}},
	{mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{c3, c2, c6, c7}},
	{mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{c4, c5, c1, c0}},
}

var cornerUV = [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// CubeVertices returns the 24 vertices of a unit cube centered at the
// origin, four per face.
func CubeVertices() []render.Vertex {
	vs := make([]render.Vertex, 0, 24)
	for _, f := range cubeFaces {
		for i, p := range f.corners {
			vs = append(vs, render.Vertex{Position: p, Normal: f.normal, UV: cornerUV[i]})
		}
	}
	return vs
}

// CubeIndices returns the 36 indices of the cube, two triangles per face.
func CubeIndices() []uint32 {
	is := make([]uint32, 0, 36)
	for f := range uint32(len(cubeFaces)) {
		b := f * 4
		is = append(is, b, b+1, b+2, b+2, b+3, b)
	}
	return is
}
