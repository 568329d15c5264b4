// Package camera computes left-handed view and projection transforms for
// a perspective camera.
//
// Matrices are mgl32 column-major values used with column vectors, so the
// composed transform of a world matrix W is P * V * W. Projections map view
// depth to the 0..1 clip range.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Default camera parameters.
const (
	DefaultFOV  = 45 // degrees
	DefaultNear = 0.1
	DefaultFar  = 100
)

// Camera is a perspective camera looking from Position at Target.
type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3

	// FOV is the vertical field of view in degrees.
	FOV       float32
	Near, Far float32
}

// New returns a camera at (0, 1, -3) looking at (0, 0, -1).
func New() *Camera {
	return &Camera{
		Position: mgl32.Vec3{0, 1, -3},
		Target:   mgl32.Vec3{0, 0, -1},
		Up:       mgl32.Vec3{0, 1, 0},
		FOV:      DefaultFOV,
		Near:     DefaultNear,
		Far:      DefaultFar,
	}
}

// View returns the world-to-view transform.
func (c *Camera) View() mgl32.Mat4 {
	return LookAtLH(c.Position, c.Target, c.Up)
}

// Projection returns the view-to-clip transform for the given aspect ratio
// (width / height).
func (c *Camera) Projection(aspect float32) mgl32.Mat4 {
	return PerspectiveFovLH(mgl32.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

// MVP returns Projection * View * world.
func (c *Camera) MVP(world mgl32.Mat4, aspect float32) mgl32.Mat4 {
	return c.Projection(aspect).Mul4(c.View()).Mul4(world)
}

// Forward returns the unit direction from Position to Target. A camera whose
// target equals its position looks along +Z.
func (c *Camera) Forward() mgl32.Vec3 {
	d := c.Target.Sub(c.Position)
	if d.Len() == 0 {
		return mgl32.Vec3{0, 0, 1}
	}
	return d.Normalize()
}

// Right returns the unit vector to the right of Forward.
func (c *Camera) Right() mgl32.Vec3 {
	r := c.Up.Cross(c.Forward())
	if r.Len() == 0 {
		return mgl32.Vec3{1, 0, 0}
	}
	return r.Normalize()
}

// Translate moves the camera by delta and re-aims the target one unit
// ahead along the forward direction it had before the move.
func (c *Camera) Translate(delta mgl32.Vec3) {
	fwd := c.Forward()
	c.Position = c.Position.Add(delta)
	c.Target = c.Position.Add(fwd)
}

// MoveForward translates along Forward. Negative distances move back.
func (c *Camera) MoveForward(dist float32) { c.Translate(c.Forward().Mul(dist)) }

// MoveRight translates along Right. Negative distances move left.
func (c *Camera) MoveRight(dist float32) { c.Translate(c.Right().Mul(dist)) }

// MoveUp translates along world +Y. Negative distances move down.
func (c *Camera) MoveUp(dist float32) { c.Translate(mgl32.Vec3{0, dist, 0}) }

// LookAtLH returns a left-handed view matrix for an eye at eye looking at
// target.
func LookAtLH(eye, target, up mgl32.Vec3) mgl32.Mat4 {
	z := target.Sub(eye).Normalize()
	x := up.Cross(z).Normalize()
	y := z.Cross(x)

	return mgl32.Mat4{
		x[0], y[0], z[0], 0,
		x[1], y[1], z[1], 0,
		x[2], y[2], z[2], 0,
		-x.Dot(eye), -y.Dot(eye), -z.Dot(eye), 1,
	}
}

// PerspectiveFovLH returns a left-handed perspective projection. fovy is in
// radians. Depth maps near to 0 and far to 1.
func PerspectiveFovLH(fovy, aspect, near, far float32) mgl32.Mat4 {
	ys := 1 / float32(math.Tan(float64(fovy)/2))
	xs := ys / aspect
	q := far / (far - near)

	return mgl32.Mat4{
		xs, 0, 0, 0,
		0, ys, 0, 0,
		0, 0, q, 1,
		0, 0, -near * q, 0,
	}
}
