package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera holds the projection settings; its pose comes from OrbitControls.
type Camera struct {
	FovY float32 // degrees
	Near float32
	Far  float32
}

func NewCamera() Camera {
	return Camera{FovY: 75, Near: 0.1, Far: 100}
}

// clipZ remaps OpenGL clip depth [-w,w] to the WebGPU range [0,w].
var clipZ = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Projection returns a perspective matrix with WebGPU depth conventions.
func (c Camera) Projection(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return clipZ.Mul4(mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far))
}

const (
	minPolar = 1e-4
	maxPolar = math.Pi - 1e-4
)

// OrbitControls orbits the camera around Target on a sphere. Input adds to a
// pending delta which Update applies with exponential damping, giving the
// drag-and-coast feel of a damped orbit camera.
type OrbitControls struct {
	Target mgl32.Vec3

	// Spherical pose: Theta around +Y starting at +Z, Phi down from +Y.
	Radius float32
	Theta  float32
	Phi    float32

	EnableDamping bool
	DampingFactor float32
	RotateSpeed   float32
	ZoomSpeed     float32
	MinDistance   float32
	MaxDistance   float32

	thetaDelta float32
	phiDelta   float32
	scale      float32
}

func NewOrbitControls(position, target mgl32.Vec3) *OrbitControls {
	c := &OrbitControls{
		Target:        target,
		EnableDamping: true,
		DampingFactor: 0.05,
		RotateSpeed:   1,
		ZoomSpeed:     1,
		MinDistance:   0.1,
		MaxDistance:   80,
		scale:         1,
	}
	c.SetPosition(position)
	return c
}

func (c *OrbitControls) SetPosition(position mgl32.Vec3) {
	offset := position.Sub(c.Target)
	c.Radius = offset.Len()
	if c.Radius == 0 {
		c.Theta, c.Phi = 0, math.Pi/2
		return
	}
	c.Theta = float32(math.Atan2(float64(offset.X()), float64(offset.Z())))
	cosPhi := mgl32.Clamp(offset.Y()/c.Radius, -1, 1)
	c.Phi = float32(math.Acos(float64(cosPhi)))
}

// Rotate queues a drag of dx,dy pixels; a full viewport height is one turn.
func (c *OrbitControls) Rotate(dx, dy, viewportHeight float32) {
	if viewportHeight <= 0 {
		return
	}
	c.thetaDelta -= 2 * math.Pi * dx / viewportHeight * c.RotateSpeed
	c.phiDelta -= 2 * math.Pi * dy / viewportHeight * c.RotateSpeed
}

// Dolly queues a zoom step; positive scroll moves the camera closer.
func (c *OrbitControls) Dolly(scroll float32) {
	if scroll == 0 {
		return
	}
	step := float32(math.Pow(0.95, float64(c.ZoomSpeed)))
	if scroll > 0 {
		c.scale *= step
	} else {
		c.scale /= step
	}
}

// Update applies pending input and reports whether the pose changed.
func (c *OrbitControls) Update() bool {
	prevTheta, prevPhi, prevRadius := c.Theta, c.Phi, c.Radius

	if c.EnableDamping {
		c.Theta += c.thetaDelta * c.DampingFactor
		c.Phi += c.phiDelta * c.DampingFactor
	} else {
		c.Theta += c.thetaDelta
		c.Phi += c.phiDelta
	}
	c.Phi = mgl32.Clamp(c.Phi, minPolar, maxPolar)
	c.Radius = mgl32.Clamp(c.Radius*c.scale, c.MinDistance, c.MaxDistance)
	c.scale = 1

	if c.EnableDamping {
		c.thetaDelta *= 1 - c.DampingFactor
		c.phiDelta *= 1 - c.DampingFactor
	} else {
		c.thetaDelta, c.phiDelta = 0, 0
	}

	return c.Theta != prevTheta || c.Phi != prevPhi || c.Radius != prevRadius
}

func (c *OrbitControls) Position() mgl32.Vec3 {
	sinPhi := float32(math.Sin(float64(c.Phi)))
	cosPhi := float32(math.Cos(float64(c.Phi)))
	sinTheta := float32(math.Sin(float64(c.Theta)))
	cosTheta := float32(math.Cos(float64(c.Theta)))
	return c.Target.Add(mgl32.Vec3{
		c.Radius * sinPhi * sinTheta,
		c.Radius * cosPhi,
		c.Radius * sinPhi * cosTheta,
	})
}

func (c *OrbitControls) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target, mgl32.Vec3{0, 1, 0})
}
