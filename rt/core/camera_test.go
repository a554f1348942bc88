package core

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func near(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

func TestOrbitControlsInitialPose(t *testing.T) {
	c := NewOrbitControls(mgl32.Vec3{3, 3, 3}, mgl32.Vec3{})

	if !c.Position().ApproxEqualThreshold(mgl32.Vec3{3, 3, 3}, 1e-5) {
		t.Fatalf("position round trip: got %v", c.Position())
	}
	if !near(c.Radius, float32(math.Sqrt(27)), 1e-5) {
		t.Errorf("radius = %f", c.Radius)
	}
	if c.Update() {
		t.Errorf("idle update should not move the camera")
	}
}

func TestOrbitControlsDampingDecays(t *testing.T) {
	c := NewOrbitControls(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{})
	c.Rotate(-100, 0, 1000) // +theta
	want := float32(2 * math.Pi * 100 / 1000)

	start := c.Theta
	var prevStep float32 = math.MaxFloat32
	for i := 0; i < 10; i++ {
		before := c.Theta
		if !c.Update() {
			t.Fatalf("step %d: expected motion", i)
		}
		step := c.Theta - before
		if step <= 0 || step >= prevStep {
			t.Fatalf("step %d: %f should be positive and shrinking (prev %f)", i, step, prevStep)
		}
		prevStep = step
	}
	first := want * c.DampingFactor
	if got := c.Theta - start; got <= first || got >= want {
		t.Errorf("after 10 steps moved %f, want between %f and %f", got, first, want)
	}

	for i := 0; i < 2000; i++ {
		c.Update()
	}
	if !near(c.Theta-start, want, 1e-3) {
		t.Errorf("coasting total = %f, want %f", c.Theta-start, want)
	}
}

func TestOrbitControlsWithoutDamping(t *testing.T) {
	c := NewOrbitControls(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{})
	c.EnableDamping = false
	c.Rotate(-250, 0, 1000)
	c.Update()
	if !near(c.Theta, math.Pi/2, 1e-5) {
		t.Errorf("theta = %f, want pi/2", c.Theta)
	}
	if c.Update() {
		t.Errorf("delta should be consumed in one update")
	}
}

func TestOrbitControlsPolarClamp(t *testing.T) {
	c := NewOrbitControls(mgl32.Vec3{3, 3, 3}, mgl32.Vec3{})
	c.EnableDamping = false

	c.Rotate(0, 100000, 100)
	c.Update()
	if c.Phi < minPolar || c.Phi > maxPolar {
		t.Fatalf("phi %f escaped [%f, %f]", c.Phi, minPolar, maxPolar)
	}
	c.Rotate(0, -100000, 100)
	c.Update()
	if c.Phi < minPolar || c.Phi > maxPolar {
		t.Fatalf("phi %f escaped [%f, %f]", c.Phi, minPolar, maxPolar)
	}

	view := c.ViewMatrix()
	for i := range view {
		if math.IsNaN(float64(view[i])) {
			t.Fatalf("view matrix has NaN at the pole: %v", view)
		}
	}
}

func TestOrbitControlsDolly(t *testing.T) {
	c := NewOrbitControls(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{})
	c.Dolly(1)
	c.Update()
	if !near(c.Radius, 9.5, 1e-5) {
		t.Errorf("zoom in: radius = %f, want 9.5", c.Radius)
	}
	c.Dolly(-1)
	c.Update()
	if !near(c.Radius, 10, 1e-4) {
		t.Errorf("zoom out: radius = %f, want 10", c.Radius)
	}

	for i := 0; i < 500; i++ {
		c.Dolly(-1)
		c.Update()
	}
	if c.Radius != c.MaxDistance {
		t.Errorf("radius %f not clamped to %f", c.Radius, c.MaxDistance)
	}
}

func TestCameraProjectionDepthRange(t *testing.T) {
	cam := NewCamera()
	proj := cam.Projection(16.0 / 9.0)

	depth := func(z float32) float32 {
		clip := proj.Mul4x1(mgl32.Vec4{0, 0, z, 1})
		return clip.Z() / clip.W()
	}
	if d := depth(-cam.Near); !near(d, 0, 1e-5) {
		t.Errorf("near plane depth = %f, want 0", d)
	}
	if d := depth(-cam.Far); !near(d, 1, 1e-5) {
		t.Errorf("far plane depth = %f, want 1", d)
	}
	if d := depth(-5); d <= 0 || d >= 1 {
		t.Errorf("mid depth %f outside (0,1)", d)
	}
}
