package galaxy

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// CPU versions of the math in rt/shaders/galaxy.wgsl. Keep the two in sync.

// TwirlRate is the angular rate at Spin == 1.
const TwirlRate float32 = 0.1

// FalloffExponent sharpens the glow inside each point sprite.
const FalloffExponent = 10

func SpinRate(spin float32) float32 {
	return TwirlRate * spin
}

// TwirlPosition rotates pos around the Y axis by an angle inversely
// proportional to its distance from the axis, then adds the randomness offset.
// Points on the axis are not rotated.
func TwirlPosition(pos, offset mgl32.Vec3, t, spinRate float32) mgl32.Vec3 {
	x, z := float64(pos.X()), float64(pos.Z())
	d := math.Hypot(x, z)
	if d > 0 {
		angle := math.Atan2(z, x) + (1/d)*float64(t)*float64(spinRate)
		x = math.Cos(angle) * d
		z = math.Sin(angle) * d
	}
	return mgl32.Vec3{float32(x), pos.Y(), float32(z)}.Add(offset)
}

// PointSize is the on-screen diameter in pixels for a point at view-space
// depth viewZ.
func PointSize(baseSize, scale, viewZ float32) float32 {
	depth := float32(math.Abs(float64(viewZ)))
	if depth == 0 {
		return 0
	}
	return baseSize * scale / depth
}

// PointStrength is the brightness at coord inside a sprite, where coord is in
// [0,1]² and (0.5,0.5) is the centre.
func PointStrength(coord mgl32.Vec2) float32 {
	s := 1 - coord.Sub(mgl32.Vec2{0.5, 0.5}).Len()
	if s <= 0 {
		return 0
	}
	return float32(math.Pow(float64(s), FalloffExponent))
}

// ShadePoint mixes black towards the point colour by PointStrength.
func ShadePoint(c Color, coord mgl32.Vec2) Color {
	s := PointStrength(coord)
	return Color{c.R * s, c.G * s, c.B * s}
}
