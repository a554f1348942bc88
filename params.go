package galaxy

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a linear RGB triple with channels in [0,1]. Hex strings are sRGB
// and are converted on the way in and out; mixing happens in linear space and
// the surface encodes the result once.
type Color struct {
	R, G, B float32
}

var (
	White = Color{1, 1, 1}
	Black = Color{0, 0, 0}
)

// ParseColor accepts "#rrggbb" or "#rgb".
func ParseColor(hex string) (Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", hex, err)
	}
	return fromSrgb(c), nil
}

// MustParseColor is ParseColor for literals known to be valid.
func MustParseColor(hex string) Color {
	c, err := ParseColor(hex)
	if err != nil {
		panic(err)
	}
	return c
}

func fromSrgb(c colorful.Color) Color {
	r, g, b := c.Clamped().LinearRgb()
	return Color{R: float32(r), G: float32(g), B: float32(b)}
}

// srgb is the display-encoded form used for hex and HSV.
func (c Color) srgb() colorful.Color {
	return colorful.LinearRgb(float64(c.R), float64(c.G), float64(c.B)).Clamped()
}

func (c Color) Hex() string {
	return c.srgb().Hex()
}

func (c Color) String() string {
	return c.Hex()
}

// Lerp mixes c towards o by t in linear space. t == 0 returns c unchanged.
func (c Color) Lerp(o Color, t float32) Color {
	if t == 0 {
		return c
	}
	return Color{
		R: c.R + (o.R-c.R)*t,
		G: c.G + (o.G-c.G)*t,
		B: c.B + (o.B-c.B)*t,
	}
}

// Hsv returns the sRGB hue in degrees [0,360), saturation and value in [0,1].
func (c Color) Hsv() (h, s, v float64) {
	return c.srgb().Hsv()
}

func ColorFromHsv(h, s, v float64) Color {
	return fromSrgb(colorful.Hsv(h, s, v))
}

// Array returns the channels in shader order.
func (c Color) Array() [3]float32 {
	return [3]float32{c.R, c.G, c.B}
}

// GenerationParameters drives Generate. Values are expected to be within the
// control ranges; Sanitize enforces the structural minimums.
type GenerationParameters struct {
	Count           int
	Size            float32 // base point size in pixels, before pixel ratio
	Radius          float32
	Branches        int
	Spin            float32 // twirl rate multiplier
	Randomness      float32
	RandomnessPower float32
	InsideColor     Color
	OutsideColor    Color
}

const (
	MinCount           = 100
	MaxCount           = 1000000
	MinBranches        = 2
	MinRandomnessPower = 1
)

func DefaultParameters() GenerationParameters {
	return GenerationParameters{
		Count:           200000,
		Size:            8,
		Radius:          5,
		Branches:        3,
		Spin:            1,
		Randomness:      0.5,
		RandomnessPower: 3,
		InsideColor:     MustParseColor("#ff6030"),
		OutsideColor:    MustParseColor("#1b3984"),
	}
}

// Sanitize clamps values that would produce a degenerate galaxy. It is applied
// at the input boundary (panel, preset files); Generate never calls it.
// Count has no upper bound here: very large clouds are an accepted cost.
func (p GenerationParameters) Sanitize() GenerationParameters {
	if p.Count < 0 {
		p.Count = 0
	}
	if p.Branches < MinBranches {
		p.Branches = MinBranches
	}
	if p.Radius < 0 {
		p.Radius = 0
	}
	if p.Randomness < 0 {
		p.Randomness = 0
	}
	if p.RandomnessPower < MinRandomnessPower {
		p.RandomnessPower = MinRandomnessPower
	}
	if p.Size < 0 {
		p.Size = 0
	}
	return p
}

func (p GenerationParameters) String() string {
	return fmt.Sprintf("count=%d size=%.2f radius=%.2f branches=%d spin=%.3f randomness=%.3f power=%.3f inside=%s outside=%s",
		p.Count, p.Size, p.Radius, p.Branches, p.Spin, p.Randomness, p.RandomnessPower, p.InsideColor, p.OutsideColor)
}
