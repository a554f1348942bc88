package core

import "math"

// MaxPixelRatio caps the backing resolution on high-density displays.
const MaxPixelRatio = 2

// Viewport describes the window in logical pixels and the surface in device
// pixels.
type Viewport struct {
	Width, Height int
	PixelRatio    float32

	SurfaceWidth  uint32
	SurfaceHeight uint32
}

// ComputeViewport derives the pixel ratio from the window and framebuffer
// sizes GLFW reports, capped at MaxPixelRatio.
func ComputeViewport(winW, winH, fbW, fbH int) Viewport {
	if winW <= 0 || winH <= 0 {
		return Viewport{}
	}
	ratio := float32(1)
	if fbW > 0 {
		ratio = float32(fbW) / float32(winW)
	}
	if ratio > MaxPixelRatio {
		ratio = MaxPixelRatio
	}
	return Viewport{
		Width:         winW,
		Height:        winH,
		PixelRatio:    ratio,
		SurfaceWidth:  uint32(math.Round(float64(float32(winW) * ratio))),
		SurfaceHeight: uint32(math.Round(float64(float32(winH) * ratio))),
	}
}

// Valid is false while the window is minimised.
func (v Viewport) Valid() bool {
	return v.SurfaceWidth > 0 && v.SurfaceHeight > 0
}

func (v Viewport) Aspect() float32 {
	if v.Height == 0 {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}
