package galaxy

import (
	"math"
	"math/rand"
)

// RandomSource yields uniform samples in [0,1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// NewSeededSource returns a deterministic source for reproducible galaxies.
func NewSeededSource(seed int64) RandomSource {
	return rand.New(rand.NewSource(seed))
}

// PointCloud holds index-aligned per-point attributes, laid out flat so they
// can be uploaded as vertex buffers without repacking.
type PointCloud struct {
	ID     string
	Params GenerationParameters

	Positions  []float32 // xyz
	Colors     []float32 // rgb
	Scales     []float32 // [0,1)
	Randomness []float32 // xyz offset added after the twirl
}

func (c *PointCloud) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Scales)
}

func (c *PointCloud) Position(i int) [3]float32 {
	return [3]float32{c.Positions[i*3], c.Positions[i*3+1], c.Positions[i*3+2]}
}

func (c *PointCloud) Color(i int) Color {
	return Color{c.Colors[i*3], c.Colors[i*3+1], c.Colors[i*3+2]}
}

func (c *PointCloud) Offset(i int) [3]float32 {
	return [3]float32{c.Randomness[i*3], c.Randomness[i*3+1], c.Randomness[i*3+2]}
}

// BranchAngle is the arm angle assigned to point i: arms are chosen by index
// modulo the branch count and spaced evenly around the circle.
func BranchAngle(i, branches int) float64 {
	if branches < 1 {
		branches = 1
	}
	return float64(i%branches) / float64(branches) * 2 * math.Pi
}

// MixFraction is the inside→outside colour fraction for a point at radius r.
func MixFraction(r, radius float32) float32 {
	if radius <= 0 {
		return 0
	}
	return r / radius
}

// Generate builds a flat spiral disc in the XZ plane. Every point consumes
// seven samples from rng in a fixed order: radius, then magnitude and sign for
// each of x, y, z, then scale. A nil rng uses the math/rand global source.
func Generate(params GenerationParameters, rng RandomSource) *PointCloud {
	if rng == nil {
		rng = globalSource{}
	}
	n := params.Count
	if n < 0 {
		n = 0
	}

	cloud := &PointCloud{
		Params:     params,
		Positions:  make([]float32, n*3),
		Colors:     make([]float32, n*3),
		Scales:     make([]float32, n),
		Randomness: make([]float32, n*3),
	}

	power := float64(params.RandomnessPower)
	spread := float64(params.Randomness)

	for i := 0; i < n; i++ {
		i3 := i * 3

		r := rng.Float64() * float64(params.Radius)
		angle := BranchAngle(i, params.Branches)

		cloud.Positions[i3] = float32(math.Cos(angle) * r)
		cloud.Positions[i3+1] = 0
		cloud.Positions[i3+2] = float32(math.Sin(angle) * r)

		for axis := 0; axis < 3; axis++ {
			mag := math.Pow(rng.Float64(), power)
			sign := 1.0
			if rng.Float64() >= 0.5 {
				sign = -1.0
			}
			cloud.Randomness[i3+axis] = float32(mag * sign * spread * r)
		}

		mixed := params.InsideColor.Lerp(params.OutsideColor, MixFraction(float32(r), params.Radius))
		cloud.Colors[i3] = mixed.R
		cloud.Colors[i3+1] = mixed.G
		cloud.Colors[i3+2] = mixed.B

		scale := float32(rng.Float64())
		if scale >= 1 {
			// float64 samples just below 1 can round up in float32.
			scale = math.Nextafter32(1, 0)
		}
		cloud.Scales[i] = scale
	}

	return cloud
}
