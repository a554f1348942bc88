package galaxy

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSource replays vals in a loop.
type scriptedSource struct {
	vals []float64
	i    int
}

func (s *scriptedSource) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func testParams() GenerationParameters {
	p := DefaultParameters()
	p.Count = 500
	return p
}

func TestGenerate_BufferLengths(t *testing.T) {
	tests := []struct {
		name  string
		count int
	}{
		{"empty", 0},
		{"single", 1},
		{"minimum panel value", MinCount},
		{"odd count", 1237},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams()
			p.Count = tt.count
			cloud := Generate(p, NewSeededSource(1))

			assert.Equal(t, tt.count, cloud.Len())
			assert.Len(t, cloud.Positions, tt.count*3)
			assert.Len(t, cloud.Colors, tt.count*3)
			assert.Len(t, cloud.Scales, tt.count)
			assert.Len(t, cloud.Randomness, tt.count*3)
		})
	}
}

func TestGenerate_EmptyCloud(t *testing.T) {
	p := testParams()
	p.Count = 0

	var cloud *PointCloud
	require.NotPanics(t, func() { cloud = Generate(p, nil) })
	assert.Equal(t, 0, cloud.Len())
	assert.Empty(t, cloud.Positions)
}

func TestGenerate_NegativeCountIsEmpty(t *testing.T) {
	p := testParams()
	p.Count = -5
	assert.Equal(t, 0, Generate(p, NewSeededSource(1)).Len())
}

func TestGenerate_ScalesInUnitRange(t *testing.T) {
	cloud := Generate(testParams(), NewSeededSource(42))
	for i, s := range cloud.Scales {
		if s < 0 || s >= 1 {
			t.Fatalf("scale %d out of [0,1): %v", i, s)
		}
	}
}

func TestGenerate_ScaleNeverRoundsUpToOne(t *testing.T) {
	p := testParams()
	p.Count = 1
	// Last draw is the scale; 1-1e-12 rounds to 1 in float32.
	src := &scriptedSource{vals: []float64{0.5, 0, 0, 0, 0, 0, 0, 1 - 1e-12}}
	cloud := Generate(p, src)
	assert.Less(t, cloud.Scales[0], float32(1))
}

func TestGenerate_ZeroRadiusCollapsesToCenter(t *testing.T) {
	p := testParams()
	p.Radius = 0
	cloud := Generate(p, NewSeededSource(7))

	for i := 0; i < cloud.Len(); i++ {
		assert.Equal(t, [3]float32{0, 0, 0}, cloud.Position(i), "position %d", i)
		assert.Equal(t, p.InsideColor, cloud.Color(i), "color %d", i)
	}
}

func TestGenerate_FlatDisc(t *testing.T) {
	cloud := Generate(testParams(), NewSeededSource(3))
	for i := 0; i < cloud.Len(); i++ {
		assert.Zero(t, cloud.Position(i)[1])
	}
}

func TestGenerate_BranchAssignmentIsPeriodic(t *testing.T) {
	p := testParams()
	p.Branches = 5
	p.Randomness = 0
	cloud := Generate(p, NewSeededSource(11))

	for i := 0; i+p.Branches < cloud.Len(); i++ {
		assert.Equal(t, BranchAngle(i, p.Branches), BranchAngle(i+p.Branches, p.Branches))

		// Each base position lies on its arm's ray from the centre.
		pos := cloud.Position(i)
		r := math.Hypot(float64(pos[0]), float64(pos[2]))
		if r < 1e-6 {
			continue
		}
		angle := BranchAngle(i, p.Branches)
		assert.InDelta(t, math.Cos(angle), float64(pos[0])/r, 1e-4)
		assert.InDelta(t, math.Sin(angle), float64(pos[2])/r, 1e-4)
	}
}

func TestBranchAngle(t *testing.T) {
	assert.Equal(t, 0.0, BranchAngle(0, 3))
	assert.InDelta(t, 2*math.Pi/3, BranchAngle(1, 3), 1e-12)
	assert.InDelta(t, 4*math.Pi/3, BranchAngle(2, 3), 1e-12)
	assert.Equal(t, 0.0, BranchAngle(3, 3))
	assert.Equal(t, 0.0, BranchAngle(4, 0), "degenerate branch count must not divide by zero")
}

func TestGenerate_ColorFollowsRadius(t *testing.T) {
	p := testParams()
	p.Randomness = 0
	p.InsideColor = White
	p.OutsideColor = Black
	cloud := Generate(p, NewSeededSource(5))

	type sample struct {
		r   float32
		red float32
	}
	samples := make([]sample, cloud.Len())
	for i := range samples {
		pos := cloud.Position(i)
		r := float32(math.Hypot(float64(pos[0]), float64(pos[2])))
		samples[i] = sample{r: r, red: cloud.Color(i).R}

		want := p.InsideColor.Lerp(p.OutsideColor, MixFraction(r, p.Radius))
		assert.InDelta(t, want.R, cloud.Color(i).R, 1e-4)
	}

	// Further out means closer to black.
	sort.Slice(samples, func(a, b int) bool { return samples[a].r < samples[b].r })
	for i := 1; i < len(samples); i++ {
		assert.LessOrEqual(t, samples[i].red, samples[i-1].red+1e-4)
	}
}

func TestGenerate_JitterScalesWithRadiusAndPower(t *testing.T) {
	p := testParams()
	p.Randomness = 1
	p.RandomnessPower = 1
	cloud := Generate(p, NewSeededSource(9))

	for i := 0; i < cloud.Len(); i++ {
		pos := cloud.Position(i)
		r := float32(math.Hypot(float64(pos[0]), float64(pos[2])))
		for _, o := range cloud.Offset(i) {
			assert.LessOrEqual(t, float32(math.Abs(float64(o))), r*p.Randomness+1e-5)
		}
	}
}

func TestGenerate_ScriptedSamples(t *testing.T) {
	p := GenerationParameters{
		Count:           1,
		Radius:          2,
		Branches:        3,
		Randomness:      1,
		RandomnessPower: 2,
		InsideColor:     White,
		OutsideColor:    Black,
	}
	// radius, x mag, x sign, y mag, y sign, z mag, z sign, scale
	src := &scriptedSource{vals: []float64{0.5, 0.5, 0.1, 0.5, 0.9, 0, 0.3, 0.75}}
	cloud := Generate(p, src)

	assert.Equal(t, [3]float32{1, 0, 0}, cloud.Position(0))
	assert.Equal(t, [3]float32{0.25, -0.25, 0}, cloud.Offset(0))
	assert.Equal(t, float32(0.75), cloud.Scales[0])
	assert.InDelta(t, 0.5, cloud.Color(0).R, 1e-6)
	assert.Equal(t, 8, src.i)
}

func TestGenerate_SameSeedSameCloud(t *testing.T) {
	a := Generate(testParams(), NewSeededSource(99))
	b := Generate(testParams(), NewSeededSource(99))
	assert.Equal(t, a.Positions, b.Positions)
	assert.Equal(t, a.Randomness, b.Randomness)
	assert.Equal(t, a.Scales, b.Scales)
}

func TestGenerate_FourPointScenario(t *testing.T) {
	p := GenerationParameters{
		Count:           4,
		Radius:          1,
		Branches:        2,
		Randomness:      0,
		RandomnessPower: 1,
		InsideColor:     White,
		OutsideColor:    Black,
	}
	cloud := Generate(p, NewSeededSource(2024))

	for i := 0; i < 4; i++ {
		for _, o := range cloud.Offset(i) {
			assert.Zero(t, o)
		}
	}

	assert.Equal(t, 0.0, BranchAngle(0, 2))
	assert.Equal(t, 0.0, BranchAngle(2, 2))
	assert.Equal(t, math.Pi, BranchAngle(1, 2))
	assert.Equal(t, math.Pi, BranchAngle(3, 2))

	for i := 0; i < 4; i++ {
		pos := cloud.Position(i)
		if i%2 == 0 {
			assert.GreaterOrEqual(t, pos[0], float32(0))
		} else {
			assert.LessOrEqual(t, pos[0], float32(0))
		}
		assert.InDelta(t, 0, pos[2], 1e-6)

		r := float32(math.Abs(float64(pos[0])))
		c := cloud.Color(i)
		assert.InDelta(t, 1-r, c.R, 1e-5)
		assert.Equal(t, c.R, c.G)
		assert.Equal(t, c.G, c.B)
	}
}
