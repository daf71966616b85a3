package kernels

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShrinkForCoversRadiusDomain(t *testing.T) {
	tests := []struct {
		radius float64
		factor int
		trim   int
	}{
		{0.1, 1, 24},
		{1, 1, 24},
		{10, 1, 24},
		{10.0001, 2, 24},
		{30, 2, 24},
		{30.5, 4, 32},
		{100, 4, 32},
		{101, 8, 40},
		{1e9, 8, 40},
	}
	for _, tt := range tests {
		step := ShrinkFor(tt.radius)
		assert.Equal(t, tt.factor, step.Factor, "radius %v", tt.radius)
		assert.Equal(t, tt.trim, step.ArcTrimPercent, "radius %v", tt.radius)
	}
}

func TestShrinkForIsMonotone(t *testing.T) {
	prev := 0
	for r := 0.25; r < 1000; r += 0.25 {
		f := ShrinkFor(r).Factor
		require.GreaterOrEqual(t, f, prev, "radius %v", r)
		prev = f
	}
}

func TestNewBallRejectsBadRadius(t *testing.T) {
	for _, r := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		b, err := NewBall(r, false)
		assert.Nil(t, b)
		assert.True(t, errors.Is(err, ErrBadRadius), "radius %v", r)
	}
}

func TestNewBallGeometry(t *testing.T) {
	tests := []struct {
		name   string
		radius float64
		half   int
		shrink int
		small  float32
	}{
		{"tiny radius floors to one", 0.3, 1, 1, 1},
		{"radius two", 2, 2, 1, 2},
		{"radius ten trims arc", 10, 8, 1, 10},
		{"radius twenty shrinks by two", 20, 8, 2, 10},
		{"radius fifty shrinks by four", 50, 9, 4, 12.5},
		{"radius two hundred shrinks by eight", 200, 15, 8, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBall(tt.radius, false)
			require.NoError(t, err)
			assert.Equal(t, tt.half, b.HalfWidth)
			assert.Equal(t, 2*tt.half+1, b.Width)
			assert.Equal(t, tt.shrink, b.Shrink)
			assert.InDelta(t, tt.small, b.Radius, 1e-6)
			assert.Len(t, b.Heights, b.Width*b.Width)
			assert.Len(t, b.Mask, b.Width*b.Width)
		})
	}
}

func TestNewBallProfile(t *testing.T) {
	sphere, err := NewBall(2, false)
	require.NoError(t, err)
	para, err := NewBall(2, true)
	require.NoError(t, err)

	h, in := sphere.At(0, 0)
	assert.True(t, in)
	assert.Equal(t, float32(0), h)

	h, in = sphere.At(1, 0)
	assert.True(t, in)
	assert.InDelta(t, 2-math.Sqrt(3), h, 1e-6)

	h, in = sphere.At(2, 0)
	assert.True(t, in)
	assert.InDelta(t, 2, h, 1e-6)

	_, in = sphere.At(2, 2)
	assert.False(t, in, "corner lies outside the footprint")

	h, _ = para.At(1, 0)
	assert.InDelta(t, 0.25, h, 1e-6)
	h, _ = para.At(1, 1)
	assert.InDelta(t, 0.5, h, 1e-6)

	// Symmetric and non-decreasing away from the center.
	for dy := -sphere.HalfWidth; dy <= sphere.HalfWidth; dy++ {
		for dx := -sphere.HalfWidth; dx <= sphere.HalfWidth; dx++ {
			a, inA := sphere.At(dx, dy)
			b, inB := sphere.At(-dy, dx)
			assert.Equal(t, inA, inB)
			assert.InDelta(t, a, b, 1e-6)
		}
	}
}

func TestNewBallWithinClampsFootprint(t *testing.T) {
	b, err := NewBallWithin(10, false, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, b.HalfWidth)
	assert.Equal(t, 7, b.Width)
	assert.InDelta(t, 10, b.Radius, 1e-6)

	huge, err := NewBallWithin(1e12, true, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, huge.HalfWidth)
	for _, h := range huge.Heights {
		assert.False(t, math.IsNaN(float64(h)))
	}
}
