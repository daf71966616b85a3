package kernels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func surfaceOf(w, h int, f func(x, y int) float32) *Surface {
	s := NewSurface(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			s.Set(x, y, f(x, y))
		}
	}
	return s
}

func TestShrinkBlockMinimum(t *testing.T) {
	s := surfaceOf(5, 3, func(x, y int) float32 { return float32(10*y + x) })
	out := Shrink(s, 2, Options{})
	require.Equal(t, 3, out.Width)
	require.Equal(t, 2, out.Height)
	assert.Equal(t, []float32{0, 2, 4, 20, 22, 24}, out.Pix)
}

func TestShrinkKeepsIsolatedDip(t *testing.T) {
	s := surfaceOf(8, 8, func(x, y int) float32 { return 100 })
	s.Set(5, 6, 3)
	out := Shrink(s, 4, Options{})
	assert.Equal(t, []float32{100, 100, 100, 3}, out.Pix)
}

func TestShrinkFactorOneCopies(t *testing.T) {
	s := surfaceOf(3, 2, func(x, y int) float32 { return float32(x + y) })
	out := Shrink(s, 1, Options{})
	assert.Equal(t, s.Pix, out.Pix)
	out.Pix[0] = 42
	assert.NotEqual(t, s.Pix[0], out.Pix[0], "result must not alias the input")
}

func TestEnlargeBilinear(t *testing.T) {
	small := surfaceOf(2, 1, func(x, y int) float32 { return float32(4 * x) })
	out := Enlarge(small, 4, 8, 2, Options{})
	require.Equal(t, 8, out.Width)
	require.Equal(t, 2, out.Height)
	// x/4 walks 0..1 then clamps past the last column.
	assert.Equal(t, []float32{0, 1, 2, 3, 4, 4, 4, 4}, out.Pix[:8])
	assert.Equal(t, out.Pix[:8], out.Pix[8:])
}

func TestEnlargeShapeMatchesRequest(t *testing.T) {
	for _, tc := range []struct{ w, h, f int }{{1, 1, 8}, {7, 3, 2}, {17, 9, 4}, {100, 1, 8}} {
		s := surfaceOf(tc.w, tc.h, func(x, y int) float32 { return 5 })
		small := Shrink(s, tc.f, Options{})
		out := Enlarge(small, tc.f, tc.w, tc.h, Options{Parallel: true})
		assert.Equal(t, tc.w, out.Width)
		assert.Equal(t, tc.h, out.Height)
		for _, v := range out.Pix {
			assert.Equal(t, float32(5), v)
		}
	}
}

func TestMax3x3(t *testing.T) {
	s := surfaceOf(4, 4, func(x, y int) float32 { return 10 })
	s.Set(0, 0, 50)
	s.Set(2, 2, 0)
	out := Max3x3(s, Options{})

	assert.Equal(t, float32(50), out.At(0, 0))
	assert.Equal(t, float32(50), out.At(1, 1))
	assert.Equal(t, float32(10), out.At(2, 2), "single-sample pit is filled")
	assert.Equal(t, float32(10), out.At(3, 3))
	assert.Equal(t, float32(0), s.At(2, 2), "input untouched")
}

func TestMapCoord(t *testing.T) {
	assert.Equal(t, 0, mapCoord(-3, 5, EdgeClamp))
	assert.Equal(t, 4, mapCoord(9, 5, EdgeClamp))
	assert.Equal(t, 2, mapCoord(-3, 5, EdgeMirror))
	assert.Equal(t, 3, mapCoord(6, 5, EdgeMirror))
	assert.Equal(t, 2, mapCoord(-3, 5, EdgeWrap))
	assert.Equal(t, 1, mapCoord(6, 5, EdgeWrap))
	assert.Equal(t, 0, mapCoord(7, 1, EdgeMirror))
}

func TestPoolReusesBuffers(t *testing.T) {
	var nilPool *Pool
	assert.Len(t, nilPool.Get(7), 7)
	nilPool.Put(make([]float32, 3))

	p := &Pool{}
	buf := p.Get(16)
	require.Len(t, buf, 16)
	p.Put(buf)
	again := p.Get(8)
	assert.Len(t, again, 8)
}
