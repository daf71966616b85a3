package kernels

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// ShrinkStep is one row of the shrink table: every radius up to and
// including MaxRadius is processed at 1/Factor resolution, with the outer
// ArcTrimPercent of the ball's half-width trimmed from the footprint.
type ShrinkStep struct {
	MaxRadius      float64
	Factor         int
	ArcTrimPercent int
}

// ShrinkTable maps ball radius to working resolution. Rows are ordered by
// MaxRadius; the last row catches everything.
var ShrinkTable = []ShrinkStep{
	{MaxRadius: 10, Factor: 1, ArcTrimPercent: 24},
	{MaxRadius: 30, Factor: 2, ArcTrimPercent: 24},
	{MaxRadius: 100, Factor: 4, ArcTrimPercent: 32},
	{MaxRadius: math.Inf(1), Factor: 8, ArcTrimPercent: 40},
}

// ShrinkFor returns the shrink table row that applies to radius.
func ShrinkFor(radius float64) ShrinkStep {
	for _, step := range ShrinkTable {
		if radius <= step.MaxRadius {
			return step
		}
	}
	return ShrinkTable[len(ShrinkTable)-1]
}

// Ball is the discrete underside of the rolling ball.
//
// Heights holds, for every cell of the Width×Width square centered on the
// ball, how far the ball's surface lies below its top at that offset. Cells
// with Mask false are outside the footprint and never take part in a pass.
type Ball struct {
	Radius     float32 // small-ball radius, in reduced-resolution pixels
	HalfWidth  int
	Width      int
	Shrink     int
	Paraboloid bool
	Heights    []float32
	Mask       []bool
}

// NewBall builds the ball for radius (in full-resolution pixels).
//
// Arguments:
//   - radius: physical ball radius, must be positive and finite.
//   - paraboloid: use h = d²/2r instead of the exact sphere.
//
// Returns:
//   - *Ball: the kernel, built once and read-only afterwards.
//   - error: ErrBadRadius if radius is not a positive finite number.
func NewBall(radius float64, paraboloid bool) (*Ball, error) {
	return NewBallWithin(radius, paraboloid, 0)
}

// NewBallWithin is NewBall with the footprint half-width limited to maxHalf
// (0 means no limit). The height profile keeps the requested curvature; only
// the square the profile is sampled on gets smaller. Callers pass the extent
// of the reduced surface so a ball larger than the image costs no more than
// one the size of the image.
func NewBallWithin(radius float64, paraboloid bool, maxHalf int) (*Ball, error) {
	if !(radius > 0) || math.IsInf(radius, 1) {
		return nil, errors.Wrapf(ErrBadRadius, "radius %v", radius)
	}

	step := ShrinkFor(radius)
	small := radius / float64(step.Factor)
	if small < 1 {
		small = 1
	}

	xtrim := math.Floor(float64(step.ArcTrimPercent)*small) / 100
	halfF := math.Round(small - math.Floor(xtrim))
	if maxHalf > 0 && halfF > float64(maxHalf) {
		halfF = float64(maxHalf)
	}
	half := int(halfF)
	if half < 1 {
		half = 1
	}
	width := 2*half + 1

	r := float32(small)
	b := &Ball{
		Radius:     r,
		HalfWidth:  half,
		Width:      width,
		Shrink:     step.Factor,
		Paraboloid: paraboloid,
		Heights:    make([]float32, width*width),
		Mask:       make([]bool, width*width),
	}

	rsq := r * r
	for y := 0; y < width; y++ {
		dy := float32(y - half)
		for x := 0; x < width; x++ {
			dx := float32(x - half)
			dsq := dx*dx + dy*dy
			if dsq > rsq {
				continue
			}
			p := y*width + x
			b.Mask[p] = true
			if paraboloid {
				b.Heights[p] = dsq / (2 * r)
			} else {
				// r - sqrt(r²-d²), rearranged to stay exact for large r.
				b.Heights[p] = dsq / (r + math32.Sqrt(rsq-dsq))
			}
		}
	}
	return b, nil
}

// At returns the height and footprint membership at offset (dx, dy) from the
// ball center. Offsets must lie within [-HalfWidth, HalfWidth].
func (b *Ball) At(dx, dy int) (float32, bool) {
	p := (dy+b.HalfWidth)*b.Width + dx + b.HalfWidth
	return b.Heights[p], b.Mask[p]
}

// ErrBadRadius reports a radius that cannot describe a ball.
var ErrBadRadius = errors.New("ball radius must be a positive finite number")
