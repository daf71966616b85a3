package kernels

import (
	"image"
)

// Surface is a dense row-major grid of float32 heights.
type Surface struct {
	Width  int
	Height int
	Pix    []float32
}

// NewSurface allocates a zeroed w×h surface.
func NewSurface(w, h int) *Surface {
	return &Surface{Width: w, Height: h, Pix: make([]float32, w*h)}
}

// At returns the height at (x, y). No bounds mapping is applied.
func (s *Surface) At(x, y int) float32 {
	return s.Pix[y*s.Width+x]
}

// Set stores v at (x, y).
func (s *Surface) Set(x, y int, v float32) {
	s.Pix[y*s.Width+x] = v
}

// Clone returns a deep copy.
func (s *Surface) Clone() *Surface {
	out := NewSurface(s.Width, s.Height)
	copy(out.Pix, s.Pix)
	return out
}

// FromGray lifts an 8-bit image into a surface. With negate set every sample
// is stored as -v, which turns a light background into a dark one so the
// ball can always roll from below.
//
// Bounds with a non-zero Min are honoured; the surface origin is Rect.Min.
func FromGray(img *image.Gray, negate bool) *Surface {
	b := img.Rect
	w, h := b.Dx(), b.Dy()
	s := NewSurface(w, h)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w]
		dst := s.Pix[y*w : (y+1)*w]
		for x, v := range row {
			if negate {
				dst[x] = -float32(v)
			} else {
				dst[x] = float32(v)
			}
		}
	}
	return s
}

// Negate flips the sign of every sample in place.
func (s *Surface) Negate() {
	for i, v := range s.Pix {
		s.Pix[i] = -v
	}
}

// ClampAbove lowers every sample of s that lies above the matching sample of
// ceiling. Both surfaces must have the same shape.
func (s *Surface) ClampAbove(ceiling *Surface) {
	for i, v := range s.Pix {
		if c := ceiling.Pix[i]; v > c {
			s.Pix[i] = c
		}
	}
}

// pad returns a copy of s extended by padX columns and padY rows on every
// side, sampling outside positions with the given edge mode.
func (s *Surface) pad(padX, padY int, edge EdgeMode, pool *Pool) *Surface {
	pw, ph := s.Width+2*padX, s.Height+2*padY
	out := &Surface{Width: pw, Height: ph, Pix: pool.Get(pw * ph)}
	for py := 0; py < ph; py++ {
		sy := mapCoord(py-padY, s.Height, edge)
		src := s.Pix[sy*s.Width : (sy+1)*s.Width]
		dst := out.Pix[py*pw : (py+1)*pw]
		for px := 0; px < pw; px++ {
			dst[px] = src[mapCoord(px-padX, s.Width, edge)]
		}
	}
	return out
}
