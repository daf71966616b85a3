package kernels

import (
	"github.com/chewxy/math32"
)

// Roll rolls ball beneath s and returns the background envelope, a surface of
// the same shape with every sample at or below the matching sample of s.
//
// The footprint is clamped per axis to the surface extent, so a ball larger
// than the surface degrades to a near-flat background instead of failing.
// Padding uses opt.Edge; the zero value replicates edge samples.
func Roll(s *Surface, ball *Ball, opt Options) *Surface {
	w, h := s.Width, s.Height
	out := NewSurface(w, h)
	if w == 0 || h == 0 {
		return out
	}

	hx := min(ball.HalfWidth, w-1)
	hy := min(ball.HalfWidth, h-1)

	padded := s.pad(hx, hy, opt.Edge, opt.Pool)
	defer opt.Pool.Put(padded.Pix)

	z := &Surface{Width: w, Height: h, Pix: opt.Pool.Get(w * h)}
	defer opt.Pool.Put(z.Pix)

	touch(padded, z, ball, hx, hy, opt.Parallel)
	envelope(z, out, ball, hx, hy, opt.Parallel)
	return out
}

// touch computes, for every ball center c, the highest ball top that keeps
// the ball below the padded surface: z(c) = min over d of pad(c+d) + h(d).
func touch(padded, z *Surface, ball *Ball, hx, hy int, parallel bool) {
	pw := padded.Width
	forEachRow(z.Height, parallel, func(cy int) {
		dst := z.Pix[cy*z.Width : (cy+1)*z.Width]
		for cx := range dst {
			m := math32.Inf(1)
			for dy := -hy; dy <= hy; dy++ {
				// Padded row cy+dy+hy holds surface row cy+dy.
				pp := (cy+dy+hy)*pw + cx + hx
				kp := (dy+ball.HalfWidth)*ball.Width + ball.HalfWidth
				for dx := -hx; dx <= hx; dx++ {
					if !ball.Mask[kp+dx] {
						continue
					}
					if v := padded.Pix[pp+dx] + ball.Heights[kp+dx]; v < m {
						m = v
					}
				}
			}
			dst[cx] = m
		}
	})
}

// envelope computes, for every pixel x, the highest point of any touching ball
// covering it: bg(x) = max over d with x-d inside the grid of z(x-d) - h(d).
func envelope(z, out *Surface, ball *Ball, hx, hy int, parallel bool) {
	w, h := z.Width, z.Height
	forEachRow(h, parallel, func(y int) {
		dst := out.Pix[y*w : (y+1)*w]
		dyLo, dyHi := max(-hy, y-(h-1)), min(hy, y)
		for x := range dst {
			m := math32.Inf(-1)
			dxLo, dxHi := max(-hx, x-(w-1)), min(hx, x)
			for dy := dyLo; dy <= dyHi; dy++ {
				cy := y - dy
				kp := (dy+ball.HalfWidth)*ball.Width + ball.HalfWidth
				zrow := z.Pix[cy*w : (cy+1)*w]
				for dx := dxLo; dx <= dxHi; dx++ {
					if !ball.Mask[kp+dx] {
						continue
					}
					if v := zrow[x-dx] - ball.Heights[kp+dx]; v > m {
						m = v
					}
				}
			}
			dst[x] = m
		}
	})
}
