package kernels

// Shrink reduces s by factor using the minimum of every factor×factor block.
// Edge blocks may be smaller. The result is ceil(W/factor)×ceil(H/factor).
//
// The minimum keeps the lowest point of every block, so the reduced surface
// never hides a dip the ball would have fallen into. A factor of 1 (or less)
// returns a copy.
func Shrink(s *Surface, factor int, opt Options) *Surface {
	if factor <= 1 {
		return s.Clone()
	}

	sw := (s.Width + factor - 1) / factor
	sh := (s.Height + factor - 1) / factor
	out := NewSurface(sw, sh)

	forEachRow(sh, opt.Parallel, func(by int) {
		y0 := by * factor
		y1 := min(y0+factor, s.Height)
		dst := out.Pix[by*sw : (by+1)*sw]
		for bx := 0; bx < sw; bx++ {
			x0 := bx * factor
			x1 := min(x0+factor, s.Width)
			m := s.Pix[y0*s.Width+x0]
			for y := y0; y < y1; y++ {
				row := s.Pix[y*s.Width+x0 : y*s.Width+x1]
				for _, v := range row {
					if v < m {
						m = v
					}
				}
			}
			dst[bx] = m
		}
	})
	return out
}

// Enlarge expands a surface shrunk by factor back to w×h with bilinear
// interpolation. Destination pixel (x, y) samples the reduced surface at
// (x/factor, y/factor); neighbours past the last row or column are clamped.
// A factor of 1 (or less) returns a copy.
func Enlarge(s *Surface, factor, w, h int, opt Options) *Surface {
	if factor <= 1 {
		return s.Clone()
	}

	out := NewSurface(w, h)
	if s.Width == 0 || s.Height == 0 {
		return out
	}

	// Column weights are shared by every row.
	xs0 := make([]int, w)
	xs1 := make([]int, w)
	fx := make([]float32, w)
	for x := 0; x < w; x++ {
		sx := float32(x) / float32(factor)
		i := int(sx)
		xs0[x] = mapCoord(i, s.Width, EdgeClamp)
		xs1[x] = mapCoord(i+1, s.Width, EdgeClamp)
		fx[x] = sx - float32(i)
	}

	forEachRow(h, opt.Parallel, func(y int) {
		sy := float32(y) / float32(factor)
		j := int(sy)
		fy := sy - float32(j)
		r0 := mapCoord(j, s.Height, EdgeClamp)
		r1 := mapCoord(j+1, s.Height, EdgeClamp)
		top := s.Pix[r0*s.Width : (r0+1)*s.Width]
		bot := s.Pix[r1*s.Width : (r1+1)*s.Width]
		dst := out.Pix[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			a := top[xs0[x]] + fx[x]*(top[xs1[x]]-top[xs0[x]])
			b := bot[xs0[x]] + fx[x]*(bot[xs1[x]]-bot[xs0[x]])
			dst[x] = a + fy*(b-a)
		}
	})
	return out
}
