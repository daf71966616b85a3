package kernels

// Max3x3 returns s filtered with a 3×3 maximum, edges replicated.
//
// On a surface the ball rolls beneath, this fills single-sample pits so the
// ball is not pulled down into noise narrower than a pixel or two. The result
// can lie above s; callers that need the background to stay below the input
// must clamp against the unsmoothed surface afterwards.
func Max3x3(s *Surface, opt Options) *Surface {
	w, h := s.Width, s.Height
	out := NewSurface(w, h)
	if w == 0 || h == 0 {
		return out
	}

	forEachRow(h, opt.Parallel, func(y int) {
		y0 := mapCoord(y-1, h, EdgeClamp)
		y2 := mapCoord(y+1, h, EdgeClamp)
		rows := [3][]float32{
			s.Pix[y0*w : (y0+1)*w],
			s.Pix[y*w : (y+1)*w],
			s.Pix[y2*w : (y2+1)*w],
		}
		dst := out.Pix[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			x0 := mapCoord(x-1, w, EdgeClamp)
			x2 := mapCoord(x+1, w, EdgeClamp)
			m := rows[0][x0]
			for _, row := range rows {
				for _, v := range [3]float32{row[x0], row[x], row[x2]} {
					if v > m {
						m = v
					}
				}
			}
			dst[x] = m
		}
	})
	return out
}
