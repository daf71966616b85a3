// Package kernels implements the numeric engine behind rolling-ball
// background estimation on single-channel float32 surfaces.
//
// The engine is a grayscale opening with a non-flat structuring element
// (the underside of a ball, or a paraboloid approximating it):
//
//   - Touch pass: for every ball center c, the highest position z(c) at which
//     the ball still lies completely below the surface.
//   - Envelope pass: for every pixel x, the highest point of any ball
//     touching from below that covers x.
//
// Both passes read a copy of the surface padded by the footprint half-extent
// with replicated edge samples. This slightly underestimates the background
// at the extreme border and is an accepted approximation; no exact boundary
// correction is attempted.
//
// Large radii are handled by shrinking the surface with a block minimum,
// rolling a proportionally smaller ball and enlarging the result with
// bilinear interpolation. The footprint itself is never rescaled.
package kernels

import (
	"sync"
)

// EdgeMode defines how sampling behaves outside the surface bounds.
// - Clamp: repeats edge samples (what the rolling ball uses).
// - Mirror: reflects coordinates.
// - Wrap: tiles the surface (for periodic patterns).
type EdgeMode int

const (
	EdgeClamp EdgeMode = iota
	EdgeMirror
	EdgeWrap
)

// Options configures how a kernel pass is scheduled.
type Options struct {
	Edge     EdgeMode // Edge sampling mode used for padding.
	Pool     *Pool    // Optional buffer pool for intermediate reuse.
	Parallel bool     // Enable row parallelism (good for 1080p+).
}

// Pool lets callers reuse large scratch buffers between invocations.
// Only intermediates (padded surfaces, z grids) are drawn from the pool;
// results handed back to callers are always freshly allocated.
type Pool struct {
	f32 sync.Pool // *[]float32
}

// Get returns a slice of length n. Contents are unspecified.
func (p *Pool) Get(n int) []float32 {
	if p == nil {
		return make([]float32, n)
	}
	if v := p.f32.Get(); v != nil {
		buf := *(v.(*[]float32))
		if cap(buf) >= n {
			return buf[:n]
		}
	}
	return make([]float32, n)
}

// Put returns buf to the pool.
func (p *Pool) Put(buf []float32) {
	if p == nil || buf == nil {
		return
	}
	// No clearing; every consumer fully overwrites.
	p.f32.Put(&buf)
}

// mapCoord maps an index i to [0, n) according to edge mode.
// For Clamp: clamp to [0, n-1].
// For Mirror: reflect indices ... -2,-1,0,1,2, ... -> 1,0,0,1,2, ... (no duplication at edges).
// For Wrap: modulo wrap to [0, n).
func mapCoord(i, n int, mode EdgeMode) int {
	switch mode {
	case EdgeMirror:
		if n == 1 {
			return 0
		}
		for i < 0 || i >= n {
			if i < 0 {
				i = -i - 1
			} else if i >= n {
				i = 2*n - i - 1
			}
		}
		return i
	case EdgeWrap:
		if n == 0 {
			return 0
		}
		i %= n
		if i < 0 {
			i += n
		}
		return i
	default:
		if i < 0 {
			return 0
		}
		if i >= n {
			return n - 1
		}
		return i
	}
}

// chooseChunk picks a work chunk size that balances overhead and cache locality.
func chooseChunk(n int) int {
	switch {
	case n >= 2048:
		return 128
	case n >= 512:
		return 64
	default:
		return 32
	}
}

// forEachRow runs rowTask for y in [0, h). With parallel set, rows are split
// into chunks and each chunk runs on its own goroutine; forEachRow returns
// once every row is done, so consecutive calls form a barrier.
func forEachRow(h int, parallel bool, rowTask func(y int)) {
	if !parallel || h < 4 {
		for y := 0; y < h; y++ {
			rowTask(y)
		}
		return
	}

	chunk := chooseChunk(h)
	var wg sync.WaitGroup
	for start := 0; start < h; start += chunk {
		end := start + chunk
		if end > h {
			end = h
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for y := s; y < e; y++ {
				rowTask(y)
			}
		}(start, end)
	}
	wg.Wait()
}
