package images

import (
	"image"
	"image/color"
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// ErrNotGray is returned by AsGray when the image is not single-channel and
// conversion was not requested.
var ErrNotGray = errors.New("image is not 8-bit greyscale")

// AsGray returns img as an *image.Gray.
//
// Arguments:
//   - img: The decoded image.
//   - convert: Whether colour images may be converted with Grayscale.
//
// Returns:
//   - *image.Gray: img itself when it already is one, otherwise the converted
//     copy. Grey-palette images are converted losslessly even without convert.
//   - error: ErrNotGray when img is colour and convert is false.
func AsGray(img image.Image, convert bool) (*image.Gray, error) {
	switch im := img.(type) {
	case *image.Gray:
		return im, nil
	case *image.Paletted:
		// 8-bit BMP and some PNG encoders store greyscale as a grey palette.
		if isGrayPalette(im.Palette) {
			return Grayscale(im), nil
		}
	}
	if !convert {
		return nil, errors.Wrapf(ErrNotGray, "got %T", img)
	}
	return Grayscale(img), nil
}

func isGrayPalette(p color.Palette) bool {
	for _, c := range p {
		r, g, b, a := c.RGBA()
		if r != g || g != b || a != 0xffff {
			return false
		}
	}
	return len(p) > 0
}

// Grayscale converts an image to 8-bit greyscale using ITU-R BT.709 luma
// coefficients. Alpha is ignored.
//
// Arguments:
//   - img: The source image to convert.
//
// Returns:
//   - *image.Gray: A new image with the same bounds.
func Grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	width := bounds.Dx()
	dst := image.NewGray(bounds)

	const (
		redWeight   = 0.2126
		greenWeight = 0.7152
		blueWeight  = 0.0722
	)

	Parallel(bounds.Dy(), func(partStart, partEnd int) {
		for y := partStart; y < partEnd; y++ {
			srcY := bounds.Min.Y + y
			row := dst.Pix[y*dst.Stride : y*dst.Stride+width]
			for x := range row {
				r, g, b, _ := img.At(bounds.Min.X+x, srcY).RGBA()
				// RGBA() is 16-bit; +0.5 rounds back to 8 bits.
				luma := (float64(r)*redWeight + float64(g)*greenWeight + float64(b)*blueWeight) / 257
				row[x] = uint8(luma + 0.5)
			}
		}
	})

	return dst
}

// Parallel splits [0, n) into one contiguous part per CPU and runs fn on each
// part concurrently, returning once all parts are done.
func Parallel(n int, fn func(partStart, partEnd int)) {
	if n <= 0 {
		return
	}
	parts := min(runtime.GOMAXPROCS(0), n)
	size := (n + parts - 1) / parts

	var wg sync.WaitGroup
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
