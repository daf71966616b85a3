package images

import (
	"image"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// PreviewGap is the number of black columns between preview panels.
const PreviewGap = 4

// Preview lays panels out side by side and scales the strip to width.
// Panels may differ in size; each is drawn top-aligned.
//
// Arguments:
//   - width: Target width of the strip in pixels. Zero keeps the native size.
//   - panels: The images to show, left to right.
//
// Returns:
//   - *image.Gray: The preview strip.
//   - error: An error if there is nothing to draw or width is negative.
func Preview(width int, panels ...*image.Gray) (*image.Gray, error) {
	if width < 0 {
		return nil, errors.Errorf("preview width must not be negative, got %d", width)
	}
	if len(panels) == 0 {
		return nil, errors.New("preview needs at least one panel")
	}

	stripW, stripH := 0, 0
	for i, p := range panels {
		if p == nil || p.Rect.Empty() {
			return nil, errors.Errorf("preview panel %d is empty", i)
		}
		if i > 0 {
			stripW += PreviewGap
		}
		stripW += p.Rect.Dx()
		stripH = max(stripH, p.Rect.Dy())
	}

	strip := image.NewGray(image.Rect(0, 0, stripW, stripH))
	x := 0
	for _, p := range panels {
		dst := image.Rect(x, 0, x+p.Rect.Dx(), p.Rect.Dy())
		draw.Draw(strip, dst, p, p.Rect.Min, draw.Src)
		x += p.Rect.Dx() + PreviewGap
	}

	if width == 0 || width == stripW {
		return strip, nil
	}
	// Height 0 keeps the aspect ratio.
	scaled := resize.Resize(uint(width), 0, strip, resize.Bilinear)
	if g, ok := scaled.(*image.Gray); ok {
		return g, nil
	}
	return Grayscale(scaled), nil
}
