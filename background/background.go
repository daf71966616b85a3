// Package background removes uneven illumination from 8-bit greyscale
// images with the rolling-ball algorithm.
//
// Imagine the image as a landscape whose height is the pixel intensity. A
// ball of the given radius is rolled along the underside of that landscape;
// the hull of every position the ball can reach is the background. Small
// bright structures the ball cannot enter stay out of the background and
// survive subtraction, slowly varying illumination does not.
//
// In light-background mode the same is done from above, on the inverted
// image, for dark structures on a bright floor.
//
// Known limitation: for large radii the image is shrunk and a smaller ball is
// rolled over it, but the footprint is never rescaled to compensate. Results
// at large radii are approximate.
package background

import (
	"image"
	"io"
	"time"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nearlyfreeapps/Rolling-Ball-Algorithm/images/kernels"
)

// Result bundles everything Process produces.
type Result struct {
	// Background is the estimated illumination floor, rounded to 8 bits.
	Background *image.Gray
	// Corrected is the input with the background removed.
	Corrected *image.Gray
	// Stats summarises the background surface before rounding.
	Stats Stats
}

// Processor runs background estimations. It is safe for concurrent use; the
// only shared state is a scratch buffer pool.
type Processor struct {
	logger logrus.FieldLogger
	pool   *kernels.Pool
}

// NewProcessor creates a processor that logs stage timings to logger at
// debug level. A nil logger discards everything.
func NewProcessor(logger logrus.FieldLogger) *Processor {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Processor{logger: logger, pool: &kernels.Pool{}}
}

var defaultProcessor = NewProcessor(nil)

// ComputeBackground estimates the background of img.
//
// Arguments:
//   - img: an *image.Gray; anything else is ErrUnsupportedFormat.
//   - p: processing parameters.
//
// Returns:
//   - *image.Gray: background with the same bounds as img. In dark mode every
//     sample is at or below the matching input sample, in light mode at or
//     above it.
//   - error: ErrInvalidParameter or ErrUnsupportedFormat.
func ComputeBackground(img image.Image, p Params) (*image.Gray, error) {
	return defaultProcessor.Background(img, p)
}

// SubtractBackground removes bg from img pointwise, see Processor.Subtract.
func SubtractBackground(img, bg image.Image, lightBackground bool) (*image.Gray, error) {
	return defaultProcessor.Subtract(img, bg, lightBackground)
}

// Process estimates the background of img and subtracts it in one call.
// Unlike ComputeBackground followed by SubtractBackground, the subtraction
// uses the unrounded background.
func Process(img image.Image, p Params) (*Result, error) {
	return defaultProcessor.Process(img, p)
}

// Background is ComputeBackground on this processor.
func (pr *Processor) Background(img image.Image, p Params) (*image.Gray, error) {
	gray, err := validate(img, p)
	if err != nil {
		return nil, err
	}
	bg := pr.estimate(gray, p)
	return toGray(bg, gray.Rect), nil
}

// Process is the package-level Process on this processor.
func (pr *Processor) Process(img image.Image, p Params) (*Result, error) {
	gray, err := validate(img, p)
	if err != nil {
		return nil, err
	}
	bg := pr.estimate(gray, p)

	start := time.Now()
	out := subtract(gray, bg, p.LightBackground)
	pr.logger.WithFields(logrus.Fields{
		"stage":   "subtract",
		"elapsed": time.Since(start),
	}).Debug("stage done")

	return &Result{
		Background: toGray(bg, gray.Rect),
		Corrected:  out,
		Stats:      summarize(bg),
	}, nil
}

// Subtract removes bg from img.
//
// Dark background: out = clip(img - bg).
// Light background: out = clip(255 - (bg - img)).
//
// Returns ErrUnsupportedFormat unless both are *image.Gray and
// ErrShapeMismatch when their sizes differ.
func (pr *Processor) Subtract(img, bg image.Image, lightBackground bool) (*image.Gray, error) {
	gray, err := asGray(img, "image")
	if err != nil {
		return nil, err
	}
	grayBg, err := asGray(bg, "background")
	if err != nil {
		return nil, err
	}
	if gray.Rect.Size() != grayBg.Rect.Size() {
		return nil, errors.Wrapf(ErrShapeMismatch, "image %v, background %v",
			gray.Rect.Size(), grayBg.Rect.Size())
	}
	return subtract(gray, kernels.FromGray(grayBg, false), lightBackground), nil
}

// estimate runs the pipeline: presmooth, shrink, roll, enlarge. The returned
// surface is in image units (not negated) and full resolution.
func (pr *Processor) estimate(img *image.Gray, p Params) *kernels.Surface {
	log := pr.logger.WithFields(logrus.Fields{
		"radius": p.Radius,
		"width":  img.Rect.Dx(),
		"height": img.Rect.Dy(),
		"light":  p.LightBackground,
	})
	opt := kernels.Options{Edge: kernels.EdgeClamp, Pool: pr.pool, Parallel: p.Parallel}

	stage := func(name string, start time.Time) {
		log.WithFields(logrus.Fields{"stage": name, "elapsed": time.Since(start)}).Debug("stage done")
	}

	// Work on the negated image in light mode so the ball always rolls from
	// below; the block minimum then acts as a maximum on the image.
	orig := kernels.FromGray(img, p.LightBackground)
	w, h := orig.Width, orig.Height

	step := kernels.ShrinkFor(p.Radius)
	sw := (w + step.Factor - 1) / step.Factor
	sh := (h + step.Factor - 1) / step.Factor
	// validate already checked the radius.
	ball, _ := kernels.NewBallWithin(p.Radius, p.Paraboloid, max(sw, sh, 2)-1)
	log = log.WithFields(logrus.Fields{"shrink": ball.Shrink, "ball_width": ball.Width})

	work := orig
	if p.Presmooth {
		start := time.Now()
		work = kernels.Max3x3(orig, opt)
		stage("presmooth", start)
	}

	if ball.Shrink > 1 {
		start := time.Now()
		work = kernels.Shrink(work, ball.Shrink, opt)
		stage("shrink", start)
	}

	start := time.Now()
	bg := kernels.Roll(work, ball, opt)
	stage("roll", start)

	if ball.Shrink > 1 {
		start := time.Now()
		bg = kernels.Enlarge(bg, ball.Shrink, w, h, opt)
		stage("enlarge", start)
	}

	// Pre-smoothing and interpolation can both lift the envelope above the
	// input; the background never exceeds the surface it was rolled under.
	bg.ClampAbove(orig)

	if p.LightBackground {
		bg.Negate()
	}
	return bg
}

// subtract applies the subtraction rule and rounds to 8 bits.
func subtract(img *image.Gray, bg *kernels.Surface, light bool) *image.Gray {
	out := image.NewGray(img.Rect)
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+w]
		dst := out.Pix[y*out.Stride : y*out.Stride+w]
		back := bg.Pix[y*w : (y+1)*w]
		for x, v := range src {
			var d float32
			if light {
				d = 255 - (back[x] - float32(v))
			} else {
				d = float32(v) - back[x]
			}
			dst[x] = clip8(d)
		}
	}
	return out
}

// toGray rounds s into a new image with bounds r.
func toGray(s *kernels.Surface, r image.Rectangle) *image.Gray {
	out := image.NewGray(r)
	for y := 0; y < s.Height; y++ {
		dst := out.Pix[y*out.Stride : y*out.Stride+s.Width]
		for x, v := range s.Pix[y*s.Width : (y+1)*s.Width] {
			dst[x] = clip8(v)
		}
	}
	return out
}

func clip8(v float32) uint8 {
	v = math32.Round(v)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// validate checks everything Background and Process need before any work.
func validate(img image.Image, p Params) (*image.Gray, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return asGray(img, "image")
}

func asGray(img image.Image, what string) (*image.Gray, error) {
	if img == nil {
		return nil, errors.Wrapf(ErrInvalidParameter, "%s is nil", what)
	}
	gray, ok := img.(*image.Gray)
	if ok && gray == nil {
		return nil, errors.Wrapf(ErrInvalidParameter, "%s is nil", what)
	}
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%s is %T, want single-channel 8-bit *image.Gray", what, img)
	}
	if gray.Rect.Dx() <= 0 || gray.Rect.Dy() <= 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "%s has empty bounds %v", what, gray.Rect)
	}
	return gray, nil
}
