package background

import (
	"github.com/pkg/errors"
)

// Error kinds reported by the entry points. All of them are detected before
// any computation starts; test with errors.Is.
var (
	// ErrInvalidParameter reports a non-positive radius or an empty image.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrUnsupportedFormat reports an image that is not single-channel 8-bit.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrShapeMismatch reports an image and background of different sizes.
	ErrShapeMismatch = errors.New("image and background shapes differ")
)
