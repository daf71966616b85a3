// Package images - decoding, encoding and greyscale helpers for the
// rolling-ball tools.
package images

import (
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ImageFormat represents supported image formats
type ImageFormat string

const (
	FormatJPEG ImageFormat = "jpeg"
	FormatPNG  ImageFormat = "png"
	FormatTIFF ImageFormat = "tiff"
	FormatBMP  ImageFormat = "bmp"
)

// ErrUnknownFormat reports a file extension or stream no codec is registered for.
var ErrUnknownFormat = errors.New("unknown image format")

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (ImageFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".png":
		return FormatPNG, nil
	case ".tif", ".tiff":
		return FormatTIFF, nil
	case ".bmp":
		return FormatBMP, nil
	default:
		return "", errors.Wrapf(ErrUnknownFormat, "extension of %q", path)
	}
}

// IsSupported reports whether path has an extension Decode and Encode handle.
func IsSupported(path string) bool {
	_, err := FormatFromPath(path)
	return err == nil
}

// Decode reads an image of any supported format from r.
//
// Arguments:
//   - r: The encoded image stream.
//
// Returns:
//   - image.Image: The decoded image, in whatever color model the file uses.
//   - ImageFormat: The format that was detected.
//   - error: An error if the stream cannot be decoded.
func Decode(r io.Reader) (image.Image, ImageFormat, error) {
	img, name, err := image.Decode(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", errors.Wrap(ErrUnknownFormat, err.Error())
		}
		return nil, "", errors.Wrap(err, "failed to decode image")
	}
	return img, ImageFormat(name), nil
}

// Encode writes img to w in the given format. JPEG is written at maximum
// quality since corrected images are usually measured, not just viewed.
func Encode(w io.Writer, img image.Image, format ImageFormat) error {
	var err error
	switch format {
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatJPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
	case FormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case FormatBMP:
		err = bmp.Encode(w, img)
	default:
		return errors.Wrapf(ErrUnknownFormat, "%q", format)
	}
	return errors.Wrapf(err, "failed to encode %s", format)
}
