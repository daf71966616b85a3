package images

import (
	"crypto/md5"
	"fmt"
	"image"
)

// ComputeGrayChecksum generates a deterministic checksum of the visible pixels
// of img, ignoring stride padding and the bounds origin. Two images with the
// same size and samples hash equally.
//
// Arguments:
// - img: The image to compute checksum for.
//
// Returns:
// - A hex-encoded MD5 checksum string, or "empty" for a nil or empty image.
//
// Example:
//
// ```go
//
//	before := ComputeGrayChecksum(img)
//	background.ComputeBackground(img, p)
//	if ComputeGrayChecksum(img) != before { ... }
//
// ```
func ComputeGrayChecksum(img *image.Gray) string {
	if img == nil || img.Rect.Empty() {
		return "empty"
	}

	hash := md5.New()
	w := img.Rect.Dx()
	for y := 0; y < img.Rect.Dy(); y++ {
		off := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		hash.Write(img.Pix[off : off+w])
	}
	return fmt.Sprintf("%x", hash.Sum(nil))
}
