package images

import (
	"bufio"
	"image"
	"os"

	"github.com/pkg/errors"
)

// ReadGray decodes the image at path and returns it as greyscale, converting
// colour images when convert is set.
func ReadGray(path string, convert bool) (*image.Gray, ImageFormat, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to open image")
	}
	defer f.Close()

	img, format, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, "", errors.Wrapf(err, "failed to read %s", path)
	}
	gray, err := AsGray(img, convert)
	if err != nil {
		return nil, "", errors.Wrapf(err, "failed to read %s", path)
	}
	return gray, format, nil
}

// WriteFile encodes img to path, picking the format from the extension.
func WriteFile(path string, img image.Image) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create image file")
	}
	w := bufio.NewWriter(f)
	if err := Encode(w, img, format); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return errors.Wrapf(f.Close(), "failed to close %s", path)
}
