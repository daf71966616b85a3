package util

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/nearlyfreeapps/Rolling-Ball-Algorithm/images"
)

// ImageFile represents an image file found in a directory.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Format is the format implied by the file extension.
	Format images.ImageFormat
	// Size is the file size in bytes.
	Size int64
}

// LoadDirectoryImageFiles lists the supported image files of a directory.
// Subdirectories and files with other extensions are skipped. Files are not
// read; batch jobs decode them one at a time.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: The image files, sorted by name.
// - error: Error if the directory cannot be read.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read image directory")
	}

	var files []ImageFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		format, err := images.FormatFromPath(entry.Name())
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to stat %s", entry.Name())
		}
		files = append(files, ImageFile{
			Path:   filepath.Join(dir, entry.Name()),
			Format: format,
			Size:   info.Size(),
		})
	}

	// os.ReadDir already sorts by name; keep the order explicit for callers.
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	return files, nil
}
