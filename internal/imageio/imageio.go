// Package imageio decodes the image file formats the tools accept.
package imageio

import (
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"

	// Registered formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spf13/afero"
)

var extensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// IsImageFile reports whether path has an extension of a supported format.
func IsImageFile(path string) bool {
	return extensions[strings.ToLower(filepath.Ext(path))]
}

// Decode decodes an image in any registered format, returning the format name.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("imageio: %w", err)
	}
	return img, format, nil
}

// DecodeConfig reads only the dimensions and format.
func DecodeConfig(r io.Reader) (image.Config, string, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return image.Config{}, "", fmt.Errorf("imageio: %w", err)
	}
	return cfg, format, nil
}

// DecodeFile opens path on fs and decodes it.
func DecodeFile(fs afero.Fs, path string) (image.Image, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}
