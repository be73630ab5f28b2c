package qrsnap

import (
	"fmt"
	"math"
)

// LuminanceSource provides access to greyscale luminance values for an image.
type LuminanceSource interface {
	// Row returns a row of luminance data. If row is non-nil and large enough,
	// it is reused.
	Row(y int, row []byte) []byte

	// Matrix returns the entire luminance matrix, row-major.
	Matrix() []byte

	// Width returns the width of the image.
	Width() int

	// Height returns the height of the image.
	Height() int
}

// PixelSource is a LuminanceSource over a caller supplied pixel buffer.
type PixelSource struct {
	luminances []byte
	width      int
	height     int
}

// Luma converts an 8-bit RGB triple to luminance with the 33/34/33 weighting.
func Luma(r, g, b uint32) byte {
	return byte((r*33 + g*34 + b*33) / 100)
}

// NewPixelSource wraps a flat pixel buffer. pix holds either four samples per
// pixel (RGBA, alpha ignored) or one luminance sample per pixel. The buffer
// is only read during construction.
func NewPixelSource(width, height int, pix []byte) (*PixelSource, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidBuffer, width, height)
	}
	if width > math.MaxInt/4/height {
		return nil, fmt.Errorf("%w: %dx%d overflows", ErrInvalidBuffer, width, height)
	}
	n := width * height
	lum := make([]byte, n)
	switch len(pix) {
	case n:
		copy(lum, pix)
	case 4 * n:
		for i, off := 0, 0; i < n; i, off = i+1, off+4 {
			lum[i] = Luma(uint32(pix[off]), uint32(pix[off+1]), uint32(pix[off+2]))
		}
	default:
		return nil, fmt.Errorf("%w: %d samples for %dx%d", ErrInvalidBuffer, len(pix), width, height)
	}
	return &PixelSource{luminances: lum, width: width, height: height}, nil
}

// Row returns a row of luminance data.
func (s *PixelSource) Row(y int, row []byte) []byte {
	if y < 0 || y >= s.height {
		return nil
	}
	if len(row) < s.width {
		row = make([]byte, s.width)
	}
	offset := y * s.width
	copy(row, s.luminances[offset:offset+s.width])
	return row
}

// Matrix returns a copy of the luminance matrix.
func (s *PixelSource) Matrix() []byte {
	result := make([]byte, len(s.luminances))
	copy(result, s.luminances)
	return result
}

// Width returns the width of the image.
func (s *PixelSource) Width() int { return s.width }

// Height returns the height of the image.
func (s *PixelSource) Height() int { return s.height }

// CheckSize reports ErrImageTooLarge when width*height exceeds maxPixels.
func CheckSize(width, height, maxPixels int) error {
	if maxPixels <= 0 || width <= 0 || height <= 0 {
		return nil
	}
	// width > maxPixels/height is width*height > maxPixels without overflow.
	if width > maxPixels/height {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, width, height, maxPixels)
	}
	return nil
}
