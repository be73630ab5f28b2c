package qrsnap

import "errors"

// Every decode failure wraps exactly one of these; match with errors.Is.
var (
	// ErrImageTooLarge is returned when the pixel count exceeds the configured ceiling.
	ErrImageTooLarge = errors.New("image too large")

	// ErrInvalidBuffer is returned for non-positive dimensions or a sample
	// slice that is neither one nor four bytes per pixel.
	ErrInvalidBuffer = errors.New("invalid pixel buffer")

	// ErrNoFinderPatterns is returned when three consistent finder patterns
	// cannot be located.
	ErrNoFinderPatterns = errors.New("no finder patterns")

	// ErrSampleOutOfBounds is returned when a module centre maps outside the bitmap.
	ErrSampleOutOfBounds = errors.New("sample out of bounds")

	// ErrFormatInfoUnrecoverable is returned when neither format copy is
	// within correction distance.
	ErrFormatInfoUnrecoverable = errors.New("format information unrecoverable")

	// ErrMatrixTooSmall is returned for a module matrix that is not a valid QR size.
	ErrMatrixTooSmall = errors.New("module matrix too small")

	// ErrCorruptLayout is returned when the codeword count disagrees with the version.
	ErrCorruptLayout = errors.New("corrupt codeword layout")

	// ErrBlockUncorrectable is returned when a Reed-Solomon block has too many errors.
	ErrBlockUncorrectable = errors.New("block uncorrectable")

	// ErrSegmentDecode is returned for malformed data segments.
	ErrSegmentDecode = errors.New("segment decode error")
)
