// Package qrsnap recognises and decodes QR codes in raw pixel buffers.
package qrsnap

import (
	"math"
	"time"
)

// ResultMetadataKey identifies optional metadata about a decode.
type ResultMetadataKey int

const (
	MetadataByteSegments ResultMetadataKey = iota
	MetadataStructuredAppendSequence
	MetadataStructuredAppendParity
	MetadataSymbologyIdentifier
	MetadataCharacterSet
)

// ResultPoint represents a point of interest in an image.
type ResultPoint struct {
	X, Y float64
}

// Distance returns the distance between two points.
func Distance(a, b ResultPoint) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// CrossProductZ computes the z component of (b-a) x (c-a).
func CrossProductZ(a, b, c ResultPoint) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// OrderBestPatterns orders three finder centres as top-left, top-right and
// bottom-left. The top-left is the vertex opposite the longest side; the
// remaining two are told apart by the sign of the cross product, with image
// y growing downwards.
func OrderBestPatterns(patterns [3]ResultPoint) (topLeft, topRight, bottomLeft ResultPoint) {
	d01 := Distance(patterns[0], patterns[1])
	d12 := Distance(patterns[1], patterns[2])
	d02 := Distance(patterns[0], patterns[2])

	var a, b, c ResultPoint
	switch {
	case d12 >= d01 && d12 >= d02:
		a, b, c = patterns[0], patterns[1], patterns[2]
	case d02 >= d01 && d02 >= d12:
		a, b, c = patterns[1], patterns[0], patterns[2]
	default:
		a, b, c = patterns[2], patterns[0], patterns[1]
	}
	if CrossProductZ(a, b, c) < 0 {
		b, c = c, b
	}
	return a, b, c
}

// Result encapsulates a decoded QR code.
type Result struct {
	// Text is the payload rendered as UTF-8.
	Text string
	// Bytes is the payload: byte segments verbatim, numeric and alphanumeric
	// as ASCII, kanji as UTF-8.
	Bytes []byte
	// RawBytes holds the corrected data codewords.
	RawBytes []byte

	Version         int
	ECLevel         string
	Mask            int
	ErrorsCorrected int
	Points          []ResultPoint
	Metadata        map[ResultMetadataKey]any
	Timestamp       time.Time
}

// NewResult creates a Result with an empty metadata map.
func NewResult(text string, payload, rawBytes []byte, points []ResultPoint) *Result {
	return &Result{
		Text:      text,
		Bytes:     payload,
		RawBytes:  rawBytes,
		Points:    points,
		Metadata:  make(map[ResultMetadataKey]any),
		Timestamp: time.Now(),
	}
}

// PutMetadata adds a metadata key/value pair.
func (r *Result) PutMetadata(key ResultMetadataKey, value any) {
	r.Metadata[key] = value
}
