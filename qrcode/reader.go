// Package qrcode runs the full recognition pipeline: binarize, detect,
// sample and decode.
package qrcode

import (
	"fmt"
	"math"

	"github.com/qrsnap/qrsnap"
	"github.com/qrsnap/qrsnap/binarizer"
	"github.com/qrsnap/qrsnap/bitutil"
	"github.com/qrsnap/qrsnap/qrcode/decoder"
	"github.com/qrsnap/qrsnap/qrcode/detector"
)

// Reader decodes QR codes from luminance sources. It holds only immutable
// configuration and is safe for concurrent use.
type Reader struct {
	opts qrsnap.Options
	dec  *decoder.Decoder
}

// NewReader creates a Reader. opts may be nil.
func NewReader(opts *qrsnap.Options) *Reader {
	o := qrsnap.ResolveOptions(opts)
	return &Reader{opts: o, dec: decoder.NewDecoder(&o)}
}

// Options returns the resolved options.
func (r *Reader) Options() qrsnap.Options {
	return r.opts
}

// Decode locates and decodes a QR code in src.
func (r *Reader) Decode(src qrsnap.LuminanceSource) (*qrsnap.Result, error) {
	if err := qrsnap.CheckSize(src.Width(), src.Height(), r.opts.MaxPixels); err != nil {
		return nil, err
	}
	matrix := binarizer.NewCells(src, r.opts.CellsPerSide).BlackMatrix()

	if r.opts.PureBarcode {
		bits, err := extractPureBits(matrix)
		if err == nil {
			dr, err := r.dec.Decode(bits)
			if err == nil {
				return newResult(dr, nil), nil
			}
			r.opts.Debugf("pure extraction failed to decode, falling back to detection: %v", err)
		} else {
			r.opts.Debugf("pure extraction failed, falling back to detection: %v", err)
		}
	}

	opts := r.opts
	det, err := detector.NewDetector(matrix, &opts).Detect()
	if err != nil {
		return nil, err
	}
	dr, err := r.dec.Decode(det.Bits)
	if err != nil {
		return nil, err
	}
	return newResult(dr, det.Points), nil
}

// Decode decodes the QR code in a width x height buffer holding either
// four samples per pixel (RGBA) or one luminance sample per pixel, using
// default options. It returns the payload bytes.
func Decode(width, height int, pixels []byte) ([]byte, error) {
	if err := qrsnap.CheckSize(width, height, qrsnap.DefaultMaxPixels); err != nil {
		return nil, err
	}
	src, err := qrsnap.NewPixelSource(width, height, pixels)
	if err != nil {
		return nil, err
	}
	res, err := NewReader(nil).Decode(src)
	if err != nil {
		return nil, err
	}
	return res.Bytes, nil
}

func newResult(dr *decoder.DecoderResult, points []qrsnap.ResultPoint) *qrsnap.Result {
	res := qrsnap.NewResult(dr.Text, dr.Bytes, dr.RawBytes, points)
	res.Version = dr.Version
	res.ECLevel = dr.ECLevel.String()
	res.Mask = dr.DataMask
	res.ErrorsCorrected = dr.ErrorsCorrected
	if len(dr.ByteSegments) > 0 {
		res.PutMetadata(qrsnap.MetadataByteSegments, dr.ByteSegments)
	}
	if dr.CharacterSet != "" {
		res.PutMetadata(qrsnap.MetadataCharacterSet, dr.CharacterSet)
	}
	if dr.HasStructuredAppend() {
		res.PutMetadata(qrsnap.MetadataStructuredAppendSequence, dr.StructuredAppendSequence)
		res.PutMetadata(qrsnap.MetadataStructuredAppendParity, dr.StructuredAppendParity)
	}
	res.PutMetadata(qrsnap.MetadataSymbologyIdentifier, fmt.Sprintf("]Q%d", dr.SymbologyModifier))
	return res
}

// extractPureBits reads a code that is unrotated, unskewed and alone on a
// light background, using the extent of its dark modules.
func extractPureBits(image *bitutil.BitMatrix) (*bitutil.BitMatrix, error) {
	left, top, ok := image.TopLeftOnBit()
	right, bottom, ok2 := image.BottomRightOnBit()
	if !ok || !ok2 {
		return nil, fmt.Errorf("%w: no dark pixels", qrsnap.ErrNoFinderPatterns)
	}

	moduleSize, err := pureModuleSize(image, left, top)
	if err != nil {
		return nil, err
	}
	if left >= right || top >= bottom {
		return nil, fmt.Errorf("%w: degenerate extent", qrsnap.ErrNoFinderPatterns)
	}
	if bottom-top != right-left {
		// The last dark pixel may not be in the last column.
		right = left + (bottom - top)
		if right >= image.Width() {
			return nil, fmt.Errorf("%w: symbol runs off the image", qrsnap.ErrNoFinderPatterns)
		}
	}

	dimension := int(math.Round(float64(right-left+1) / moduleSize))
	if dimension <= 0 || dimension != int(math.Round(float64(bottom-top+1)/moduleSize)) {
		return nil, fmt.Errorf("%w: extent is not square", qrsnap.ErrNoFinderPatterns)
	}

	nudge := int(moduleSize / 2.0)
	top += nudge
	left += nudge
	if over := left + int(float64(dimension-1)*moduleSize) - right; over > 0 {
		if over > nudge {
			return nil, fmt.Errorf("%w: column %d", qrsnap.ErrSampleOutOfBounds, right+over)
		}
		left -= over
	}
	if over := top + int(float64(dimension-1)*moduleSize) - bottom; over > 0 {
		if over > nudge {
			return nil, fmt.Errorf("%w: row %d", qrsnap.ErrSampleOutOfBounds, bottom+over)
		}
		top -= over
	}

	bits := bitutil.NewBitMatrix(dimension)
	for y := 0; y < dimension; y++ {
		py := top + int(float64(y)*moduleSize)
		for x := 0; x < dimension; x++ {
			if image.Get(left+int(float64(x)*moduleSize), py) {
				bits.Set(x, y)
			}
		}
	}
	return bits, nil
}

// pureModuleSize walks the diagonal of the top-left finder from its corner
// and measures the pattern width.
func pureModuleSize(image *bitutil.BitMatrix, left, top int) (float64, error) {
	width, height := image.Width(), image.Height()
	x, y := left, top
	dark := true
	transitions := 0
	for x < width && y < height {
		if dark != image.Get(x, y) {
			transitions++
			if transitions == 5 {
				break
			}
			dark = !dark
		}
		x++
		y++
	}
	if x == width || y == height {
		return 0, fmt.Errorf("%w: finder diagonal runs off the image", qrsnap.ErrNoFinderPatterns)
	}
	return float64(x-left) / 7.0, nil
}
