package decoder

import (
	"fmt"

	"github.com/qrsnap/qrsnap"
	"github.com/qrsnap/qrsnap/bitutil"
	"github.com/qrsnap/qrsnap/reedsolomon"
)

// Decoder decodes sampled module matrices. It holds no per-call state and is
// safe for concurrent use.
type Decoder struct {
	rs   *reedsolomon.Decoder
	opts *qrsnap.Options
}

// NewDecoder creates a Decoder. opts may be nil.
func NewDecoder(opts *qrsnap.Options) *Decoder {
	o := qrsnap.ResolveOptions(opts)
	return &Decoder{
		rs:   reedsolomon.NewDecoder(reedsolomon.QRField()),
		opts: &o,
	}
}

// Decode reads, corrects and interprets a square module matrix. bits is
// not modified.
func (d *Decoder) Decode(bits *bitutil.BitMatrix) (*DecoderResult, error) {
	parsed, err := parseMatrix(bits, d.opts)
	if err != nil {
		return nil, err
	}
	level := parsed.format.ECLevel
	blocks, err := SplitBlocks(parsed.codewords, parsed.version, level)
	if err != nil {
		return nil, err
	}

	var data []byte
	corrected := 0
	for i, block := range blocks {
		n, err := d.correct(block)
		if err != nil {
			return nil, fmt.Errorf("%w: block %d of %d: %v", qrsnap.ErrBlockUncorrectable, i, len(blocks), err)
		}
		corrected += n
		data = append(data, block.Codewords[:block.NumDataCodewords]...)
	}
	if corrected > 0 {
		d.opts.Debugf("corrected %d codewords in %d blocks", corrected, len(blocks))
	}

	result, err := decodeBitStream(data, parsed.version.Number, d.opts.CharacterSet)
	if err != nil {
		return nil, err
	}
	result.Version = parsed.version.Number
	result.ECLevel = level
	result.DataMask = parsed.format.DataMask
	result.ErrorsCorrected = corrected
	return result, nil
}

// correct repairs block in place and returns the number of corrected codewords.
func (d *Decoder) correct(block DataBlock) (int, error) {
	received := make([]int, len(block.Codewords))
	for i, c := range block.Codewords {
		received[i] = int(c)
	}
	n, err := d.rs.Decode(received, len(received)-block.NumDataCodewords)
	if err != nil {
		return 0, err
	}
	for i := range block.Codewords {
		block.Codewords[i] = byte(received[i])
	}
	return n, nil
}
