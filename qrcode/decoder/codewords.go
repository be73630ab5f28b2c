package decoder

import (
	"fmt"

	"github.com/qrsnap/qrsnap"
	"github.com/qrsnap/qrsnap/bitutil"
)

// parsedMatrix is everything read from the module matrix before error correction.
type parsedMatrix struct {
	version   *Version
	format    FormatInformation
	codewords []byte
}

// parseMatrix reads format, version and codewords from a sampled matrix.
// m is not modified.
func parseMatrix(m *bitutil.BitMatrix, opts *qrsnap.Options) (*parsedMatrix, error) {
	dim := m.Height()
	if m.Width() != dim {
		return nil, fmt.Errorf("%w: %dx%d matrix is not square", qrsnap.ErrMatrixTooSmall, m.Width(), dim)
	}
	version, err := VersionForDimension(dim)
	if err != nil {
		return nil, err
	}
	format, err := ReadFormatInformation(m)
	if err != nil {
		return nil, err
	}
	if format.Distance > 0 {
		opts.Debugf("format information corrected %d bits", format.Distance)
	}
	if version.Number >= 7 {
		checkVersionBlocks(m, version.Number, opts)
	}

	function := version.BuildFunctionPattern()
	codewords := readCodewords(unmask(m, format.DataMask, function), function)
	if len(codewords) != version.TotalCodewords {
		return nil, fmt.Errorf("%w: read %d codewords, version %d holds %d",
			qrsnap.ErrCorruptLayout, len(codewords), version.Number, version.TotalCodewords)
	}
	return &parsedMatrix{version: version, format: format, codewords: codewords}, nil
}

// checkVersionBlocks compares both version blocks with the size-derived
// version. The size always wins; a disagreement is only logged.
func checkVersionBlocks(m *bitutil.BitMatrix, number int, opts *qrsnap.Options) {
	topRight, bottomLeft := readVersionBlocks(m)
	for _, raw := range []int{topRight, bottomLeft} {
		if n, _, ok := DecodeVersionBits(raw); ok && n == number {
			return
		}
	}
	opts.Warnf("version blocks %#05x/%#05x disagree with size-derived version %d", topRight, bottomLeft, number)
}

// readCodewords walks the data modules in zig-zag order: column pairs from
// the right, skipping the vertical timing column, alternately upwards and
// downwards, right module before left.
func readCodewords(m, function *bitutil.BitMatrix) []byte {
	dim := m.Height()
	var out []byte
	current, nbits := 0, 0
	upward := true
	for right := dim - 1; right > 0; right -= 2 {
		if right == 6 {
			right--
		}
		for k := 0; k < dim; k++ {
			y := k
			if upward {
				y = dim - 1 - k
			}
			for x := right; x > right-2; x-- {
				if function.Get(x, y) {
					continue
				}
				current <<= 1
				if m.Get(x, y) {
					current |= 1
				}
				nbits++
				if nbits == 8 {
					out = append(out, byte(current))
					current, nbits = 0, 0
				}
			}
		}
		upward = !upward
	}
	// Remainder bits past the last full codeword are dropped.
	return out
}
