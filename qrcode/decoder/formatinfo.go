package decoder

import (
	"fmt"
	"math/bits"

	"github.com/qrsnap/qrsnap"
	"github.com/qrsnap/qrsnap/bitutil"
)

const (
	formatMask        = 0x5412
	formatGenerator   = 0x537
	maxFormatDistance = 3
)

// FormatInformation is the EC level and data mask read from a symbol.
// Distance is the number of bit errors in the accepted copy.
type FormatInformation struct {
	ECLevel  ECLevel
	DataMask int
	Distance int
}

// formatCodewords holds the 32 masked 15-bit format codewords indexed by
// their 5-bit payload (EC bits << 3 | mask).
var formatCodewords = func() [32]int {
	var table [32]int
	for data := range table {
		rem := data
		for i := 0; i < 10; i++ {
			rem = (rem << 1) ^ ((rem >> 9) * formatGenerator)
		}
		table[data] = (data<<10 | rem) ^ formatMask
	}
	return table
}()

// FormatBits returns the masked 15-bit format codeword for level and mask.
func FormatBits(level ECLevel, mask int) int {
	return formatCodewords[level.Bits()<<3|mask]
}

// decodeFormatBits finds the format codeword nearest to raw.
func decodeFormatBits(raw int) (FormatInformation, bool) {
	best, bestDistance := 0, 16
	for data, codeword := range formatCodewords {
		if d := bits.OnesCount(uint(raw ^ codeword)); d < bestDistance {
			best, bestDistance = data, d
		}
	}
	if bestDistance > maxFormatDistance {
		return FormatInformation{}, false
	}
	return FormatInformation{
		ECLevel:  ecLevelForBits[best>>3],
		DataMask: best & 0x07,
		Distance: bestDistance,
	}, true
}

// readFormatCopies reads both 15-bit format copies, most significant bit first.
func readFormatCopies(m *bitutil.BitMatrix) (first, second int) {
	dim := m.Height()
	read := func(acc, x, y int) int {
		acc <<= 1
		if m.Get(x, y) {
			acc |= 1
		}
		return acc
	}

	for x := 0; x < 6; x++ {
		first = read(first, x, 8)
	}
	first = read(first, 7, 8)
	first = read(first, 8, 8)
	first = read(first, 8, 7)
	for y := 5; y >= 0; y-- {
		first = read(first, 8, y)
	}

	for y := dim - 1; y >= dim-7; y-- {
		second = read(second, 8, y)
	}
	for x := dim - 8; x < dim; x++ {
		second = read(second, x, 8)
	}
	return first, second
}

// ReadFormatInformation decodes each format copy on its own and keeps the
// one with fewer bit errors, preferring the copy beside the top-left finder.
func ReadFormatInformation(m *bitutil.BitMatrix) (FormatInformation, error) {
	first, second := readFormatCopies(m)
	f1, ok1 := decodeFormatBits(first)
	f2, ok2 := decodeFormatBits(second)
	switch {
	case ok1 && (!ok2 || f1.Distance <= f2.Distance):
		return f1, nil
	case ok2:
		return f2, nil
	}
	return FormatInformation{}, fmt.Errorf("%w: copies %#04x and %#04x", qrsnap.ErrFormatInfoUnrecoverable, first, second)
}
