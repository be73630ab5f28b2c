package decoder

import (
	"fmt"

	"github.com/qrsnap/qrsnap"
)

// Mode is the 4-bit segment mode indicator.
type Mode int

const (
	ModeTerminator         Mode = 0x0
	ModeNumeric            Mode = 0x1
	ModeAlphanumeric       Mode = 0x2
	ModeStructuredAppend   Mode = 0x3
	ModeByte               Mode = 0x4
	ModeFNC1FirstPosition  Mode = 0x5
	ModeECI                Mode = 0x7
	ModeKanji              Mode = 0x8
	ModeFNC1SecondPosition Mode = 0x9
	ModeHanzi              Mode = 0xD
)

// countBits holds character count widths for versions 1-9, 10-26 and 27-40.
var countBits = map[Mode][3]int{
	ModeNumeric:      {10, 12, 14},
	ModeAlphanumeric: {9, 11, 13},
	ModeByte:         {8, 16, 16},
	ModeKanji:        {8, 10, 12},
	ModeHanzi:        {8, 10, 12},
}

func modeForBits(bits int) (Mode, error) {
	switch m := Mode(bits); m {
	case ModeTerminator, ModeNumeric, ModeAlphanumeric, ModeStructuredAppend, ModeByte,
		ModeFNC1FirstPosition, ModeECI, ModeKanji, ModeFNC1SecondPosition, ModeHanzi:
		return m, nil
	}
	return 0, fmt.Errorf("%w: unknown mode %#x", qrsnap.ErrSegmentDecode, bits)
}

// CountBits returns the width of the character count field of m in version.
// Modes without a count return 0.
func (m Mode) CountBits(version int) int {
	widths, ok := countBits[m]
	if !ok {
		return 0
	}
	switch {
	case version <= 9:
		return widths[0]
	case version <= 26:
		return widths[1]
	}
	return widths[2]
}

func (m Mode) String() string {
	switch m {
	case ModeTerminator:
		return "terminator"
	case ModeNumeric:
		return "numeric"
	case ModeAlphanumeric:
		return "alphanumeric"
	case ModeStructuredAppend:
		return "structured-append"
	case ModeByte:
		return "byte"
	case ModeFNC1FirstPosition:
		return "fnc1-first"
	case ModeECI:
		return "eci"
	case ModeKanji:
		return "kanji"
	case ModeFNC1SecondPosition:
		return "fnc1-second"
	case ModeHanzi:
		return "hanzi"
	}
	return fmt.Sprintf("Mode(%#x)", int(m))
}
