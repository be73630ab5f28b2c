// Package decoder turns a sampled QR module matrix into its payload.
package decoder

import "fmt"

// ECLevel is one of the four error-correction levels, ordered by strength.
type ECLevel int

const (
	ECLevelL ECLevel = iota
	ECLevelM
	ECLevelQ
	ECLevelH
)

// ecLevelForBits maps the 2-bit format field to a level.
var ecLevelForBits = [4]ECLevel{ECLevelM, ECLevelL, ECLevelH, ECLevelQ}

// Bits returns the 2-bit format field value of l.
func (l ECLevel) Bits() int {
	for bits, level := range ecLevelForBits {
		if level == l {
			return bits
		}
	}
	panic(fmt.Sprintf("decoder: invalid EC level %d", int(l)))
}

// ECLevelForBits returns the level encoded by the 2-bit format field.
func ECLevelForBits(bits int) (ECLevel, error) {
	if bits < 0 || bits >= len(ecLevelForBits) {
		return 0, fmt.Errorf("decoder: invalid EC level bits %d", bits)
	}
	return ecLevelForBits[bits], nil
}

func (l ECLevel) String() string {
	switch l {
	case ECLevelL:
		return "L"
	case ECLevelM:
		return "M"
	case ECLevelQ:
		return "Q"
	case ECLevelH:
		return "H"
	}
	return fmt.Sprintf("ECLevel(%d)", int(l))
}

// ParseECLevel parses "L", "M", "Q" or "H".
func ParseECLevel(s string) (ECLevel, error) {
	for l := ECLevelL; l <= ECLevelH; l++ {
		if l.String() == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("decoder: unknown EC level %q", s)
}
