// Package qrtest builds QR symbols and pixel buffers for tests.
package qrtest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/qrsnap/qrsnap/bitutil"
	"github.com/qrsnap/qrsnap/qrcode/decoder"
	"github.com/qrsnap/qrsnap/reedsolomon"
)

// ErrTooLong is returned when segments do not fit the requested version.
var ErrTooLong = errors.New("qrtest: data too long")

const alphanumericTable = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"

// Segment is one data segment to encode.
type Segment struct {
	Mode decoder.Mode
	// Data is the digits, alphanumeric characters or bytes of the segment.
	// For ECI segments it is unused.
	Data  []byte
	Value int
}

// Numeric returns a numeric segment of digits.
func Numeric(digits string) Segment {
	return Segment{Mode: decoder.ModeNumeric, Data: []byte(digits)}
}

// Alphanumeric returns an alphanumeric segment.
func Alphanumeric(s string) Segment {
	return Segment{Mode: decoder.ModeAlphanumeric, Data: []byte(s)}
}

// Bytes returns a byte segment.
func Bytes(b []byte) Segment {
	return Segment{Mode: decoder.ModeByte, Data: b}
}

// Kanji returns a kanji segment from Shift_JIS double-byte characters.
func Kanji(sjis []byte) Segment {
	return Segment{Mode: decoder.ModeKanji, Data: sjis}
}

// ECI returns an ECI designator segment.
func ECI(value int) Segment {
	return Segment{Mode: decoder.ModeECI, Value: value}
}

func (s Segment) count() int {
	if s.Mode == decoder.ModeKanji {
		return len(s.Data) / 2
	}
	return len(s.Data)
}

func (s Segment) appendTo(w *bitutil.BitWriter, version int) error {
	w.AppendBits(uint32(s.Mode), 4)
	if s.Mode == decoder.ModeECI {
		switch {
		case s.Value < 1<<7:
			w.AppendBits(uint32(s.Value), 8)
		case s.Value < 1<<14:
			w.AppendBits(0x8000|uint32(s.Value), 16)
		default:
			w.AppendBits(0xC00000|uint32(s.Value), 24)
		}
		return nil
	}
	w.AppendBits(uint32(s.count()), s.Mode.CountBits(version))

	switch s.Mode {
	case decoder.ModeNumeric:
		d := s.Data
		for len(d) > 0 {
			n := min(3, len(d))
			v := 0
			for _, c := range d[:n] {
				if c < '0' || c > '9' {
					return fmt.Errorf("qrtest: %q is not a digit", c)
				}
				v = v*10 + int(c-'0')
			}
			w.AppendBits(uint32(v), 3*n+1)
			d = d[n:]
		}
	case decoder.ModeAlphanumeric:
		d := s.Data
		for len(d) > 0 {
			a := strings.IndexByte(alphanumericTable, d[0])
			if a < 0 {
				return fmt.Errorf("qrtest: %q is not alphanumeric", d[0])
			}
			if len(d) == 1 {
				w.AppendBits(uint32(a), 6)
				break
			}
			b := strings.IndexByte(alphanumericTable, d[1])
			if b < 0 {
				return fmt.Errorf("qrtest: %q is not alphanumeric", d[1])
			}
			w.AppendBits(uint32(45*a+b), 11)
			d = d[2:]
		}
	case decoder.ModeByte:
		for _, c := range s.Data {
			w.AppendBits(uint32(c), 8)
		}
	case decoder.ModeKanji:
		for i := 0; i+1 < len(s.Data); i += 2 {
			code := int(s.Data[i])<<8 | int(s.Data[i+1])
			switch {
			case code >= 0x8140 && code <= 0x9FFC:
				code -= 0x8140
			case code >= 0xE040 && code <= 0xEBBF:
				code -= 0xC140
			default:
				return fmt.Errorf("qrtest: %#x is not a kanji code", code)
			}
			w.AppendBits(uint32((code>>8)*0xC0+(code&0xFF)), 13)
		}
	default:
		return fmt.Errorf("qrtest: cannot encode mode %v", s.Mode)
	}
	return nil
}

// Symbol is an encoded QR symbol before module placement.
type Symbol struct {
	Version *decoder.Version
	Level   decoder.ECLevel
	Mask    int
	// Blocks holds each block's data codewords followed by its EC codewords.
	Blocks  [][]byte
	numData []int
}

// Encode builds a symbol. A version of 0 picks the smallest that fits.
func Encode(version int, level decoder.ECLevel, mask int, segments ...Segment) (*Symbol, error) {
	if mask < 0 || mask > 7 {
		return nil, fmt.Errorf("qrtest: mask %d", mask)
	}
	if version == 0 {
		for n := 1; n <= 40; n++ {
			sym, err := Encode(n, level, mask, segments...)
			if err == nil {
				return sym, nil
			}
			if !errors.Is(err, ErrTooLong) {
				return nil, err
			}
		}
		return nil, ErrTooLong
	}
	v, err := decoder.VersionForNumber(version)
	if err != nil {
		return nil, err
	}

	var w bitutil.BitWriter
	for _, s := range segments {
		if err := s.appendTo(&w, version); err != nil {
			return nil, err
		}
	}
	ec := v.ECBlocks(level)
	capacity := 8 * ec.DataCodewords()
	if w.Size() > capacity {
		return nil, fmt.Errorf("%w: %d bits for %d", ErrTooLong, w.Size(), capacity)
	}
	for i := 0; i < 4 && w.Size() < capacity; i++ {
		w.AppendBit(false)
	}
	for w.Size()%8 != 0 {
		w.AppendBit(false)
	}
	for pad := 0; w.SizeInBytes() < ec.DataCodewords(); pad++ {
		w.AppendBits([]uint32{0xEC, 0x11}[pad%2], 8)
	}

	sym := &Symbol{Version: v, Level: level, Mask: mask}
	data := w.Bytes()
	encoder := reedsolomon.NewEncoder(reedsolomon.QRField())
	for _, g := range ec.Groups {
		for i := 0; i < g.Count; i++ {
			block := make([]int, g.DataCodewords+ec.ECCodewordsPerBlock)
			for k := 0; k < g.DataCodewords; k++ {
				block[k] = int(data[k])
			}
			data = data[g.DataCodewords:]
			encoder.Encode(block, ec.ECCodewordsPerBlock)
			out := make([]byte, len(block))
			for k, c := range block {
				out[k] = byte(c)
			}
			sym.Blocks = append(sym.Blocks, out)
			sym.numData = append(sym.numData, g.DataCodewords)
		}
	}
	return sym, nil
}

// MustEncode is Encode that panics on error.
func MustEncode(version int, level decoder.ECLevel, mask int, segments ...Segment) *Symbol {
	sym, err := Encode(version, level, mask, segments...)
	if err != nil {
		panic(err)
	}
	return sym
}

// Codewords returns the interleaved codeword sequence.
func (s *Symbol) Codewords() []byte {
	var out []byte
	maxData := 0
	for _, n := range s.numData {
		maxData = max(maxData, n)
	}
	for i := 0; i < maxData; i++ {
		for b, block := range s.Blocks {
			if i < s.numData[b] {
				out = append(out, block[i])
			}
		}
	}
	ecLen := len(s.Blocks[0]) - s.numData[0]
	for i := 0; i < ecLen; i++ {
		for b, block := range s.Blocks {
			out = append(out, block[s.numData[b]+i])
		}
	}
	return out
}

// Corrupt inverts count codewords of block, spread evenly over the block.
func (s *Symbol) Corrupt(block, count int) {
	b := s.Blocks[block]
	step := max(1, len(b)/max(1, count))
	for i := 0; i < count; i++ {
		b[(i*step)%len(b)] ^= 0xFF
	}
}
