package decoder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/qrsnap/qrsnap"
	"github.com/qrsnap/qrsnap/bitutil"
	"github.com/qrsnap/qrsnap/charset"
)

const alphanumericTable = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"

const gb2312Subset = 1

// Segment is one decoded data segment. Data holds the segment's contribution
// to the payload bytes.
type Segment struct {
	Mode  Mode
	Count int
	Data  []byte
}

// streamState accumulates output while walking the bit stream.
type streamState struct {
	text     strings.Builder
	payload  []byte
	segments []Segment
	byteSegs [][]byte

	eci         *charset.Charset
	hint        string
	lastCharset string
	fnc1        bool
	fnc1First   bool
	fnc1Second  bool
	saSequence  int
	saParity    int
}

func segmentError(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{qrsnap.ErrSegmentDecode}, args...)...)
}

// decodeBitStream decodes the data codewords of a symbol. characterSet names
// the encoding for byte segments not covered by an ECI; empty means guess.
func decodeBitStream(data []byte, version int, characterSet string) (*DecoderResult, error) {
	bs := bitutil.NewBitSource(data)
	st := &streamState{hint: characterSet, saSequence: -1, saParity: -1}

	for bs.Available() >= 4 {
		bits, _ := bs.ReadBits(4)
		mode, err := modeForBits(bits)
		if err != nil {
			return nil, err
		}
		if mode == ModeTerminator {
			break
		}
		if err := st.segment(bs, mode, version); err != nil {
			return nil, fmt.Errorf("%v segment: %w", mode, err)
		}
	}

	return &DecoderResult{
		RawBytes:                 data,
		Bytes:                    st.payload,
		Text:                     st.text.String(),
		Segments:                 st.segments,
		ByteSegments:             st.byteSegs,
		CharacterSet:             st.lastCharset,
		StructuredAppendSequence: st.saSequence,
		StructuredAppendParity:   st.saParity,
		SymbologyModifier:        st.symbologyModifier(),
	}, nil
}

func (st *streamState) segment(bs *bitutil.BitSource, mode Mode, version int) error {
	switch mode {
	case ModeFNC1FirstPosition:
		st.fnc1, st.fnc1First = true, true
		return nil
	case ModeFNC1SecondPosition:
		st.fnc1, st.fnc1Second = true, true
		return nil
	case ModeStructuredAppend:
		if bs.Available() < 16 {
			return segmentError("structured append header truncated")
		}
		st.saSequence, _ = bs.ReadBits(8)
		st.saParity, _ = bs.ReadBits(8)
		return nil
	case ModeECI:
		value, err := readECIValue(bs)
		if err != nil {
			return err
		}
		c, err := charset.ForECI(value)
		if err != nil || c == nil {
			return segmentError("unsupported ECI %d", value)
		}
		st.eci = c
		return nil
	}

	var subset int
	if mode == ModeHanzi {
		if bs.Available() < 4 {
			return segmentError("hanzi subset truncated")
		}
		subset, _ = bs.ReadBits(4)
	}
	width := mode.CountBits(version)
	if bs.Available() < width {
		return segmentError("character count truncated")
	}
	count, _ := bs.ReadBits(width)

	var (
		data []byte
		err  error
	)
	switch mode {
	case ModeNumeric:
		data, err = readNumeric(bs, count)
		st.text.Write(data)
	case ModeAlphanumeric:
		data, err = readAlphanumeric(bs, count)
		if err == nil && st.fnc1 {
			data = applyFNC1(data)
		}
		st.text.Write(data)
	case ModeByte:
		data, err = readBytes(bs, count)
		if err == nil {
			st.byteSegs = append(st.byteSegs, data)
			st.text.WriteString(st.decodeByteText(data))
		}
	case ModeKanji:
		data, err = readDoubleByte(bs, count, kanjiToShiftJIS)
		if err == nil {
			data, err = toUTF8(data, charset.ShiftJIS)
			st.text.Write(data)
		}
	case ModeHanzi:
		if subset != gb2312Subset {
			return segmentError("hanzi subset %d", subset)
		}
		data, err = readDoubleByte(bs, count, hanziToGB2312)
		if err == nil {
			data, err = toUTF8(data, charset.GB18030)
			st.text.Write(data)
		}
	default:
		return segmentError("mode %v", mode)
	}
	if err != nil {
		return err
	}
	st.payload = append(st.payload, data...)
	st.segments = append(st.segments, Segment{Mode: mode, Count: count, Data: data})
	return nil
}

func (st *streamState) decodeByteText(b []byte) string {
	if st.eci != nil {
		st.lastCharset = st.eci.Name
		if text, err := st.eci.Decode(b); err == nil {
			return text
		}
		return string(b)
	}
	text, c := charset.DecodeText(b, st.hint)
	st.lastCharset = c.Name
	return text
}

// symbologyModifier is the AIM identifier modifier: ]Q1..]Q6.
func (st *streamState) symbologyModifier() int {
	m := 1
	switch {
	case st.fnc1First:
		m = 3
	case st.fnc1Second:
		m = 5
	}
	if st.eci != nil {
		m++
	}
	return m
}

func readNumeric(bs *bitutil.BitSource, count int) ([]byte, error) {
	out := make([]byte, 0, count)
	for count > 0 {
		digits, width, limit := 3, 10, 1000
		switch count {
		case 2:
			digits, width, limit = 2, 7, 100
		case 1:
			digits, width, limit = 1, 4, 10
		}
		if bs.Available() < width {
			return nil, segmentError("numeric data truncated")
		}
		v, _ := bs.ReadBits(width)
		if v >= limit {
			return nil, segmentError("numeric group %d out of range", v)
		}
		s := strconv.Itoa(v)
		for len(s) < digits {
			s = "0" + s
		}
		out = append(out, s...)
		count -= digits
	}
	return out, nil
}

func readAlphanumeric(bs *bitutil.BitSource, count int) ([]byte, error) {
	out := make([]byte, 0, count)
	for count >= 2 {
		if bs.Available() < 11 {
			return nil, segmentError("alphanumeric data truncated")
		}
		v, _ := bs.ReadBits(11)
		if v >= 45*45 {
			return nil, segmentError("alphanumeric pair %d out of range", v)
		}
		out = append(out, alphanumericTable[v/45], alphanumericTable[v%45])
		count -= 2
	}
	if count == 1 {
		if bs.Available() < 6 {
			return nil, segmentError("alphanumeric data truncated")
		}
		v, _ := bs.ReadBits(6)
		if v >= 45 {
			return nil, segmentError("alphanumeric value %d out of range", v)
		}
		out = append(out, alphanumericTable[v])
	}
	return out, nil
}

// applyFNC1 maps "%" to GS and "%%" to a literal "%".
func applyFNC1(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '%' {
			out = append(out, b[i])
			continue
		}
		if i+1 < len(b) && b[i+1] == '%' {
			out = append(out, '%')
			i++
		} else {
			out = append(out, 0x1D)
		}
	}
	return out
}

func readBytes(bs *bitutil.BitSource, count int) ([]byte, error) {
	if 8*count > bs.Available() {
		return nil, segmentError("%d bytes declared, %d bits left", count, bs.Available())
	}
	out := make([]byte, count)
	for i := range out {
		v, _ := bs.ReadBits(8)
		out[i] = byte(v)
	}
	return out, nil
}

// readDoubleByte reads count 13-bit characters and expands each to two bytes.
func readDoubleByte(bs *bitutil.BitSource, count int, expand func(int) int) ([]byte, error) {
	if 13*count > bs.Available() {
		return nil, segmentError("%d characters declared, %d bits left", count, bs.Available())
	}
	out := make([]byte, 0, 2*count)
	for i := 0; i < count; i++ {
		v, _ := bs.ReadBits(13)
		code := expand(v)
		out = append(out, byte(code>>8), byte(code))
	}
	return out, nil
}

func kanjiToShiftJIS(v int) int {
	code := (v/0xC0)<<8 | v%0xC0
	if code < 0x1F00 {
		return code + 0x8140
	}
	return code + 0xC140
}

func hanziToGB2312(v int) int {
	code := (v/0x60)<<8 | v%0x60
	if code < 0xA00 {
		return code + 0xA1A1
	}
	return code + 0xA6A1
}

func toUTF8(b []byte, c *charset.Charset) ([]byte, error) {
	text, err := c.Decode(b)
	if err != nil {
		return nil, segmentError("%v", err)
	}
	return []byte(text), nil
}

func readECIValue(bs *bitutil.BitSource) (int, error) {
	if bs.Available() < 8 {
		return 0, segmentError("ECI designator truncated")
	}
	first, _ := bs.ReadBits(8)
	var extra int
	switch {
	case first&0x80 == 0:
		return first, nil
	case first&0xC0 == 0x80:
		extra = 8
		first &= 0x3F
	case first&0xE0 == 0xC0:
		extra = 16
		first &= 0x1F
	default:
		return 0, segmentError("ECI designator %#x", first)
	}
	if bs.Available() < extra {
		return 0, segmentError("ECI designator truncated")
	}
	rest, _ := bs.ReadBits(extra)
	return first<<extra | rest, nil
}
