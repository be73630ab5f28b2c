package charset

import (
	"bytes"
	"unicode/utf8"
)

// Guess picks the most plausible character set for a byte segment without
// an ECI: UTF-8 when the bytes are valid multi-byte UTF-8, Shift_JIS when
// they look like Japanese text, ISO-8859-1 otherwise.
func Guess(b []byte) *Charset {
	if len(b) >= 2 && ((b[0] == 0xFE && b[1] == 0xFF) || (b[0] == 0xFF && b[1] == 0xFE)) {
		return UTF16BE
	}
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) && utf8.Valid(b) {
		return UTF8
	}

	ascii := true
	for _, c := range b {
		if c >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return ISO8859_1
	}
	if utf8.Valid(b) {
		return UTF8
	}

	sjis := scanShiftJIS(b)
	latin1 := true
	highOther := 0
	for _, c := range b {
		switch {
		case c > 0x7F && c < 0xA0:
			latin1 = false
		case c > 0x9F && (c < 0xC0 || c == 0xD7 || c == 0xF7):
			highOther++
		}
	}

	switch {
	case sjis.valid && (sjis.maxKatakanaRun >= 3 || sjis.maxDoubleRun >= 3):
		return ShiftJIS
	case latin1 && sjis.valid:
		if (sjis.maxKatakanaRun == 2 && sjis.katakana == 2) || highOther*10 >= len(b) {
			return ShiftJIS
		}
		return ISO8859_1
	case latin1:
		return ISO8859_1
	case sjis.valid:
		return ShiftJIS
	}
	return UTF8
}

type sjisStats struct {
	valid          bool
	katakana       int
	maxKatakanaRun int
	maxDoubleRun   int
}

// scanShiftJIS checks lead/trail byte ranges and measures runs of
// half-width katakana and double-byte characters.
func scanShiftJIS(b []byte) sjisStats {
	s := sjisStats{valid: true}
	trail := false
	katakanaRun, doubleRun := 0, 0
	for _, c := range b {
		switch {
		case trail:
			if c < 0x40 || c == 0x7F || c > 0xFC {
				return sjisStats{}
			}
			trail = false
		case c == 0x80 || c == 0xA0 || c > 0xEF:
			return sjisStats{}
		case c > 0xA0 && c < 0xE0:
			s.katakana++
			doubleRun = 0
			katakanaRun++
			s.maxKatakanaRun = max(s.maxKatakanaRun, katakanaRun)
		case c > 0x7F:
			trail = true
			katakanaRun = 0
			doubleRun++
			s.maxDoubleRun = max(s.maxDoubleRun, doubleRun)
		default:
			katakanaRun, doubleRun = 0, 0
		}
	}
	if trail {
		return sjisStats{}
	}
	return s
}

// DecodeText converts a byte segment to UTF-8 using the named character set,
// or a guess when hint is empty or unknown.
func DecodeText(b []byte, hint string) (string, *Charset) {
	c := ForName(hint)
	if c == nil {
		c = Guess(b)
	}
	text, err := c.Decode(b)
	if err != nil {
		return string(b), c
	}
	return text, c
}
