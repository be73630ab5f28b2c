// Package charset maps ECI designators and names to text encodings.
package charset

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// ErrUnknownECI is returned for an ECI value outside the character set range.
var ErrUnknownECI = errors.New("charset: unknown ECI")

// Charset is a character set reachable through an ECI designator.
type Charset struct {
	Name     string
	Values   []int
	Aliases  []string
	Encoding encoding.Encoding
}

// Decode converts b to UTF-8.
func (c *Charset) Decode(b []byte) (string, error) {
	out, err := c.Encoding.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("charset: decode %s: %w", c.Name, err)
	}
	return string(out), nil
}

func (c *Charset) String() string { return c.Name }

var (
	CP437     = &Charset{"Cp437", []int{0, 2}, []string{"IBM437"}, charmap.CodePage437}
	ISO8859_1 = &Charset{"ISO-8859-1", []int{1, 3}, []string{"ISO8859_1", "latin1"}, charmap.ISO8859_1}
	ShiftJIS  = &Charset{"Shift_JIS", []int{20}, []string{"SJIS"}, japanese.ShiftJIS}
	UTF16BE   = &Charset{"UTF-16BE", []int{25}, []string{"UnicodeBig", "UnicodeBigUnmarked"}, unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)}
	UTF8      = &Charset{"UTF-8", []int{26}, []string{"UTF8"}, unicode.UTF8}
	ASCII     = &Charset{"US-ASCII", []int{27, 170}, []string{"ASCII"}, unicode.UTF8}
	GB18030   = &Charset{"GB18030", []int{29}, []string{"GB2312", "EUC_CN", "GBK"}, simplifiedchinese.GB18030}
)

var all = []*Charset{
	CP437,
	ISO8859_1,
	{"ISO-8859-2", []int{4}, nil, charmap.ISO8859_2},
	{"ISO-8859-3", []int{5}, nil, charmap.ISO8859_3},
	{"ISO-8859-4", []int{6}, nil, charmap.ISO8859_4},
	{"ISO-8859-5", []int{7}, nil, charmap.ISO8859_5},
	{"ISO-8859-6", []int{8}, nil, charmap.ISO8859_6},
	{"ISO-8859-7", []int{9}, nil, charmap.ISO8859_7},
	{"ISO-8859-8", []int{10}, nil, charmap.ISO8859_8},
	{"ISO-8859-9", []int{11}, nil, charmap.ISO8859_9},
	{"ISO-8859-10", []int{12}, nil, charmap.ISO8859_10},
	// Thai: windows-874 is a superset of ISO-8859-11.
	{"ISO-8859-11", []int{13}, []string{"windows-874"}, charmap.Windows874},
	{"ISO-8859-13", []int{15}, nil, charmap.ISO8859_13},
	{"ISO-8859-14", []int{16}, nil, charmap.ISO8859_14},
	{"ISO-8859-15", []int{17}, nil, charmap.ISO8859_15},
	{"ISO-8859-16", []int{18}, nil, charmap.ISO8859_16},
	ShiftJIS,
	{"windows-1250", []int{21}, []string{"Cp1250"}, charmap.Windows1250},
	{"windows-1251", []int{22}, []string{"Cp1251"}, charmap.Windows1251},
	{"windows-1252", []int{23}, []string{"Cp1252"}, charmap.Windows1252},
	{"windows-1256", []int{24}, []string{"Cp1256"}, charmap.Windows1256},
	UTF16BE,
	UTF8,
	ASCII,
	{"Big5", []int{28}, nil, traditionalchinese.Big5},
	GB18030,
	{"EUC-KR", []int{30}, []string{"EUC_KR"}, korean.EUCKR},
}

var (
	byValue = map[int]*Charset{}
	byName  = map[string]*Charset{}
)

func init() {
	for _, c := range all {
		for _, v := range c.Values {
			byValue[v] = c
		}
		byName[strings.ToLower(c.Name)] = c
		for _, a := range c.Aliases {
			byName[strings.ToLower(a)] = c
		}
	}
}

// ForECI returns the character set designated by an ECI value. Values
// below 900 that name no character set return nil without error.
func ForECI(value int) (*Charset, error) {
	if value < 0 || value >= 900 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownECI, value)
	}
	return byValue[value], nil
}

// ForName looks a character set up by name or alias, ignoring case.
func ForName(name string) *Charset {
	return byName[strings.ToLower(name)]
}
