package charset

import "testing"

func TestForECI(t *testing.T) {
	tests := []struct {
		desc  string
		value int
		want  *Charset
	}{
		{desc: "cp437 default", value: 0, want: CP437},
		{desc: "latin1 alternate", value: 3, want: ISO8859_1},
		{desc: "shift jis", value: 20, want: ShiftJIS},
		{desc: "utf8", value: 26, want: UTF8},
		{desc: "unassigned", value: 14, want: nil},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			got, err := ForECI(test.value)
			if err != nil {
				t.Fatalf("ForECI(%d): %v", test.value, err)
			}
			if got != test.want {
				t.Errorf("ForECI(%d) = %v, want %v", test.value, got, test.want)
			}
		})
	}
	if _, err := ForECI(1000); err == nil {
		t.Error("ForECI(1000) succeeded")
	}
}

func TestForName(t *testing.T) {
	if ForName("sjis") != ShiftJIS || ForName("utf-8") != UTF8 || ForName("nope") != nil {
		t.Error("name lookup mismatch")
	}
}

func TestGuess(t *testing.T) {
	tests := []struct {
		desc  string
		input []byte
		want  *Charset
	}{
		{desc: "ascii", input: []byte("HELLO"), want: ISO8859_1},
		{desc: "utf8", input: []byte("héllo wörld"), want: UTF8},
		{desc: "latin1", input: []byte{'c', 'a', 'f', 0xE9}, want: ISO8859_1},
		// "日本語" in Shift_JIS.
		{desc: "shift jis", input: []byte{0x93, 0xFA, 0x96, 0x7B, 0x8C, 0xEA}, want: ShiftJIS},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			if got := Guess(test.input); got != test.want {
				t.Errorf("Guess(%x) = %v, want %v", test.input, got, test.want)
			}
		})
	}
}

func TestDecodeText(t *testing.T) {
	text, c := DecodeText([]byte{'c', 'a', 'f', 0xE9}, "")
	if text != "café" || c != ISO8859_1 {
		t.Errorf("DecodeText = %q via %v", text, c)
	}
	text, _ = DecodeText([]byte{0x93, 0xFA, 0x96, 0x7B, 0x8C, 0xEA}, "Shift_JIS")
	if text != "日本語" {
		t.Errorf("DecodeText sjis = %q", text)
	}
}
