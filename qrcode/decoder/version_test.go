package decoder

import (
	"errors"
	"slices"
	"testing"

	"github.com/qrsnap/qrsnap"
)

// rawDataModules counts the modules left for codewords in a version.
func rawDataModules(v int) int {
	n := (16*v+128)*v + 64
	if v >= 2 {
		align := v/7 + 2
		n -= (25*align-10)*align - 55
		if v >= 7 {
			n -= 36
		}
	}
	return n
}

func TestVersionTable(t *testing.T) {
	for n := 1; n <= 40; n++ {
		v, err := VersionForNumber(n)
		if err != nil {
			t.Fatalf("VersionForNumber(%d): %v", n, err)
		}
		if want := rawDataModules(n) / 8; v.TotalCodewords != want {
			t.Errorf("version %d: %d codewords, want %d", n, v.TotalCodewords, want)
		}
		for level := ECLevelL; level <= ECLevelH; level++ {
			ec := v.ECBlocks(level)
			if got := ec.DataCodewords() + ec.NumBlocks()*ec.ECCodewordsPerBlock; got != v.TotalCodewords {
				t.Errorf("version %d-%v: blocks hold %d codewords, want %d", n, level, got, v.TotalCodewords)
			}
		}

		fp := v.BuildFunctionPattern()
		free := 0
		for y := 0; y < v.Dimension(); y++ {
			for x := 0; x < v.Dimension(); x++ {
				if !fp.Get(x, y) {
					free++
				}
			}
		}
		if free != rawDataModules(n) {
			t.Errorf("version %d: %d free modules, want %d", n, free, rawDataModules(n))
		}
	}
}

func TestAlignmentCenters(t *testing.T) {
	tests := []struct {
		version int
		want    []int
	}{
		{1, nil},
		{2, []int{6, 18}},
		{7, []int{6, 22, 38}},
		{32, []int{6, 34, 60, 86, 112, 138}},
		{36, []int{6, 24, 50, 76, 102, 128, 154}},
		{40, []int{6, 30, 58, 86, 114, 142, 170}},
	}
	for _, test := range tests {
		if got := alignmentCenters(test.version); !slices.Equal(got, test.want) {
			t.Errorf("version %d: %v, want %v", test.version, got, test.want)
		}
	}
}

func TestVersionForDimension(t *testing.T) {
	for _, dim := range []int{17, 22, 23, 181} {
		if _, err := VersionForDimension(dim); !errors.Is(err, qrsnap.ErrMatrixTooSmall) {
			t.Errorf("dimension %d: err = %v", dim, err)
		}
	}
	v, err := VersionForDimension(57)
	if err != nil || v.Number != 10 {
		t.Errorf("dimension 57: %v, %v", v, err)
	}
}

func TestVersionBits(t *testing.T) {
	if got := VersionBits(7); got != 0x07C94 {
		t.Errorf("VersionBits(7) = %#x", got)
	}
	if got := VersionBits(40); got != 0x28C69 {
		t.Errorf("VersionBits(40) = %#x", got)
	}
	n, d, ok := DecodeVersionBits(VersionBits(21) ^ 0b101000000001)
	if !ok || n != 21 || d != 3 {
		t.Errorf("DecodeVersionBits = %d, %d, %v", n, d, ok)
	}
	if _, _, ok := DecodeVersionBits(0); ok {
		t.Error("zero decoded as a version")
	}
}

func TestFormatBits(t *testing.T) {
	tests := []struct {
		level ECLevel
		mask  int
		want  int
	}{
		{ECLevelM, 0, 0x5412},
		{ECLevelL, 0, 0x77C4},
		{ECLevelH, 0, 0x1689},
		{ECLevelQ, 7, 0x2BED},
	}
	for _, test := range tests {
		if got := FormatBits(test.level, test.mask); got != test.want {
			t.Errorf("FormatBits(%v, %d) = %#x, want %#x", test.level, test.mask, got, test.want)
		}
	}
}

func TestDecodeFormatBits(t *testing.T) {
	raw := FormatBits(ECLevelQ, 5)
	for _, flips := range []int{0, 0b1, 0b1000100, 0b100000010000001} {
		f, ok := decodeFormatBits(raw ^ flips)
		if !ok || f.ECLevel != ECLevelQ || f.DataMask != 5 {
			t.Errorf("flips %b: %+v, %v", flips, f, ok)
		}
	}
	// Four errors are beyond correction: rejected or read as another codeword.
	if f, ok := decodeFormatBits(raw ^ 0b1111); ok && f.ECLevel == ECLevelQ && f.DataMask == 5 {
		t.Error("four bit errors accepted")
	}
}

func TestECLevelNames(t *testing.T) {
	tests := []struct {
		name    string
		bits    int
		want    ECLevel
		wantErr bool
	}{
		{name: "L", bits: 1, want: ECLevelL},
		{name: "M", bits: 0, want: ECLevelM},
		{name: "Q", bits: 3, want: ECLevelQ},
		{name: "H", bits: 2, want: ECLevelH},
		{name: "h", wantErr: true},
		{name: "", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseECLevel(tc.name)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseECLevel(%q) succeeded", tc.name)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseECLevel(%q) = %v, %v; want %v", tc.name, got, err, tc.want)
			continue
		}
		if got.Bits() != tc.bits {
			t.Errorf("%v.Bits() = %d, want %d", got, got.Bits(), tc.bits)
		}
		if back, err := ECLevelForBits(tc.bits); err != nil || back != got {
			t.Errorf("ECLevelForBits(%d) = %v, %v; want %v", tc.bits, back, err, got)
		}
	}
}
