package reedsolomon

import (
	"errors"
	"math/rand"
	"slices"
	"testing"
)

func encoded(t *testing.T, data []int, ecSize int) []int {
	t.Helper()
	codeword := make([]int, len(data)+ecSize)
	copy(codeword, data)
	NewEncoder(QRField()).Encode(codeword, ecSize)
	return codeword
}

func TestFieldArithmetic(t *testing.T) {
	f := QRField()
	if f.Exp(0) != 1 || f.Exp(1) != 2 || f.Exp(8) != 0x1D {
		t.Errorf("exp table starts %d %d %d", f.Exp(0), f.Exp(1), f.Exp(8))
	}
	for a := 1; a < 256; a++ {
		if got := f.Multiply(a, f.Inverse(a)); got != 1 {
			t.Fatalf("%d * inverse = %d", a, got)
		}
		if f.Exp(f.Log(a)) != a {
			t.Fatalf("exp(log(%d)) != %d", a, a)
		}
	}
}

func TestPolyDivide(t *testing.T) {
	f := QRField()
	a := f.NewPoly([]int{3, 7, 0, 9, 1})
	b := f.NewPoly([]int{1, 5, 2})
	q, r := a.Divide(b)
	if r.Degree() >= b.Degree() {
		t.Fatalf("remainder degree %d", r.Degree())
	}
	if back := q.MultiplyPoly(b).AddPoly(r); !slices.Equal(back.Coefficients(), a.Coefficients()) {
		t.Errorf("q*b+r = %v, want %v", back.Coefficients(), a.Coefficients())
	}
}

func TestEncodeKnownVector(t *testing.T) {
	// "01234567" as a version 1-M symbol.
	data := []int{0x10, 0x20, 0x0C, 0x56, 0x61, 0x80, 0xEC, 0x11, 0xEC, 0x11, 0xEC, 0x11, 0xEC, 0x11, 0xEC, 0x11}
	want := []int{0xA5, 0x24, 0xD4, 0xC1, 0xED, 0x36, 0xC7, 0x87, 0x2C, 0x55}
	got := encoded(t, data, 10)
	if !slices.Equal(got[16:], want) {
		t.Errorf("ec = %x, want %x", got[16:], want)
	}
}

func TestDecodeCorrects(t *testing.T) {
	data := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	tests := []struct {
		desc      string
		algorithm Algorithm
		corrupt   map[int]int
	}{
		{desc: "euclidean single", algorithm: Euclidean, corrupt: map[int]int{4: 0xFF}},
		{desc: "euclidean three", algorithm: Euclidean, corrupt: map[int]int{0: 0, 3: 200, 6: 100}},
		{desc: "euclidean in ec bytes", algorithm: Euclidean, corrupt: map[int]int{12: 1, 16: 2}},
		{desc: "berlekamp-massey single", algorithm: BerlekampMassey, corrupt: map[int]int{4: 0xFF}},
		{desc: "berlekamp-massey three", algorithm: BerlekampMassey, corrupt: map[int]int{0: 0, 3: 200, 6: 100}},
		{desc: "berlekamp-massey in ec bytes", algorithm: BerlekampMassey, corrupt: map[int]int{12: 1, 16: 2}},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			original := encoded(t, data, 7)
			received := slices.Clone(original)
			for i, v := range test.corrupt {
				received[i] = v
			}
			dec := NewDecoder(QRField())
			dec.Algorithm = test.algorithm
			corrected, err := dec.Decode(received, 7)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if corrected != len(test.corrupt) {
				t.Errorf("corrected = %d, want %d", corrected, len(test.corrupt))
			}
			if !slices.Equal(received, original) {
				t.Errorf("got %v, want %v", received, original)
			}
		})
	}
}

func TestDecodeNoErrors(t *testing.T) {
	codeword := encoded(t, []int{10, 20, 30, 40, 50}, 4)
	for _, alg := range []Algorithm{Euclidean, BerlekampMassey} {
		dec := NewDecoder(QRField())
		dec.Algorithm = alg
		corrected, err := dec.Decode(codeword, 4)
		if err != nil || corrected != 0 {
			t.Errorf("%v: corrected = %d, err = %v", alg, corrected, err)
		}
	}
}

func TestDecodeTooManyErrors(t *testing.T) {
	original := encoded(t, []int{10, 20, 30, 40, 50}, 4)
	for _, alg := range []Algorithm{Euclidean, BerlekampMassey} {
		received := slices.Clone(original)
		received[0] ^= 0x55
		received[1] ^= 0x0F
		received[2] ^= 0xF0
		dec := NewDecoder(QRField())
		dec.Algorithm = alg
		_, err := dec.Decode(received, 4)
		// Three errors with distance five can never decode back to the original.
		if err == nil && slices.Equal(received, original) {
			t.Errorf("%v: decoded three errors with capacity two", alg)
		}
		if err != nil && !errors.Is(err, ErrUncorrectable) {
			t.Errorf("%v: err = %v, want ErrUncorrectable", alg, err)
		}
	}
}

func TestAlgorithmsAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 200; round++ {
		data := make([]int, 20)
		for i := range data {
			data[i] = rng.Intn(256)
		}
		original := encoded(t, data, 10)
		received := slices.Clone(original)
		for _, pos := range rng.Perm(len(received))[:rng.Intn(6)] {
			received[pos] ^= 1 + rng.Intn(255)
		}

		euclid := slices.Clone(received)
		n1, err1 := NewDecoder(QRField()).Decode(euclid, 10)
		bm := slices.Clone(received)
		dec := NewDecoder(QRField())
		dec.Algorithm = BerlekampMassey
		n2, err2 := dec.Decode(bm, 10)

		if err1 != nil || err2 != nil {
			t.Fatalf("round %d: errors %v / %v", round, err1, err2)
		}
		if n1 != n2 || !slices.Equal(euclid, original) || !slices.Equal(bm, original) {
			t.Fatalf("round %d: euclidean %d, berlekamp-massey %d", round, n1, n2)
		}
	}
}
