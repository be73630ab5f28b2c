package bitutil

import "testing"

func TestBitMatrixGetSet(t *testing.T) {
	bm := NewBitMatrixWithSize(40, 10)
	bm.Set(3, 5)
	bm.Set(35, 9)
	if !bm.Get(3, 5) || !bm.Get(35, 9) {
		t.Error("set bits should read back")
	}
	if bm.Get(5, 3) {
		t.Error("bit (5,3) should not be set")
	}
	bm.Unset(3, 5)
	if bm.Get(3, 5) {
		t.Error("bit should be unset")
	}
}

func TestBitMatrixFlip(t *testing.T) {
	bm := NewBitMatrixWithSize(4, 4)
	bm.Flip(1, 2)
	if !bm.Get(1, 2) {
		t.Error("bit should be set after flip")
	}
	bm.Flip(1, 2)
	if bm.Get(1, 2) {
		t.Error("bit should be unset after double flip")
	}
}

func TestBitMatrixSetRegion(t *testing.T) {
	bm := NewBitMatrixWithSize(8, 8)
	bm.SetRegion(2, 2, 4, 4)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			expected := x >= 2 && x < 6 && y >= 2 && y < 6
			if bm.Get(x, y) != expected {
				t.Errorf("(%d,%d) = %v, want %v", x, y, bm.Get(x, y), expected)
			}
		}
	}
}

func TestBitMatrixOnBits(t *testing.T) {
	bm := NewBitMatrixWithSize(10, 10)
	if _, _, ok := bm.TopLeftOnBit(); ok {
		t.Error("empty matrix has no top-left bit")
	}
	bm.Set(5, 3)
	bm.Set(2, 7)
	if x, y, ok := bm.TopLeftOnBit(); !ok || x != 5 || y != 3 {
		t.Errorf("TopLeftOnBit = %d,%d,%v, want 5,3", x, y, ok)
	}
	if x, y, ok := bm.BottomRightOnBit(); !ok || x != 2 || y != 7 {
		t.Errorf("BottomRightOnBit = %d,%d,%v, want 2,7", x, y, ok)
	}
}

func TestBitMatrixClone(t *testing.T) {
	bm := NewBitMatrixWithSize(8, 8)
	bm.Set(1, 1)
	clone := bm.Clone()
	clone.Set(2, 2)
	if bm.Get(2, 2) {
		t.Error("modifying clone should not affect original")
	}
	if !clone.Get(1, 1) {
		t.Error("clone should keep original bits")
	}
}

func TestParseStringMatrix(t *testing.T) {
	bm := ParseStringMatrix("X   \nX X \n", "X ", "  ")
	want := NewBitMatrixWithSize(2, 2)
	want.Set(0, 0)
	want.Set(0, 1)
	want.Set(1, 1)
	if !bm.Equals(want) {
		t.Fatalf("parsed:\n%s\nwant:\n%s", bm, want)
	}
	if !bm.Equals(ParseStringMatrix(bm.String(), "X ", "  ")) {
		t.Error("String should round trip through ParseStringMatrix")
	}
}
