package bitutil

import (
	"errors"
	"testing"
)

func TestBitSource(t *testing.T) {
	bs := NewBitSource([]byte{0x01, 0x02, 0x03, 0x04, 0x05})
	steps := []struct {
		n, want, left int
	}{
		{1, 0, 39},
		{6, 0, 33},
		{1, 1, 32},
		{8, 2, 24},
		{10, 12, 14},
		{8, 16, 6},
		{6, 5, 0},
	}
	for _, s := range steps {
		got, err := bs.ReadBits(s.n)
		if err != nil {
			t.Fatalf("ReadBits(%d): %v", s.n, err)
		}
		if got != s.want {
			t.Errorf("ReadBits(%d) = %d, want %d", s.n, got, s.want)
		}
		if bs.Available() != s.left {
			t.Errorf("Available = %d, want %d", bs.Available(), s.left)
		}
	}
	if _, err := bs.ReadBits(1); !errors.Is(err, ErrNotEnoughBits) {
		t.Errorf("err = %v, want ErrNotEnoughBits", err)
	}
}

func TestBitWriterRoundTrip(t *testing.T) {
	var w BitWriter
	w.AppendBits(0x4, 4)
	w.AppendBits(5, 8)
	w.AppendBits(0x1FF, 9)
	if w.Size() != 21 || w.SizeInBytes() != 3 {
		t.Fatalf("size = %d bits / %d bytes", w.Size(), w.SizeInBytes())
	}
	bs := NewBitSource(w.Bytes())
	for _, want := range []struct{ n, v int }{{4, 4}, {8, 5}, {9, 0x1FF}} {
		got, err := bs.ReadBits(want.n)
		if err != nil || got != want.v {
			t.Errorf("ReadBits(%d) = %d, %v; want %d", want.n, got, err, want.v)
		}
	}
}
