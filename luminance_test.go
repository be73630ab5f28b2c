package qrsnap

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
)

func TestNewPixelSourceRGBA(t *testing.T) {
	pix := []byte{
		255, 255, 255, 255, 0, 0, 0, 255,
		100, 0, 0, 0, 0, 100, 0, 7,
	}
	src, err := NewPixelSource(2, 2, pix)
	if err != nil {
		t.Fatalf("NewPixelSource: %v", err)
	}
	want := []byte{255, 0, 33, 34}
	got := src.Matrix()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("luminance[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestNewPixelSourceGray(t *testing.T) {
	src, err := NewPixelSource(3, 1, []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("NewPixelSource: %v", err)
	}
	row := src.Row(0, nil)
	if len(row) != 3 || row[2] != 3 {
		t.Errorf("row = %v, want [1 2 3]", row)
	}
	if src.Row(1, nil) != nil {
		t.Error("out of range row should be nil")
	}
}

func TestNewPixelSourceInvalid(t *testing.T) {
	tests := []struct {
		desc          string
		width, height int
		pix           []byte
	}{
		{desc: "zero width", width: 0, height: 2, pix: nil},
		{desc: "negative height", width: 2, height: -1, pix: nil},
		{desc: "wrong sample count", width: 2, height: 2, pix: make([]byte, 7)},
		{desc: "overflowing dimensions", width: math.MaxInt / 2, height: 4, pix: nil},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			_, err := NewPixelSource(test.width, test.height, test.pix)
			if !errors.Is(err, ErrInvalidBuffer) {
				t.Errorf("err = %v, want ErrInvalidBuffer", err)
			}
		})
	}
}

func TestCheckSize(t *testing.T) {
	if err := CheckSize(1024, 1024, DefaultMaxPixels); err != nil {
		t.Errorf("1024x1024 should fit: %v", err)
	}
	if err := CheckSize(1025, 1024, DefaultMaxPixels); !errors.Is(err, ErrImageTooLarge) {
		t.Errorf("err = %v, want ErrImageTooLarge", err)
	}
	if err := CheckSize(math.MaxInt/2, 4, DefaultMaxPixels); !errors.Is(err, ErrImageTooLarge) {
		t.Errorf("overflowing product: err = %v, want ErrImageTooLarge", err)
	}
}

func TestNewImageSource(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{R: 0, G: 0, B: 0, A: 0})
	img.Set(1, 0, color.NRGBA{R: 0, G: 0, B: 0, A: 255})
	src := NewImageSource(img)
	m := src.Matrix()
	if m[0] != 0xFF {
		t.Errorf("transparent pixel = %d, want 255", m[0])
	}
	if m[1] != 0 {
		t.Errorf("black pixel = %d, want 0", m[1])
	}

	gray := image.NewGray(image.Rect(5, 5, 7, 6))
	gray.SetGray(6, 5, color.Gray{Y: 42})
	gsrc := NewImageSource(gray)
	if gsrc.Width() != 2 || gsrc.Matrix()[1] != 42 {
		t.Errorf("gray source = %v", gsrc.Matrix())
	}
}
