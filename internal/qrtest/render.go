package qrtest

import (
	"image"
	"image/color"

	"github.com/qrsnap/qrsnap/bitutil"
)

// Canvas places a module matrix on a white background.
type Canvas struct {
	Width, Height    int
	Scale            int
	OffsetX, OffsetY int
}

// Centered returns a canvas of the given size with m scaled by scale and centred.
func Centered(m *bitutil.BitMatrix, width, height, scale int) Canvas {
	return Canvas{
		Width:   width,
		Height:  height,
		Scale:   scale,
		OffsetX: (width - m.Width()*scale) / 2,
		OffsetY: (height - m.Height()*scale) / 2,
	}
}

func (c Canvas) dark(m *bitutil.BitMatrix, x, y int) bool {
	mx := x - c.OffsetX
	my := y - c.OffsetY
	if mx < 0 || my < 0 {
		return false
	}
	mx /= c.Scale
	my /= c.Scale
	return mx < m.Width() && my < m.Height() && m.Get(mx, my)
}

// Gray renders one luminance byte per pixel.
func Gray(m *bitutil.BitMatrix, c Canvas) []byte {
	pix := make([]byte, c.Width*c.Height)
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			if !c.dark(m, x, y) {
				pix[y*c.Width+x] = 0xFF
			}
		}
	}
	return pix
}

// RGBA renders four bytes per pixel with opaque alpha.
func RGBA(m *bitutil.BitMatrix, c Canvas) []byte {
	gray := Gray(m, c)
	pix := make([]byte, 4*len(gray))
	for i, v := range gray {
		pix[4*i], pix[4*i+1], pix[4*i+2], pix[4*i+3] = v, v, v, 0xFF
	}
	return pix
}

// Image renders to an *image.Gray.
func Image(m *bitutil.BitMatrix, c Canvas) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, c.Width, c.Height))
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			v := uint8(0xFF)
			if c.dark(m, x, y) {
				v = 0
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

// Rotate90 returns m turned a quarter clockwise.
func Rotate90(m *bitutil.BitMatrix) *bitutil.BitMatrix {
	w, h := m.Width(), m.Height()
	out := bitutil.NewBitMatrixWithSize(h, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if m.Get(x, y) {
				out.Set(h-1-y, x)
			}
		}
	}
	return out
}
