package qrsnap

import (
	"image"
	"image/color"
)

// NewImageSource converts a decoded image to a PixelSource using the same
// weighting as NewPixelSource. Fully transparent pixels become white.
func NewImageSource(img image.Image) *PixelSource {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	lum := make([]byte, w*h)

	if gray, ok := img.(*image.Gray); ok {
		for y := 0; y < h; y++ {
			off := gray.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(lum[y*w:], gray.Pix[off:off+w])
		}
		return &PixelSource{luminances: lum, width: w, height: h}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			if c.A == 0 {
				lum[y*w+x] = 0xFF
				continue
			}
			lum[y*w+x] = Luma(uint32(c.R), uint32(c.G), uint32(c.B))
		}
	}
	return &PixelSource{luminances: lum, width: w, height: h}
}
