package qrtest

import (
	"github.com/qrsnap/qrsnap/bitutil"
	"github.com/qrsnap/qrsnap/qrcode/decoder"
)

// Matrix lays the symbol out as a module matrix, set = dark.
func (s *Symbol) Matrix() *bitutil.BitMatrix {
	v := s.Version
	dim := v.Dimension()
	m := bitutil.NewBitMatrix(dim)

	for _, corner := range [][2]int{{0, 0}, {dim - 7, 0}, {0, dim - 7}} {
		drawFinder(m, corner[0], corner[1])
	}
	last := len(v.AlignmentCenters) - 1
	for i, cy := range v.AlignmentCenters {
		for j, cx := range v.AlignmentCenters {
			if (i == 0 && j == 0) || (i == 0 && j == last) || (i == last && j == 0) {
				continue
			}
			drawAlignment(m, cx, cy)
		}
	}
	for k := 8; k < dim-8; k += 2 {
		m.Set(k, 6)
		m.Set(6, k)
	}
	m.Set(8, dim-8)

	format := decoder.FormatBits(s.Level, s.Mask)
	for i := 0; i < 15; i++ {
		if format>>i&1 == 0 {
			continue
		}
		x, y := formatCopy1(i)
		m.Set(x, y)
		if i < 8 {
			m.Set(dim-1-i, 8)
		} else {
			m.Set(8, dim-15+i)
		}
	}

	if v.Number >= 7 {
		bits := decoder.VersionBits(v.Number)
		for k := 0; k < 18; k++ {
			if bits>>k&1 == 0 {
				continue
			}
			a, b := k/3, k%3
			m.Set(a, dim-11+b)
			m.Set(dim-11+b, a)
		}
	}

	s.placeData(m, v.BuildFunctionPattern())
	return m
}

// formatCopy1 returns the module of format bit i (0 = least significant)
// beside the top-left finder.
func formatCopy1(i int) (x, y int) {
	switch {
	case i < 6:
		return 8, i
	case i < 8:
		return 8, i + 1
	case i == 8:
		return 7, 8
	}
	return 14 - i, 8
}

func drawFinder(m *bitutil.BitMatrix, left, top int) {
	for dy := 0; dy < 7; dy++ {
		for dx := 0; dx < 7; dx++ {
			ring := max(abs(dx-3), abs(dy-3))
			if ring != 2 {
				m.Set(left+dx, top+dy)
			}
		}
	}
}

func drawAlignment(m *bitutil.BitMatrix, cx, cy int) {
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			if max(abs(dx), abs(dy)) != 1 {
				m.Set(cx+dx, cy+dy)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// placeData writes the interleaved codewords in zig-zag order, applying the mask.
func (s *Symbol) placeData(m, function *bitutil.BitMatrix) {
	codewords := s.Codewords()
	dim := m.Height()
	bit := 0
	upward := true
	for right := dim - 1; right > 0; right -= 2 {
		if right == 6 {
			right--
		}
		for k := 0; k < dim; k++ {
			y := k
			if upward {
				y = dim - 1 - k
			}
			for x := right; x > right-2; x-- {
				if function.Get(x, y) {
					continue
				}
				dark := false
				if bit < 8*len(codewords) {
					dark = codewords[bit/8]>>(7-bit%8)&1 == 1
					bit++
				}
				if decoder.Masked(s.Mask, y, x) {
					dark = !dark
				}
				if dark {
					m.Set(x, y)
				}
			}
		}
		upward = !upward
	}
}
