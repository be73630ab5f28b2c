// Package binarizer converts luminance to a dark/light bitmap.
package binarizer

import (
	"github.com/qrsnap/qrsnap"
	"github.com/qrsnap/qrsnap/bitutil"
)

// Cells thresholds each cell of a fixed grid at the midpoint of its
// darkest and lightest luminance. A pixel is dark when strictly below its
// cell's threshold, so a uniform cell has no dark pixels.
type Cells struct {
	source       qrsnap.LuminanceSource
	cellsPerSide int
	matrix       *bitutil.BitMatrix
}

// NewCells creates a Cells binarizer with cellsPerSide cells along each
// axis. Values below 1 use qrsnap.DefaultCellsPerSide.
func NewCells(source qrsnap.LuminanceSource, cellsPerSide int) *Cells {
	if cellsPerSide < 1 {
		cellsPerSide = qrsnap.DefaultCellsPerSide
	}
	return &Cells{source: source, cellsPerSide: cellsPerSide}
}

// BlackMatrix returns the binarized image. The result is computed once and
// shared by later calls; callers must not modify it.
func (c *Cells) BlackMatrix() *bitutil.BitMatrix {
	if c.matrix != nil {
		return c.matrix
	}
	width, height := c.source.Width(), c.source.Height()
	lum := c.source.Matrix()
	matrix := bitutil.NewBitMatrixWithSize(width, height)

	xs := bounds(width, c.cellsPerSide)
	ys := bounds(height, c.cellsPerSide)
	for cy := 0; cy+1 < len(ys); cy++ {
		for cx := 0; cx+1 < len(xs); cx++ {
			threshold := cellThreshold(lum, width, xs[cx], xs[cx+1], ys[cy], ys[cy+1])
			for y := ys[cy]; y < ys[cy+1]; y++ {
				row := lum[y*width : (y+1)*width]
				for x := xs[cx]; x < xs[cx+1]; x++ {
					if int(row[x]) < threshold {
						matrix.Set(x, y)
					}
				}
			}
		}
	}
	c.matrix = matrix
	return matrix
}

// bounds splits length into n equal cells, the last absorbing the
// remainder. The result holds n+1 edges.
func bounds(length, n int) []int {
	n = min(n, length)
	size := length / n
	edges := make([]int, n+1)
	for i := 0; i < n; i++ {
		edges[i] = i * size
	}
	edges[n] = length
	return edges
}

func cellThreshold(lum []byte, stride, x0, x1, y0, y1 int) int {
	lo, hi := 255, 0
	for y := y0; y < y1; y++ {
		for _, v := range lum[y*stride+x0 : y*stride+x1] {
			lo = min(lo, int(v))
			hi = max(hi, int(v))
		}
	}
	return (lo + hi) / 2
}
