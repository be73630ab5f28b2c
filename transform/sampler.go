package transform

import (
	"fmt"

	"github.com/qrsnap/qrsnap"
	"github.com/qrsnap/qrsnap/bitutil"
)

// SampleGrid reads a dimension x dimension module matrix from image. Module
// (x, y) is taken from the pixel nearest to the image of its centre
// (x+0.5, y+0.5) under t.
func SampleGrid(image *bitutil.BitMatrix, dimension int, t *PerspectiveTransform) (*bitutil.BitMatrix, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension %d", qrsnap.ErrSampleOutOfBounds, dimension)
	}
	bits := bitutil.NewBitMatrix(dimension)
	points := make([]float64, 2*dimension)
	for y := 0; y < dimension; y++ {
		row := float64(y) + 0.5
		for x := 0; x < dimension; x++ {
			points[2*x] = float64(x) + 0.5
			points[2*x+1] = row
		}
		t.TransformPoints(points)
		if err := nudgePoints(image, points); err != nil {
			return nil, fmt.Errorf("module row %d: %w", y, err)
		}
		for x := 0; x < dimension; x++ {
			px, py := int(points[2*x]), int(points[2*x+1])
			if px < 0 || px >= image.Width() || py < 0 || py >= image.Height() {
				return nil, fmt.Errorf("%w: module (%d,%d) at pixel (%d,%d)", qrsnap.ErrSampleOutOfBounds, x, y, px, py)
			}
			if image.Get(px, py) {
				bits.Set(x, y)
			}
		}
	}
	return bits, nil
}

// nudgePoints pulls points that are at most one pixel outside the image back
// onto its edge, walking inwards from both ends of the row until a point
// needs no adjustment. Anything further out is an error.
func nudgePoints(image *bitutil.BitMatrix, points []float64) error {
	n := len(points) / 2
	for i := 0; i < n; i++ {
		nudged, err := nudge(image, points, i)
		if err != nil {
			return err
		}
		if !nudged {
			break
		}
	}
	for i := n - 1; i >= 0; i-- {
		nudged, err := nudge(image, points, i)
		if err != nil {
			return err
		}
		if !nudged {
			break
		}
	}
	return nil
}

func nudge(image *bitutil.BitMatrix, points []float64, i int) (bool, error) {
	width, height := image.Width(), image.Height()
	x, y := int(points[2*i]), int(points[2*i+1])
	if x < -1 || x > width || y < -1 || y > height {
		return false, fmt.Errorf("%w: point (%d,%d) outside %dx%d", qrsnap.ErrSampleOutOfBounds, x, y, width, height)
	}
	nudged := false
	switch x {
	case -1:
		points[2*i] = 0
		nudged = true
	case width:
		points[2*i] = float64(width - 1)
		nudged = true
	}
	switch y {
	case -1:
		points[2*i+1] = 0
		nudged = true
	case height:
		points[2*i+1] = float64(height - 1)
		nudged = true
	}
	return nudged, nil
}
