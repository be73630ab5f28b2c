package detector

import (
	"fmt"
	"math"

	"github.com/qrsnap/qrsnap"
	"github.com/qrsnap/qrsnap/bitutil"
	"github.com/qrsnap/qrsnap/qrcode/decoder"
	"github.com/qrsnap/qrsnap/transform"
)

// DetectorResult is a sampled module matrix and the image points it was
// sampled from: bottom-left, top-left, top-right and, when one was used,
// the alignment centre.
type DetectorResult struct {
	Bits   *bitutil.BitMatrix
	Points []qrsnap.ResultPoint
}

// Detector finds a QR code in a binary image.
type Detector struct {
	image *bitutil.BitMatrix
	opts  *qrsnap.Options
}

// NewDetector creates a Detector for image. opts may be nil.
func NewDetector(image *bitutil.BitMatrix, opts *qrsnap.Options) *Detector {
	o := qrsnap.ResolveOptions(opts)
	return &Detector{image: image, opts: &o}
}

// Detect locates the finder patterns and samples the module grid.
func (d *Detector) Detect() (*DetectorResult, error) {
	info, err := FindFinderPatterns(d.image, d.opts.PureBarcode)
	if err != nil {
		return nil, err
	}
	return d.ProcessFinderPatternInfo(info)
}

// ProcessFinderPatternInfo samples the module grid given the three finder
// patterns.
func (d *Detector) ProcessFinderPatternInfo(info FinderPatternInfo) (*DetectorResult, error) {
	tl, tr, bl := info.TopLeft.Point(), info.TopRight.Point(), info.BottomLeft.Point()

	moduleSize := d.calculateModuleSize(info)
	if moduleSize < 1.0 {
		return nil, fmt.Errorf("%w: module size %.2f", qrsnap.ErrNoFinderPatterns, moduleSize)
	}
	dimension, err := computeDimension(tl, tr, bl, moduleSize)
	if err != nil {
		return nil, err
	}
	version, err := decoder.VersionForDimension(dimension)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", qrsnap.ErrNoFinderPatterns, err)
	}

	var alignment *AlignmentPattern
	if version.Number >= 2 {
		alignment = d.findAlignment(tl, tr, bl, dimension, moduleSize)
	}

	xform := createTransform(tl, tr, bl, alignment, dimension)
	bits, err := transform.SampleGrid(d.image, dimension, xform)
	if err != nil {
		return nil, err
	}

	points := []qrsnap.ResultPoint{bl, tl, tr}
	if alignment != nil {
		points = append(points, alignment.Point())
	}
	return &DetectorResult{Bits: bits, Points: points}, nil
}

func (d *Detector) findAlignment(tl, tr, bl qrsnap.ResultPoint, dimension int, moduleSize float64) *AlignmentPattern {
	br := qrsnap.ResultPoint{X: tr.X - tl.X + bl.X, Y: tr.Y - tl.Y + bl.Y}
	correction := 1.0 - 3.0/float64(dimension-7)
	predicted := qrsnap.ResultPoint{
		X: tl.X + correction*(br.X-tl.X),
		Y: tl.Y + correction*(br.Y-tl.Y),
	}

	ap, ok := locateAlignment(d.image, predicted, moduleSize)
	if !ok {
		d.opts.Debugf("no alignment pattern near (%.1f,%.1f), using affine completion", predicted.X, predicted.Y)
		return nil
	}
	spacing := (qrsnap.Distance(tl, tr) + qrsnap.Distance(tl, bl)) / 2
	if !plausibleAlignment(d.image, ap, predicted, spacing) {
		d.opts.Debugf("alignment pattern at (%.1f,%.1f) too far from (%.1f,%.1f), using affine completion",
			ap.X, ap.Y, predicted.X, predicted.Y)
		return nil
	}
	return &ap
}

// computeDimension estimates the symbol size from the finder spacing and
// snaps it to the nearest valid 4k+1.
func computeDimension(tl, tr, bl qrsnap.ResultPoint, moduleSize float64) (int, error) {
	tltr := qrsnap.Distance(tl, tr) / moduleSize
	tlbl := qrsnap.Distance(tl, bl) / moduleSize
	dimension := int(math.Round((tltr+tlbl)/2.0)) + 7
	switch dimension % 4 {
	case 0:
		dimension++
	case 2:
		dimension--
	case 3:
		return 0, fmt.Errorf("%w: estimated dimension %d", qrsnap.ErrNoFinderPatterns, dimension)
	}
	if dimension < 21 || dimension > 177 {
		return 0, fmt.Errorf("%w: estimated dimension %d", qrsnap.ErrNoFinderPatterns, dimension)
	}
	return dimension, nil
}

func createTransform(tl, tr, bl qrsnap.ResultPoint, alignment *AlignmentPattern, dimension int) *transform.PerspectiveTransform {
	far := float64(dimension) - 3.5
	var br, sourceBR qrsnap.ResultPoint
	if alignment != nil {
		br = alignment.Point()
		sourceBR = qrsnap.ResultPoint{X: far - 3, Y: far - 3}
	} else {
		br = qrsnap.ResultPoint{X: tr.X - tl.X + bl.X, Y: tr.Y - tl.Y + bl.Y}
		sourceBR = qrsnap.ResultPoint{X: far, Y: far}
	}
	from := transform.Quad{{X: 3.5, Y: 3.5}, {X: far, Y: 3.5}, sourceBR, {X: 3.5, Y: far}}
	to := transform.Quad{tl, tr, br, bl}
	return transform.QuadToQuad(from, to)
}

// calculateModuleSize measures the finder ring widths along the lines
// between finder centres, falling back to the scan estimates.
func (d *Detector) calculateModuleSize(info FinderPatternInfo) float64 {
	tl, tr, bl := info.TopLeft.Point(), info.TopRight.Point(), info.BottomLeft.Point()
	size := (d.moduleSizeOneWay(tl, tr) + d.moduleSizeOneWay(tl, bl)) / 2.0
	if math.IsNaN(size) {
		return (info.TopLeft.EstimatedModuleSize + info.TopRight.EstimatedModuleSize +
			info.BottomLeft.EstimatedModuleSize) / 3.0
	}
	return size
}

func (d *Detector) moduleSizeOneWay(from, to qrsnap.ResultPoint) float64 {
	est1 := d.runBothWays(int(from.X), int(from.Y), int(to.X), int(to.Y))
	est2 := d.runBothWays(int(to.X), int(to.Y), int(from.X), int(from.Y))
	switch {
	case math.IsNaN(est1):
		return est2 / 7.0
	case math.IsNaN(est2):
		return est1 / 7.0
	}
	return (est1 + est2) / 14.0
}

// runBothWays measures the dark/light/dark run from (fromX, fromY) towards
// (toX, toY) and in the opposite direction, clipped to the image.
func (d *Detector) runBothWays(fromX, fromY, toX, toY int) float64 {
	width, height := d.image.Width(), d.image.Height()
	result := d.runLength(fromX, fromY, toX, toY)

	scale := 1.0
	otherX := fromX - (toX - fromX)
	if otherX < 0 {
		scale = float64(fromX) / float64(fromX-otherX)
		otherX = 0
	} else if otherX >= width {
		scale = float64(width-1-fromX) / float64(otherX-fromX)
		otherX = width - 1
	}
	otherY := int(float64(fromY) - float64(toY-fromY)*scale)

	scale = 1.0
	if otherY < 0 {
		scale = float64(fromY) / float64(fromY-otherY)
		otherY = 0
	} else if otherY >= height {
		scale = float64(height-1-fromY) / float64(otherY-fromY)
		otherY = height - 1
	}
	otherX = int(float64(fromX) + float64(otherX-fromX)*scale)

	result += d.runLength(fromX, fromY, otherX, otherY)
	// The centre pixel is counted twice.
	return result - 1.0
}

// runLength walks a Bresenham line from a dark finder centre and returns the
// distance to the light pixel after the outer dark ring, or NaN.
func (d *Detector) runLength(fromX, fromY, toX, toY int) float64 {
	steep := abs(toY-fromY) > abs(toX-fromX)
	if steep {
		fromX, fromY = fromY, fromX
		toX, toY = toY, toX
	}
	dx := abs(toX - fromX)
	dy := abs(toY - fromY)
	errAcc := -dx / 2
	xstep, ystep := 1, 1
	if fromX > toX {
		xstep = -1
	}
	if fromY > toY {
		ystep = -1
	}

	// 0: in the centre, 1: in the light ring, 2: in the outer dark ring.
	state := 0
	xLimit := toX + xstep
	for x, y := fromX, fromY; x != xLimit; x += xstep {
		realX, realY := x, y
		if steep {
			realX, realY = y, x
		}
		if realX < 0 || realY < 0 || realX >= d.image.Width() || realY >= d.image.Height() {
			break
		}
		if (state == 1) == d.image.Get(realX, realY) {
			if state == 2 {
				return math.Hypot(float64(x-fromX), float64(y-fromY))
			}
			state++
		}
		errAcc += dy
		if errAcc > 0 {
			if y == toY {
				break
			}
			y += ystep
			errAcc -= dx
		}
	}
	if state == 2 {
		return math.Hypot(float64(toX+xstep-fromX), float64(toY-fromY))
	}
	return math.NaN()
}
