package detector

import (
	"math"

	"github.com/qrsnap/qrsnap"
	"github.com/qrsnap/qrsnap/bitutil"
)

// AlignmentPattern is an alignment pattern centre.
type AlignmentPattern struct {
	X, Y                float64
	EstimatedModuleSize float64
}

// Point returns the centre as a ResultPoint.
func (ap AlignmentPattern) Point() qrsnap.ResultPoint {
	return qrsnap.ResultPoint{X: ap.X, Y: ap.Y}
}

// alignmentAllowances are the search half-sizes in module sizes, tried in order.
var alignmentAllowances = []float64{4, 8, 16}

// FindAlignmentCandidates scans the rectangle at (startX, startY) of the
// given size for light/dark/light runs of about one module each around a
// dark centre, confirmed in the same ratio vertically. Every confirmed centre
// is returned.
func FindAlignmentCandidates(image *bitutil.BitMatrix, startX, startY, width, height int, moduleSize float64) []AlignmentPattern {
	maxX := startX + width
	var found []AlignmentPattern
	for y := startY; y < startY+height; y++ {
		x := startX
		for x < maxX && !image.Get(x, y) {
			x++
		}
		var counts [3]int
		state := 0
		for ; x < maxX; x++ {
			if !image.Get(x, y) {
				if state == 1 {
					state++
				}
				counts[state]++
				continue
			}
			if state == 1 {
				counts[1]++
				continue
			}
			if state == 2 {
				if ap, ok := crossCheckAlignment(image, counts, x, y, moduleSize); ok {
					found = append(found, ap)
				}
				counts = [3]int{counts[2], 1, 0}
				state = 1
				continue
			}
			state++
			counts[state]++
		}
	}
	return found
}

func foundAlignmentPattern(counts [3]int, moduleSize float64) bool {
	maxVariance := moduleSize / 2.0
	for _, c := range counts {
		if math.Abs(float64(c)-moduleSize) >= maxVariance {
			return false
		}
	}
	return true
}

// crossCheckAlignment confirms a row hit ending at column end.
func crossCheckAlignment(image *bitutil.BitMatrix, counts [3]int, end, y int, moduleSize float64) (AlignmentPattern, bool) {
	if !foundAlignmentPattern(counts, moduleSize) {
		return AlignmentPattern{}, false
	}
	centerX := float64(end-counts[2]) - float64(counts[1])/2.0
	centerY, ok := crossCheckVerticalAlignment(image, int(centerX), y, 2*counts[1], moduleSize)
	if !ok {
		return AlignmentPattern{}, false
	}
	return AlignmentPattern{X: centerX, Y: centerY, EstimatedModuleSize: moduleSize}, true
}

func crossCheckVerticalAlignment(image *bitutil.BitMatrix, centerX, startY, maxCount int, moduleSize float64) (float64, bool) {
	maxY := image.Height()
	var counts [3]int

	y := startY
	for y >= 0 && image.Get(centerX, y) && counts[1] <= maxCount {
		counts[1]++
		y--
	}
	if y < 0 || counts[1] > maxCount {
		return 0, false
	}
	for y >= 0 && !image.Get(centerX, y) && counts[0] <= maxCount {
		counts[0]++
		y--
	}
	if counts[0] > maxCount {
		return 0, false
	}

	y = startY + 1
	for y < maxY && image.Get(centerX, y) && counts[1] <= maxCount {
		counts[1]++
		y++
	}
	if y == maxY || counts[1] > maxCount {
		return 0, false
	}
	for y < maxY && !image.Get(centerX, y) && counts[2] <= maxCount {
		counts[2]++
		y++
	}
	if counts[2] > maxCount {
		return 0, false
	}

	total := counts[0] + counts[1] + counts[2]
	if 5*math.Abs(float64(total)-3*moduleSize) >= 3*moduleSize {
		return 0, false
	}
	if !foundAlignmentPattern(counts, moduleSize) {
		return 0, false
	}
	return float64(y-counts[2]) - float64(counts[1])/2.0, true
}

// closestAlignment returns the candidate nearest to predicted.
func closestAlignment(candidates []AlignmentPattern, predicted qrsnap.ResultPoint) (AlignmentPattern, bool) {
	if len(candidates) == 0 {
		return AlignmentPattern{}, false
	}
	best := candidates[0]
	bestDist := qrsnap.Distance(best.Point(), predicted)
	for _, c := range candidates[1:] {
		if d := qrsnap.Distance(c.Point(), predicted); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, true
}

// locateAlignment searches ever larger squares around predicted and returns
// the closest confirmed alignment centre.
func locateAlignment(image *bitutil.BitMatrix, predicted qrsnap.ResultPoint, moduleSize float64) (AlignmentPattern, bool) {
	px, py := int(predicted.X), int(predicted.Y)
	for _, factor := range alignmentAllowances {
		allowance := int(factor * moduleSize)
		left := max(0, px-allowance)
		top := max(0, py-allowance)
		right := min(image.Width()-1, px+allowance)
		bottom := min(image.Height()-1, py+allowance)
		if right-left < 0 || bottom-top < 0 {
			continue
		}
		candidates := FindAlignmentCandidates(image, left, top, right-left+1, bottom-top+1, moduleSize)
		if ap, ok := closestAlignment(candidates, predicted); ok {
			return ap, true
		}
	}
	return AlignmentPattern{}, false
}

// plausibleAlignment reports whether ap lies inside the image and within a
// quarter of the finder spacing of the predicted centre.
func plausibleAlignment(image *bitutil.BitMatrix, ap AlignmentPattern, predicted qrsnap.ResultPoint, spacing float64) bool {
	if ap.X < 0 || ap.Y < 0 || ap.X >= float64(image.Width()) || ap.Y >= float64(image.Height()) {
		return false
	}
	return qrsnap.Distance(ap.Point(), predicted) <= spacing/4
}
