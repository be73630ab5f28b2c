// Package detector locates a QR code in a binary image and samples its
// module grid.
package detector

import (
	"fmt"
	"math"
	"sort"

	"github.com/qrsnap/qrsnap"
	"github.com/qrsnap/qrsnap/bitutil"
)

// maxSelectCandidates bounds the triples SelectBest examines.
const maxSelectCandidates = 16

// FinderPattern is a finder pattern centre with its estimated module size.
// Count is the number of scan lines that confirmed it.
type FinderPattern struct {
	X, Y                float64
	EstimatedModuleSize float64
	Count               int
}

// Point returns the centre as a ResultPoint.
func (fp FinderPattern) Point() qrsnap.ResultPoint {
	return qrsnap.ResultPoint{X: fp.X, Y: fp.Y}
}

func (fp FinderPattern) aboutEquals(other FinderPattern) bool {
	if math.Abs(other.Y-fp.Y) > fp.EstimatedModuleSize || math.Abs(other.X-fp.X) > fp.EstimatedModuleSize {
		return false
	}
	diff := math.Abs(other.EstimatedModuleSize - fp.EstimatedModuleSize)
	return diff <= 1.0 || diff <= fp.EstimatedModuleSize
}

func (fp FinderPattern) combine(other FinderPattern) FinderPattern {
	n := float64(fp.Count + other.Count)
	a, b := float64(fp.Count), float64(other.Count)
	return FinderPattern{
		X:                   (a*fp.X + b*other.X) / n,
		Y:                   (a*fp.Y + b*other.Y) / n,
		EstimatedModuleSize: (a*fp.EstimatedModuleSize + b*other.EstimatedModuleSize) / n,
		Count:               fp.Count + other.Count,
	}
}

// FinderPatternInfo holds the three finder patterns in their roles.
type FinderPatternInfo struct {
	TopLeft, TopRight, BottomLeft FinderPattern
}

// rowSkip returns the row stride used when scanning for finder patterns.
func rowSkip(height int, pure bool) int {
	if pure {
		return 1
	}
	return max(3, 3*height/388)
}

// FindCandidates scans image for 1:1:3:1:1 runs and returns every hit that
// survives the vertical, horizontal and diagonal cross-checks. Each hit has
// Count 1; merge them with Cluster.
func FindCandidates(image *bitutil.BitMatrix, pure bool) []FinderPattern {
	width, height := image.Width(), image.Height()
	skip := rowSkip(height, pure)

	var hits []FinderPattern
	for y := skip - 1; y < height; y += skip {
		var counts [5]int
		state := 0
		for x := 0; x < width; x++ {
			if image.Get(x, y) {
				if state&1 == 1 {
					state++
				}
				counts[state]++
				continue
			}
			if state&1 == 1 {
				counts[state]++
				continue
			}
			if state == 0 && counts[0] == 0 {
				// leading light pixels
				continue
			}
			if state < 4 {
				state++
				counts[state]++
				continue
			}
			if hit, ok := crossCheckFinder(image, counts, x, y); ok {
				hits = append(hits, hit)
			}
			counts = [5]int{counts[2], counts[3], counts[4], 1, 0}
			state = 3
		}
		if state == 4 {
			if hit, ok := crossCheckFinder(image, counts, width, y); ok {
				hits = append(hits, hit)
			}
		}
	}
	return hits
}

// foundFinderPattern reports whether counts are in 1:1:3:1:1 ratio, each run
// within half a module of its expected length.
func foundFinderPattern(counts [5]int) bool {
	total := 0
	for _, c := range counts {
		if c == 0 {
			return false
		}
		total += c
	}
	if total < 7 {
		return false
	}
	moduleSize := float64(total) / 7.0
	maxVariance := moduleSize / 2.0
	return math.Abs(moduleSize-float64(counts[0])) < maxVariance &&
		math.Abs(moduleSize-float64(counts[1])) < maxVariance &&
		math.Abs(3*moduleSize-float64(counts[2])) < 3*maxVariance &&
		math.Abs(moduleSize-float64(counts[3])) < maxVariance &&
		math.Abs(moduleSize-float64(counts[4])) < maxVariance
}

func sum5(counts [5]int) int {
	return counts[0] + counts[1] + counts[2] + counts[3] + counts[4]
}

// crossCheckFinder confirms a horizontal hit ending at column end on row y.
func crossCheckFinder(image *bitutil.BitMatrix, counts [5]int, end, y int) (FinderPattern, bool) {
	if !foundFinderPattern(counts) {
		return FinderPattern{}, false
	}
	total := sum5(counts)
	centerX := float64(end-counts[4]-counts[3]) - float64(counts[2])/2.0

	offY, vTotal, ok := crossCheck(image, int(centerX), y, 0, 1, counts[2])
	if !ok || !withinTotal(vTotal, total) {
		return FinderPattern{}, false
	}
	centerY := float64(y) + offY

	offX, hTotal, ok := crossCheck(image, int(centerX), int(centerY), 1, 0, counts[2])
	if !ok || !withinTotal(hTotal, total) {
		return FinderPattern{}, false
	}
	centerX = float64(int(centerX)) + offX

	if _, _, ok := crossCheck(image, int(centerX), int(centerY), 1, 1, counts[2]); !ok {
		return FinderPattern{}, false
	}
	return FinderPattern{
		X:                   centerX,
		Y:                   centerY,
		EstimatedModuleSize: float64(hTotal+vTotal) / 14.0,
		Count:               1,
	}, true
}

// withinTotal reports whether got is within 40% of want.
func withinTotal(got, want int) bool {
	return 5*abs(got-want) < 2*want
}

// crossCheck walks from (cx, cy) along (dx, dy) in both directions counting
// the five runs of a finder pattern. It returns the centre of the middle run
// as an offset in steps from the left edge of (cx, cy), and the total run
// length. Outer runs longer than maxCount fail the check.
func crossCheck(image *bitutil.BitMatrix, cx, cy, dx, dy, maxCount int) (float64, int, bool) {
	width, height := image.Width(), image.Height()
	inside := func(k int) bool {
		x, y := cx+k*dx, cy+k*dy
		return x >= 0 && x < width && y >= 0 && y < height
	}
	dark := func(k int) bool {
		return image.Get(cx+k*dx, cy+k*dy)
	}
	if !inside(0) || !dark(0) {
		return 0, 0, false
	}

	var counts [5]int
	back := 0
	k := 0
	for inside(k) && dark(k) {
		counts[2]++
		back++
		k--
	}
	if !inside(k) {
		return 0, 0, false
	}
	for inside(k) && !dark(k) && counts[1] <= maxCount {
		counts[1]++
		k--
	}
	if !inside(k) || counts[1] > maxCount {
		return 0, 0, false
	}
	for inside(k) && dark(k) && counts[0] <= maxCount {
		counts[0]++
		k--
	}
	if counts[0] > maxCount {
		return 0, 0, false
	}

	k = 1
	for inside(k) && dark(k) {
		counts[2]++
		k++
	}
	if !inside(k) {
		return 0, 0, false
	}
	for inside(k) && !dark(k) && counts[3] <= maxCount {
		counts[3]++
		k++
	}
	if !inside(k) || counts[3] > maxCount {
		return 0, 0, false
	}
	for inside(k) && dark(k) && counts[4] <= maxCount {
		counts[4]++
		k++
	}
	if counts[4] > maxCount || !foundFinderPattern(counts) {
		return 0, 0, false
	}

	// The middle run covers steps 1-back .. counts[2]-back.
	offset := float64(1-back) + float64(counts[2])/2.0
	return offset, sum5(counts), true
}

// Cluster merges hits lying within one module size of each other into
// averaged candidates weighted by Count. The result keeps first-seen order.
func Cluster(hits []FinderPattern) []FinderPattern {
	var out []FinderPattern
	for _, h := range hits {
		merged := false
		for i, c := range out {
			if c.aboutEquals(h) {
				out[i] = c.combine(h)
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, h)
		}
	}
	return out
}

// SelectBest picks the three candidates forming the triangle closest to an
// isosceles right triangle and assigns their roles. Candidates confirmed on
// two or more scan lines are tried first; when they hold no consistent
// triple, every candidate is searched.
func SelectBest(candidates []FinderPattern) (FinderPatternInfo, error) {
	if len(candidates) < 3 {
		return FinderPatternInfo{}, fmt.Errorf("%w: %d candidates", qrsnap.ErrNoFinderPatterns, len(candidates))
	}

	var confirmed []FinderPattern
	for _, c := range candidates {
		if c.Count >= 2 {
			confirmed = append(confirmed, c)
		}
	}
	if len(confirmed) >= 3 {
		if info, ok := bestTriple(confirmed); ok {
			return info, nil
		}
	}
	if info, ok := bestTriple(candidates); ok {
		return info, nil
	}
	return FinderPatternInfo{}, fmt.Errorf("%w: no consistent triple among %d candidates", qrsnap.ErrNoFinderPatterns, len(candidates))
}

// bestTriple scores every triple among the maxSelectCandidates most
// confirmed entries of pool.
func bestTriple(pool []FinderPattern) (FinderPatternInfo, bool) {
	pool = append([]FinderPattern(nil), pool...)
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].Count > pool[j].Count })
	if len(pool) > maxSelectCandidates {
		pool = pool[:maxSelectCandidates]
	}

	var best FinderPatternInfo
	bestScore := math.Inf(1)
	for i := 0; i < len(pool); i++ {
		for j := i + 1; j < len(pool); j++ {
			for k := j + 1; k < len(pool); k++ {
				info, score, ok := scoreTriple(pool[i], pool[j], pool[k])
				if ok && score < bestScore {
					best, bestScore = info, score
				}
			}
		}
	}
	return best, !math.IsInf(bestScore, 1)
}

const (
	maxAngleDeviation = 25 * math.Pi / 180
	minLegModules     = 12
)

// scoreTriple orders a, b and c and scores how far they are from an
// isosceles right triangle. Lower is better.
func scoreTriple(a, b, c FinderPattern) (FinderPatternInfo, float64, bool) {
	minSize := min(a.EstimatedModuleSize, b.EstimatedModuleSize, c.EstimatedModuleSize)
	maxSize := max(a.EstimatedModuleSize, b.EstimatedModuleSize, c.EstimatedModuleSize)
	if maxSize-minSize > 0.5*maxSize {
		return FinderPatternInfo{}, 0, false
	}
	spread := (maxSize - minSize) / maxSize

	patterns := [3]FinderPattern{a, b, c}
	tl, tr, bl := qrsnap.OrderBestPatterns([3]qrsnap.ResultPoint{a.Point(), b.Point(), c.Point()})
	info := FinderPatternInfo{
		TopLeft:    byPoint(patterns, tl),
		TopRight:   byPoint(patterns, tr),
		BottomLeft: byPoint(patterns, bl),
	}

	legA := qrsnap.Distance(tl, tr)
	legB := qrsnap.Distance(tl, bl)
	hyp := qrsnap.Distance(tr, bl)
	if legA == 0 || legB == 0 {
		return FinderPatternInfo{}, 0, false
	}
	moduleSize := (a.EstimatedModuleSize + b.EstimatedModuleSize + c.EstimatedModuleSize) / 3
	if (legA+legB)/2 < minLegModules*moduleSize {
		return FinderPatternInfo{}, 0, false
	}
	if math.Abs(legA-legB) > 0.5*max(legA, legB) {
		return FinderPatternInfo{}, 0, false
	}
	cos := ((tr.X-tl.X)*(bl.X-tl.X) + (tr.Y-tl.Y)*(bl.Y-tl.Y)) / (legA * legB)
	if math.Abs(math.Acos(max(-1, min(1, cos)))-math.Pi/2) > maxAngleDeviation {
		return FinderPatternInfo{}, 0, false
	}

	score := math.Abs(legA*legA+legB*legB-hyp*hyp)/(hyp*hyp) +
		math.Abs(legA-legB)/max(legA, legB) + spread
	return info, score, true
}

func byPoint(patterns [3]FinderPattern, p qrsnap.ResultPoint) FinderPattern {
	for _, fp := range patterns {
		if fp.Point() == p {
			return fp
		}
	}
	return patterns[0]
}

// FindFinderPatterns runs FindCandidates, Cluster and SelectBest.
func FindFinderPatterns(image *bitutil.BitMatrix, pure bool) (FinderPatternInfo, error) {
	return SelectBest(Cluster(FindCandidates(image, pure)))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
