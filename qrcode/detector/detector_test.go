package detector

import (
	"errors"
	"math"
	"testing"

	"github.com/qrsnap/qrsnap"
	"github.com/qrsnap/qrsnap/bitutil"
	"github.com/qrsnap/qrsnap/internal/qrtest"
	"github.com/qrsnap/qrsnap/qrcode/decoder"
)

// render scales m by scale with a light margin of margin modules.
func render(m *bitutil.BitMatrix, scale, margin int) *bitutil.BitMatrix {
	size := (m.Width() + 2*margin) * scale
	img := bitutil.NewBitMatrix(size)
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			if m.Get(x, y) {
				img.SetRegion((x+margin)*scale, (y+margin)*scale, scale, scale)
			}
		}
	}
	return img
}

func symbol(t *testing.T, version int, text string) *bitutil.BitMatrix {
	t.Helper()
	sym, err := qrtest.Encode(version, decoder.ECLevelM, 2, qrtest.Bytes([]byte(text)))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return sym.Matrix()
}

func TestFindFinderPatterns(t *testing.T) {
	const scale, margin = 4, 4
	m := symbol(t, 1, "HELLO")
	img := render(m, scale, margin)

	info, err := FindFinderPatterns(img, false)
	if err != nil {
		t.Fatalf("FindFinderPatterns: %v", err)
	}
	centre := func(mx, my float64) qrsnap.ResultPoint {
		return qrsnap.ResultPoint{X: (mx + margin) * scale, Y: (my + margin) * scale}
	}
	far := float64(m.Width()) - 3.5
	tests := []struct {
		desc string
		got  FinderPattern
		want qrsnap.ResultPoint
	}{
		{desc: "top-left", got: info.TopLeft, want: centre(3.5, 3.5)},
		{desc: "top-right", got: info.TopRight, want: centre(far, 3.5)},
		{desc: "bottom-left", got: info.BottomLeft, want: centre(3.5, far)},
	}
	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			if d := qrsnap.Distance(tc.got.Point(), tc.want); d > 1 {
				t.Errorf("centre = %v, want %v", tc.got.Point(), tc.want)
			}
			if math.Abs(tc.got.EstimatedModuleSize-scale) > 0.5 {
				t.Errorf("module size = %.2f, want %d", tc.got.EstimatedModuleSize, scale)
			}
			if tc.got.Count < 2 {
				t.Errorf("Count = %d, want at least 2", tc.got.Count)
			}
		})
	}
}

func TestDetectRecoversMatrix(t *testing.T) {
	tests := []struct {
		desc    string
		version int
		scale   int
		rotate  int
	}{
		{desc: "version 1", version: 1, scale: 4},
		{desc: "version 2 with alignment", version: 2, scale: 5},
		{desc: "version 7", version: 7, scale: 4},
		{desc: "version 1 rotated", version: 1, scale: 4, rotate: 1},
		{desc: "version 3 upside down", version: 3, scale: 4, rotate: 2},
		{desc: "version 2 rotated three quarters", version: 2, scale: 4, rotate: 3},
	}
	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			m := symbol(t, tc.version, "detector test")
			shown := m
			for i := 0; i < tc.rotate; i++ {
				shown = qrtest.Rotate90(shown)
			}
			res, err := NewDetector(render(shown, tc.scale, 4), nil).Detect()
			if err != nil {
				t.Fatalf("Detect: %v", err)
			}
			if !res.Bits.Equals(m) {
				t.Errorf("sampled matrix differs:\n%s\nwant:\n%s", res.Bits, m)
			}
			wantPoints := 3
			if tc.version >= 2 {
				wantPoints = 4
			}
			if len(res.Points) != wantPoints {
				t.Errorf("len(Points) = %d, want %d", len(res.Points), wantPoints)
			}
		})
	}
}

func TestDetectPureBarcode(t *testing.T) {
	m := symbol(t, 1, "pure")
	res, err := NewDetector(render(m, 2, 4), &qrsnap.Options{PureBarcode: true}).Detect()
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if !res.Bits.Equals(m) {
		t.Errorf("sampled matrix differs")
	}
}

func TestDetectNoFinderPatterns(t *testing.T) {
	tests := []struct {
		desc string
		img  *bitutil.BitMatrix
	}{
		{desc: "all light", img: bitutil.NewBitMatrix(100)},
		{desc: "all dark", img: func() *bitutil.BitMatrix {
			m := bitutil.NewBitMatrix(100)
			m.SetRegion(0, 0, 100, 100)
			return m
		}()},
	}
	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := NewDetector(tc.img, nil).Detect()
			if !errors.Is(err, qrsnap.ErrNoFinderPatterns) {
				t.Errorf("Detect error = %v, want ErrNoFinderPatterns", err)
			}
		})
	}
}

func TestSelectBest(t *testing.T) {
	fp := func(x, y float64, count int) FinderPattern {
		return FinderPattern{X: x, Y: y, EstimatedModuleSize: 4, Count: count}
	}
	tests := []struct {
		desc       string
		candidates []FinderPattern
		wantErr    bool
		wantTL     qrsnap.ResultPoint
	}{
		{
			desc:       "exact triple",
			candidates: []FinderPattern{fp(200, 30, 3), fp(30, 30, 3), fp(30, 200, 3)},
			wantTL:     qrsnap.ResultPoint{X: 30, Y: 30},
		},
		{
			desc: "decoy ignored",
			candidates: []FinderPattern{
				fp(30, 30, 3), fp(120, 90, 3), fp(200, 30, 3), fp(30, 200, 3),
			},
			wantTL: qrsnap.ResultPoint{X: 30, Y: 30},
		},
		{
			desc: "single hits lose to confirmed ones",
			candidates: []FinderPattern{
				fp(30, 30, 4), fp(200, 30, 4), fp(60, 60, 1), fp(30, 200, 4),
			},
			wantTL: qrsnap.ResultPoint{X: 30, Y: 30},
		},
		{
			desc: "confirmed hits without a triple fall back to single hits",
			candidates: []FinderPattern{
				fp(400, 400, 3), fp(500, 400, 2), fp(600, 400, 3),
				fp(30, 30, 1), fp(200, 30, 1), fp(30, 200, 1),
			},
			wantTL: qrsnap.ResultPoint{X: 30, Y: 30},
		},
		{
			desc:       "too few",
			candidates: []FinderPattern{fp(30, 30, 3), fp(200, 30, 3)},
			wantErr:    true,
		},
		{
			desc:       "collinear",
			candidates: []FinderPattern{fp(30, 30, 3), fp(120, 30, 3), fp(200, 30, 3)},
			wantErr:    true,
		},
		{
			desc:       "legs too unequal",
			candidates: []FinderPattern{fp(30, 30, 3), fp(300, 30, 3), fp(30, 100, 3)},
			wantErr:    true,
		},
		{
			desc: "module sizes inconsistent",
			candidates: []FinderPattern{
				fp(30, 30, 3), fp(200, 30, 3),
				{X: 30, Y: 200, EstimatedModuleSize: 12, Count: 3},
			},
			wantErr: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			info, err := SelectBest(tc.candidates)
			if tc.wantErr {
				if !errors.Is(err, qrsnap.ErrNoFinderPatterns) {
					t.Fatalf("SelectBest error = %v, want ErrNoFinderPatterns", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SelectBest: %v", err)
			}
			if info.TopLeft.Point() != tc.wantTL {
				t.Errorf("TopLeft = %v, want %v", info.TopLeft.Point(), tc.wantTL)
			}
		})
	}
}

func TestCluster(t *testing.T) {
	hits := []FinderPattern{
		{X: 10, Y: 10, EstimatedModuleSize: 2, Count: 1},
		{X: 11, Y: 10, EstimatedModuleSize: 2, Count: 1},
		{X: 50, Y: 10, EstimatedModuleSize: 2, Count: 1},
		{X: 10, Y: 12, EstimatedModuleSize: 2, Count: 1},
	}
	got := Cluster(hits)
	if len(got) != 2 {
		t.Fatalf("len(Cluster) = %d, want 2", len(got))
	}
	if got[0].Count != 3 {
		t.Errorf("Count = %d, want 3", got[0].Count)
	}
	if math.Abs(got[0].X-31.0/3) > 1e-9 || math.Abs(got[0].Y-32.0/3) > 1e-9 {
		t.Errorf("merged centre = (%.3f,%.3f)", got[0].X, got[0].Y)
	}
}

func TestComputeDimension(t *testing.T) {
	tests := []struct {
		desc     string
		spacing  float64
		want     int
		wantFail bool
	}{
		{desc: "exact version 1", spacing: 14, want: 21},
		{desc: "rounds up to 4k+1", spacing: 17, want: 25},
		{desc: "rounds down to 4k+1", spacing: 19, want: 25},
		{desc: "ambiguous", spacing: 16, wantFail: true},
		{desc: "too small", spacing: 10, wantFail: true},
		{desc: "too large", spacing: 178, wantFail: true},
	}
	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			tl := qrsnap.ResultPoint{X: 0, Y: 0}
			tr := qrsnap.ResultPoint{X: tc.spacing, Y: 0}
			bl := qrsnap.ResultPoint{X: 0, Y: tc.spacing}
			got, err := computeDimension(tl, tr, bl, 1)
			if tc.wantFail {
				if !errors.Is(err, qrsnap.ErrNoFinderPatterns) {
					t.Fatalf("error = %v, want ErrNoFinderPatterns", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("computeDimension: %v", err)
			}
			if got != tc.want {
				t.Errorf("dimension = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestFindAlignmentCandidates(t *testing.T) {
	const scale, margin = 4, 4
	m := symbol(t, 2, "align")
	img := render(m, scale, margin)
	// Version 2 has its alignment centre at module (18, 18).
	want := qrsnap.ResultPoint{X: (18.5 + margin) * scale, Y: (18.5 + margin) * scale}

	ap, ok := locateAlignment(img, want, scale)
	if !ok {
		t.Fatal("no alignment pattern found")
	}
	if d := qrsnap.Distance(ap.Point(), want); d > 1 {
		t.Errorf("alignment = %v, want %v", ap.Point(), want)
	}
}

func TestPlausibleAlignment(t *testing.T) {
	img := bitutil.NewBitMatrix(100)
	predicted := qrsnap.ResultPoint{X: 50, Y: 50}
	tests := []struct {
		desc string
		ap   AlignmentPattern
		want bool
	}{
		{desc: "at prediction", ap: AlignmentPattern{X: 50, Y: 50}, want: true},
		{desc: "within a quarter", ap: AlignmentPattern{X: 60, Y: 50}, want: true},
		{desc: "too far", ap: AlignmentPattern{X: 80, Y: 50}, want: false},
		{desc: "outside image", ap: AlignmentPattern{X: -1, Y: 50}, want: false},
	}
	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			if got := plausibleAlignment(img, tc.ap, predicted, 80); got != tc.want {
				t.Errorf("plausibleAlignment = %v, want %v", got, tc.want)
			}
		})
	}
}
