package qrsnap

import "testing"

func TestOrderBestPatterns(t *testing.T) {
	tl := ResultPoint{X: 10, Y: 10}
	tr := ResultPoint{X: 110, Y: 10}
	bl := ResultPoint{X: 10, Y: 110}

	perms := [][3]ResultPoint{
		{tl, tr, bl}, {tl, bl, tr}, {tr, tl, bl},
		{tr, bl, tl}, {bl, tl, tr}, {bl, tr, tl},
	}
	for _, p := range perms {
		gotTL, gotTR, gotBL := OrderBestPatterns(p)
		if gotTL != tl || gotTR != tr || gotBL != bl {
			t.Errorf("OrderBestPatterns(%v) = %v %v %v", p, gotTL, gotTR, gotBL)
		}
	}
}

func TestOrderBestPatternsRotated(t *testing.T) {
	// Code rotated 90 degrees clockwise: top-left lands top-right in the image.
	tl := ResultPoint{X: 110, Y: 10}
	tr := ResultPoint{X: 110, Y: 110}
	bl := ResultPoint{X: 10, Y: 10}
	gotTL, gotTR, gotBL := OrderBestPatterns([3]ResultPoint{bl, tr, tl})
	if gotTL != tl || gotTR != tr || gotBL != bl {
		t.Errorf("got %v %v %v", gotTL, gotTR, gotBL)
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := ResolveOptions(nil)
	if o.CellsPerSide != DefaultCellsPerSide || o.MaxPixels != DefaultMaxPixels {
		t.Errorf("defaults = %+v", o)
	}
	o = ResolveOptions(&Options{CellsPerSide: 8})
	if o.CellsPerSide != 8 {
		t.Errorf("CellsPerSide = %d, want 8", o.CellsPerSide)
	}
	// Nil logger must not panic.
	o.Warnf("x %d", 1)
}
