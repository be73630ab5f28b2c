// Package transform maps module space onto image space.
package transform

import "github.com/qrsnap/qrsnap"

// Quad is four corners in order: top-left, top-right, bottom-right, bottom-left.
type Quad [4]qrsnap.ResultPoint

// PerspectiveTransform is a 3x3 homogeneous projective mapping with a33
// normalised to 1 for the square-to-quad form. Points are row vectors:
// [x' y' w'] = [x y 1] * M.
type PerspectiveTransform struct {
	a11, a12, a13 float64
	a21, a22, a23 float64
	a31, a32, a33 float64
}

// QuadToQuad returns the transform taking from onto to.
func QuadToQuad(from, to Quad) *PerspectiveTransform {
	return SquareToQuad(to).Times(QuadToSquare(from))
}

// SquareToQuad maps the unit square (0,0),(1,0),(1,1),(0,1) onto q.
func SquareToQuad(q Quad) *PerspectiveTransform {
	x0, y0 := q[0].X, q[0].Y
	x1, y1 := q[1].X, q[1].Y
	x2, y2 := q[2].X, q[2].Y
	x3, y3 := q[3].X, q[3].Y

	sx := x0 - x1 + x2 - x3
	sy := y0 - y1 + y2 - y3
	if sx == 0 && sy == 0 {
		// Parallelogram.
		return &PerspectiveTransform{
			a11: x1 - x0, a12: y1 - y0, a13: 0,
			a21: x2 - x1, a22: y2 - y1, a23: 0,
			a31: x0, a32: y0, a33: 1,
		}
	}
	dx1, dy1 := x1-x2, y1-y2
	dx2, dy2 := x3-x2, y3-y2
	det := dx1*dy2 - dx2*dy1
	g := (sx*dy2 - dx2*sy) / det
	h := (dx1*sy - sx*dy1) / det
	return &PerspectiveTransform{
		a11: x1 - x0 + g*x1, a12: y1 - y0 + g*y1, a13: g,
		a21: x3 - x0 + h*x3, a22: y3 - y0 + h*y3, a23: h,
		a31: x0, a32: y0, a33: 1,
	}
}

// QuadToSquare maps q onto the unit square.
func QuadToSquare(q Quad) *PerspectiveTransform {
	return SquareToQuad(q).Adjoint()
}

// Adjoint returns the adjugate matrix, which inverts the mapping up to scale.
func (m *PerspectiveTransform) Adjoint() *PerspectiveTransform {
	return &PerspectiveTransform{
		a11: m.a22*m.a33 - m.a23*m.a32,
		a12: m.a13*m.a32 - m.a12*m.a33,
		a13: m.a12*m.a23 - m.a13*m.a22,
		a21: m.a23*m.a31 - m.a21*m.a33,
		a22: m.a11*m.a33 - m.a13*m.a31,
		a23: m.a13*m.a21 - m.a11*m.a23,
		a31: m.a21*m.a32 - m.a22*m.a31,
		a32: m.a12*m.a31 - m.a11*m.a32,
		a33: m.a11*m.a22 - m.a12*m.a21,
	}
}

// Times returns the composition that applies other first, then m.
func (m *PerspectiveTransform) Times(other *PerspectiveTransform) *PerspectiveTransform {
	o := other
	return &PerspectiveTransform{
		a11: o.a11*m.a11 + o.a12*m.a21 + o.a13*m.a31,
		a12: o.a11*m.a12 + o.a12*m.a22 + o.a13*m.a32,
		a13: o.a11*m.a13 + o.a12*m.a23 + o.a13*m.a33,
		a21: o.a21*m.a11 + o.a22*m.a21 + o.a23*m.a31,
		a22: o.a21*m.a12 + o.a22*m.a22 + o.a23*m.a32,
		a23: o.a21*m.a13 + o.a22*m.a23 + o.a23*m.a33,
		a31: o.a31*m.a11 + o.a32*m.a21 + o.a33*m.a31,
		a32: o.a31*m.a12 + o.a32*m.a22 + o.a33*m.a32,
		a33: o.a31*m.a13 + o.a32*m.a23 + o.a33*m.a33,
	}
}

// Apply maps a single point.
func (m *PerspectiveTransform) Apply(p qrsnap.ResultPoint) qrsnap.ResultPoint {
	w := m.a13*p.X + m.a23*p.Y + m.a33
	return qrsnap.ResultPoint{
		X: (m.a11*p.X + m.a21*p.Y + m.a31) / w,
		Y: (m.a12*p.X + m.a22*p.Y + m.a32) / w,
	}
}

// TransformPoints maps interleaved x, y pairs in place.
func (m *PerspectiveTransform) TransformPoints(points []float64) {
	for i := 0; i+1 < len(points); i += 2 {
		p := m.Apply(qrsnap.ResultPoint{X: points[i], Y: points[i+1]})
		points[i], points[i+1] = p.X, p.Y
	}
}
