package decoder

import "github.com/qrsnap/qrsnap/bitutil"

// dataMasks are the eight mask predicates over row i and column j.
var dataMasks = [8]func(i, j int) bool{
	func(i, j int) bool { return (i+j)%2 == 0 },
	func(i, j int) bool { return i%2 == 0 },
	func(i, j int) bool { return j%3 == 0 },
	func(i, j int) bool { return (i+j)%3 == 0 },
	func(i, j int) bool { return (i/2+j/3)%2 == 0 },
	func(i, j int) bool { return (i*j)%2+(i*j)%3 == 0 },
	func(i, j int) bool { return ((i*j)%2+(i*j)%3)%2 == 0 },
	func(i, j int) bool { return ((i+j)%2+(i*j)%3)%2 == 0 },
}

// Masked reports whether mask inverts the module at row i, column j.
func Masked(mask, i, j int) bool {
	return dataMasks[mask](i, j)
}

// unmask returns a copy of m with mask removed from every non-function module.
func unmask(m *bitutil.BitMatrix, mask int, function *bitutil.BitMatrix) *bitutil.BitMatrix {
	out := m.Clone()
	predicate := dataMasks[mask]
	dim := m.Height()
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			if !function.Get(j, i) && predicate(i, j) {
				out.Flip(j, i)
			}
		}
	}
	return out
}
