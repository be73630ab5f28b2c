package reedsolomon

import "sync"

// Encoder computes error-correction codewords. It is safe for concurrent use.
type Encoder struct {
	field      *Field
	mu         sync.Mutex
	generators []*Poly
}

// NewEncoder creates an Encoder over field.
func NewEncoder(field *Field) *Encoder {
	return &Encoder{
		field:      field,
		generators: []*Poly{field.One()},
	}
}

func (e *Encoder) generator(degree int) *Poly {
	e.mu.Lock()
	defer e.mu.Unlock()
	for d := len(e.generators); d <= degree; d++ {
		last := e.generators[d-1]
		next := last.MultiplyPoly(e.field.NewPoly([]int{1, e.field.Exp(d - 1 + e.field.GeneratorBase())}))
		e.generators = append(e.generators, next)
	}
	return e.generators[degree]
}

// Encode fills the last ecBytes entries of toEncode with error-correction
// codewords for the data before them.
func (e *Encoder) Encode(toEncode []int, ecBytes int) {
	if ecBytes <= 0 {
		panic("reedsolomon: no error correction bytes")
	}
	dataBytes := len(toEncode) - ecBytes
	if dataBytes <= 0 {
		panic("reedsolomon: no data bytes provided")
	}
	info := e.field.NewPoly(toEncode[:dataBytes]).MultiplyByMonomial(ecBytes, 1)
	_, remainder := info.Divide(e.generator(ecBytes))
	coefficients := remainder.Coefficients()
	numZero := ecBytes - len(coefficients)
	for i := 0; i < numZero; i++ {
		toEncode[dataBytes+i] = 0
	}
	copy(toEncode[dataBytes+numZero:], coefficients)
}
