// Package reedsolomon implements Reed-Solomon coding over GF(256).
package reedsolomon

import (
	"fmt"
	"sync"
)

// Field is a Galois field GF(size) built from a primitive polynomial.
// Fields are immutable once built.
type Field struct {
	expTable      []int
	logTable      []int
	zero          *Poly
	one           *Poly
	size          int
	primitive     int
	generatorBase int
}

// QRField returns GF(256) with primitive x^8 + x^4 + x^3 + x^2 + 1 and
// generator base 0. The tables are built on first use.
var QRField = sync.OnceValue(func() *Field {
	return NewField(0x011D, 256, 0)
})

// NewField builds exp/log tables for GF(size).
func NewField(primitive, size, generatorBase int) *Field {
	f := &Field{
		primitive:     primitive,
		size:          size,
		generatorBase: generatorBase,
		expTable:      make([]int, size),
		logTable:      make([]int, size),
	}
	x := 1
	for i := 0; i < size; i++ {
		f.expTable[i] = x
		x <<= 1
		if x >= size {
			x ^= primitive
			x &= size - 1
		}
	}
	for i := 0; i < size-1; i++ {
		f.logTable[f.expTable[i]] = i
	}
	f.zero = newPoly(f, []int{0})
	f.one = newPoly(f, []int{1})
	return f
}

// Zero returns the zero polynomial.
func (f *Field) Zero() *Poly { return f.zero }

// One returns the constant polynomial 1.
func (f *Field) One() *Poly { return f.one }

// Monomial returns coefficient * x^degree.
func (f *Field) Monomial(degree, coefficient int) *Poly {
	if degree < 0 {
		panic("reedsolomon: negative degree")
	}
	if coefficient == 0 {
		return f.zero
	}
	coefficients := make([]int, degree+1)
	coefficients[0] = coefficient
	return newPoly(f, coefficients)
}

// NewPoly returns a polynomial with coefficients ordered highest degree first.
func (f *Field) NewPoly(coefficients []int) *Poly {
	c := make([]int, len(coefficients))
	copy(c, coefficients)
	return newPoly(f, c)
}

// Add is addition and subtraction in GF(2^n).
func Add(a, b int) int {
	return a ^ b
}

// Exp returns alpha^a.
func (f *Field) Exp(a int) int {
	return f.expTable[a%(f.size-1)]
}

// Log returns log_alpha(a). a must be non-zero.
func (f *Field) Log(a int) int {
	if a == 0 {
		panic("reedsolomon: log(0)")
	}
	return f.logTable[a]
}

// Inverse returns the multiplicative inverse of a non-zero a.
func (f *Field) Inverse(a int) int {
	if a == 0 {
		panic("reedsolomon: inverse(0)")
	}
	return f.expTable[f.size-f.logTable[a]-1]
}

// Multiply returns a * b.
func (f *Field) Multiply(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return f.expTable[(f.logTable[a]+f.logTable[b])%(f.size-1)]
}

// Size returns the number of field elements.
func (f *Field) Size() int { return f.size }

// GeneratorBase returns the first consecutive root exponent of the generator.
func (f *Field) GeneratorBase() int { return f.generatorBase }

func (f *Field) String() string {
	return fmt.Sprintf("GF(0x%x,%d)", f.primitive, f.size)
}
