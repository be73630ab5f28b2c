package reedsolomon

import (
	"errors"
	"fmt"
)

// ErrUncorrectable is returned when a codeword has more errors than its
// error-correction capacity or an inconsistent error pattern.
var ErrUncorrectable = errors.New("reedsolomon: uncorrectable")

// Algorithm selects how the error locator is derived from the syndromes.
type Algorithm int

const (
	// Euclidean runs the extended Euclidean algorithm on (x^2t, S(x)).
	Euclidean Algorithm = iota
	// BerlekampMassey runs the Berlekamp-Massey recurrence on the syndromes.
	BerlekampMassey
)

func (a Algorithm) String() string {
	switch a {
	case Euclidean:
		return "euclidean"
	case BerlekampMassey:
		return "berlekamp-massey"
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// Decoder corrects errors in received codewords. The zero Algorithm is Euclidean.
type Decoder struct {
	field     *Field
	Algorithm Algorithm
}

// NewDecoder creates a Decoder over field.
func NewDecoder(field *Field) *Decoder {
	return &Decoder{field: field}
}

// Decode corrects received in place and returns the number of corrected
// symbols. twoS is the number of error-correction codewords at the end of
// received.
func (d *Decoder) Decode(received []int, twoS int) (int, error) {
	if twoS <= 0 || twoS >= len(received) {
		return 0, fmt.Errorf("reedsolomon: %d ec codewords for block of %d", twoS, len(received))
	}
	syndromes, clean := d.syndromes(received, twoS)
	if clean {
		return 0, nil
	}

	var sigma, omega *Poly
	var err error
	switch d.Algorithm {
	case BerlekampMassey:
		sigma, omega, err = d.runBerlekampMassey(syndromes, twoS)
	default:
		syndrome := d.field.NewPoly(reversed(syndromes))
		sigma, omega, err = d.runEuclideanAlgorithm(d.field.Monomial(twoS, 1), syndrome, twoS)
	}
	if err != nil {
		return 0, err
	}
	if sigma.Degree() > twoS/2 {
		return 0, fmt.Errorf("%w: %d errors exceed capacity %d", ErrUncorrectable, sigma.Degree(), twoS/2)
	}

	locations, err := d.findErrorLocations(sigma)
	if err != nil {
		return 0, err
	}
	magnitudes := d.findErrorMagnitudes(omega, locations)
	for i, loc := range locations {
		position := len(received) - 1 - d.field.Log(loc)
		if position < 0 {
			return 0, fmt.Errorf("%w: error position outside block", ErrUncorrectable)
		}
		received[position] = Add(received[position], magnitudes[i])
	}
	return len(locations), nil
}

// syndromes evaluates received at alpha^(i+base) for i in [0, twoS).
// syndromes[i] is S_i.
func (d *Decoder) syndromes(received []int, twoS int) ([]int, bool) {
	poly := d.field.NewPoly(received)
	s := make([]int, twoS)
	clean := true
	for i := range s {
		s[i] = poly.EvaluateAt(d.field.Exp(i + d.field.GeneratorBase()))
		if s[i] != 0 {
			clean = false
		}
	}
	return s, clean
}

func reversed(in []int) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}

func (d *Decoder) runEuclideanAlgorithm(a, b *Poly, twoS int) (sigma, omega *Poly, err error) {
	if a.Degree() < b.Degree() {
		a, b = b, a
	}

	rLast := a
	r := b
	tLast := d.field.Zero()
	t := d.field.One()

	for 2*r.Degree() >= twoS {
		rLastLast := rLast
		tLastLast := tLast
		rLast = r
		tLast = t

		if rLast.IsZero() {
			return nil, nil, fmt.Errorf("%w: remainder vanished early", ErrUncorrectable)
		}
		r = rLastLast
		q := d.field.Zero()
		dltInverse := d.field.Inverse(rLast.Coefficient(rLast.Degree()))
		for r.Degree() >= rLast.Degree() && !r.IsZero() {
			degreeDiff := r.Degree() - rLast.Degree()
			scale := d.field.Multiply(r.Coefficient(r.Degree()), dltInverse)
			q = q.AddPoly(d.field.Monomial(degreeDiff, scale))
			r = r.AddPoly(rLast.MultiplyByMonomial(degreeDiff, scale))
		}
		t = q.MultiplyPoly(tLast).AddPoly(tLastLast)

		if r.Degree() >= rLast.Degree() {
			return nil, nil, fmt.Errorf("%w: division did not reduce degree", ErrUncorrectable)
		}
	}

	sigmaTildeAtZero := t.Coefficient(0)
	if sigmaTildeAtZero == 0 {
		return nil, nil, fmt.Errorf("%w: sigma(0) is zero", ErrUncorrectable)
	}
	inverse := d.field.Inverse(sigmaTildeAtZero)
	return t.MultiplyScalar(inverse), r.MultiplyScalar(inverse), nil
}

// runBerlekampMassey returns the error locator and the evaluator
// S(x)*sigma(x) mod x^2t.
func (d *Decoder) runBerlekampMassey(s []int, twoS int) (sigma, omega *Poly, err error) {
	f := d.field
	// c and b hold coefficients lowest degree first.
	c := []int{1}
	b := []int{1}
	l := 0
	m := 1
	lastDiscrepancy := 1
	for n := 0; n < twoS; n++ {
		discrepancy := s[n]
		for i := 1; i <= l && i < len(c); i++ {
			discrepancy = Add(discrepancy, f.Multiply(c[i], s[n-i]))
		}
		if discrepancy == 0 {
			m++
			continue
		}
		scale := f.Multiply(discrepancy, f.Inverse(lastDiscrepancy))
		next := make([]int, max(len(c), len(b)+m))
		copy(next, c)
		for i, v := range b {
			next[i+m] = Add(next[i+m], f.Multiply(scale, v))
		}
		if 2*l <= n {
			b = c
			l = n + 1 - l
			lastDiscrepancy = discrepancy
			m = 1
		} else {
			m++
		}
		c = next
	}

	sigma = f.NewPoly(reversed(c))
	if sigma.Degree() != l {
		return nil, nil, fmt.Errorf("%w: locator degree %d, length %d", ErrUncorrectable, sigma.Degree(), l)
	}

	product := f.NewPoly(reversed(s)).MultiplyPoly(sigma)
	low := make([]int, twoS)
	for i := range low {
		low[twoS-1-i] = product.Coefficient(i)
	}
	return sigma, f.NewPoly(low), nil
}

// findErrorLocations returns X_k for each root X_k^-1 of the locator (Chien search).
func (d *Decoder) findErrorLocations(locator *Poly) ([]int, error) {
	numErrors := locator.Degree()
	if numErrors == 1 {
		return []int{locator.Coefficient(1)}, nil
	}
	result := make([]int, 0, numErrors)
	for i := 1; i < d.field.Size() && len(result) < numErrors; i++ {
		if locator.EvaluateAt(i) == 0 {
			result = append(result, d.field.Inverse(i))
		}
	}
	if len(result) != numErrors {
		return nil, fmt.Errorf("%w: found %d roots for degree %d locator", ErrUncorrectable, len(result), numErrors)
	}
	return result, nil
}

// findErrorMagnitudes applies Forney's formula.
func (d *Decoder) findErrorMagnitudes(evaluator *Poly, locations []int) []int {
	result := make([]int, len(locations))
	for i, loc := range locations {
		xiInverse := d.field.Inverse(loc)
		denominator := 1
		for j, other := range locations {
			if i != j {
				term := d.field.Multiply(other, xiInverse)
				denominator = d.field.Multiply(denominator, Add(1, term))
			}
		}
		result[i] = d.field.Multiply(evaluator.EvaluateAt(xiInverse), d.field.Inverse(denominator))
		if d.field.GeneratorBase() != 0 {
			result[i] = d.field.Multiply(result[i], xiInverse)
		}
	}
	return result
}
