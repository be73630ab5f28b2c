package reedsolomon

// Poly is an immutable polynomial over a Field. Coefficients are stored
// highest degree first with no leading zeros except for the zero polynomial.
type Poly struct {
	field        *Field
	coefficients []int
}

func newPoly(field *Field, coefficients []int) *Poly {
	if len(coefficients) == 0 {
		panic("reedsolomon: empty coefficients")
	}
	first := 0
	for first < len(coefficients)-1 && coefficients[first] == 0 {
		first++
	}
	return &Poly{field: field, coefficients: coefficients[first:]}
}

// Coefficients returns the coefficients, highest degree first.
func (p *Poly) Coefficients() []int {
	return p.coefficients
}

// Degree returns the degree of p.
func (p *Poly) Degree() int {
	return len(p.coefficients) - 1
}

// IsZero reports whether p is the zero polynomial.
func (p *Poly) IsZero() bool {
	return p.coefficients[0] == 0
}

// Coefficient returns the coefficient of x^degree.
func (p *Poly) Coefficient(degree int) int {
	if degree < 0 || degree > p.Degree() {
		return 0
	}
	return p.coefficients[len(p.coefficients)-1-degree]
}

// EvaluateAt evaluates p at a by Horner's rule.
func (p *Poly) EvaluateAt(a int) int {
	if a == 0 {
		return p.Coefficient(0)
	}
	result := 0
	if a == 1 {
		for _, c := range p.coefficients {
			result = Add(result, c)
		}
		return result
	}
	for _, c := range p.coefficients {
		result = Add(p.field.Multiply(a, result), c)
	}
	return result
}

// AddPoly returns p + other.
func (p *Poly) AddPoly(other *Poly) *Poly {
	if p.IsZero() {
		return other
	}
	if other.IsZero() {
		return p
	}
	smaller, larger := p.coefficients, other.coefficients
	if len(smaller) > len(larger) {
		smaller, larger = larger, smaller
	}
	sum := make([]int, len(larger))
	diff := len(larger) - len(smaller)
	copy(sum, larger[:diff])
	for i := diff; i < len(larger); i++ {
		sum[i] = Add(smaller[i-diff], larger[i])
	}
	return newPoly(p.field, sum)
}

// MultiplyPoly returns p * other.
func (p *Poly) MultiplyPoly(other *Poly) *Poly {
	if p.IsZero() || other.IsZero() {
		return p.field.Zero()
	}
	product := make([]int, len(p.coefficients)+len(other.coefficients)-1)
	for i, a := range p.coefficients {
		for j, b := range other.coefficients {
			product[i+j] = Add(product[i+j], p.field.Multiply(a, b))
		}
	}
	return newPoly(p.field, product)
}

// MultiplyScalar returns scalar * p.
func (p *Poly) MultiplyScalar(scalar int) *Poly {
	switch scalar {
	case 0:
		return p.field.Zero()
	case 1:
		return p
	}
	product := make([]int, len(p.coefficients))
	for i, c := range p.coefficients {
		product[i] = p.field.Multiply(c, scalar)
	}
	return newPoly(p.field, product)
}

// MultiplyByMonomial returns p * coefficient * x^degree.
func (p *Poly) MultiplyByMonomial(degree, coefficient int) *Poly {
	if degree < 0 {
		panic("reedsolomon: negative degree")
	}
	if coefficient == 0 {
		return p.field.Zero()
	}
	product := make([]int, len(p.coefficients)+degree)
	for i, c := range p.coefficients {
		product[i] = p.field.Multiply(c, coefficient)
	}
	return newPoly(p.field, product)
}

// Divide returns the quotient and remainder of p / other.
func (p *Poly) Divide(other *Poly) (quotient, remainder *Poly) {
	if other.IsZero() {
		panic("reedsolomon: divide by zero")
	}
	quotient = p.field.Zero()
	remainder = p
	inverseLead := p.field.Inverse(other.Coefficient(other.Degree()))
	for remainder.Degree() >= other.Degree() && !remainder.IsZero() {
		degreeDiff := remainder.Degree() - other.Degree()
		scale := p.field.Multiply(remainder.Coefficient(remainder.Degree()), inverseLead)
		quotient = quotient.AddPoly(p.field.Monomial(degreeDiff, scale))
		remainder = remainder.AddPoly(other.MultiplyByMonomial(degreeDiff, scale))
	}
	return quotient, remainder
}

// Derivative returns the formal derivative of p. In characteristic 2 only
// odd-degree terms survive.
func (p *Poly) Derivative() *Poly {
	deg := p.Degree()
	if deg == 0 {
		return p.field.Zero()
	}
	result := make([]int, deg)
	for d := 1; d <= deg; d++ {
		if d&1 == 1 {
			result[deg-d] = p.Coefficient(d)
		}
	}
	return newPoly(p.field, result)
}
