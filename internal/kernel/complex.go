// Package kernel implements complex arithmetic with IEEE-754 aware edge-case
// handling. It is the evaluation semantics behind constant folding.
//
// Every function is generic over the element precision so that complex<f32>
// folds compute in float32 and complex<f64> folds in float64. Transcendental
// functions evaluate in float64 and round once to the element type.
//
// Domain errors are values: log of zero yields -Inf, division by the zero
// complex value yields NaN components. Nothing in this package panics or
// returns an error.
package kernel

import "math"

// Float is the set of supported element types.
type Float interface {
	~float32 | ~float64
}

// Complex is an immutable complex value.
type Complex[F Float] struct {
	Re F
	Im F
}

// New bundles two reals into a complex value.
func New[F Float](re, im F) Complex[F] {
	return Complex[F]{Re: re, Im: im}
}

// Add returns x + y.
func Add[F Float](x, y Complex[F]) Complex[F] {
	return Complex[F]{Re: x.Re + y.Re, Im: x.Im + y.Im}
}

// Sub returns x - y.
func Sub[F Float](x, y Complex[F]) Complex[F] {
	return Complex[F]{Re: x.Re - y.Re, Im: x.Im - y.Im}
}

// Mul returns x * y using the textbook formula. Overflow is not mitigated.
func Mul[F Float](x, y Complex[F]) Complex[F] {
	return Complex[F]{
		Re: x.Re*y.Re - x.Im*y.Im,
		Im: x.Re*y.Im + x.Im*y.Re,
	}
}

// Div returns x / y with Smith's algorithm: the divisor is scaled by its
// larger component before combining, so large divisors do not overflow the
// intermediate c²+d² and small ones do not underflow it.
// A zero divisor yields NaN components.
func Div[F Float](x, y Complex[F]) Complex[F] {
	a, b, c, d := x.Re, x.Im, y.Re, y.Im
	if abs(c) >= abs(d) {
		r := d / c
		den := c + d*r
		return Complex[F]{Re: (a + b*r) / den, Im: (b - a*r) / den}
	}
	r := c / d
	den := d + c*r
	return Complex[F]{Re: (a*r + b) / den, Im: (b*r - a) / den}
}

// Abs returns |x| = sqrt(re² + im²), factoring out max(|re|, |im|) so the
// sum of squares neither overflows nor underflows.
func Abs[F Float](x Complex[F]) F {
	a, b := abs(x.Re), abs(x.Im)
	if isInf(a) || isInf(b) {
		return F(math.Inf(1))
	}
	if a != a || b != b {
		return F(math.NaN())
	}
	hi, lo := a, b
	if lo > hi {
		hi, lo = lo, hi
	}
	if hi == 0 {
		return 0
	}
	r := lo / hi
	return hi * F(math.Sqrt(float64(1+r*r)))
}

// Exp returns e^x = e^re · (cos im, sin im).
// A zero imaginary part is passed through so that overflow of e^re does not
// turn the imaginary component into Inf·0 = NaN.
func Exp[F Float](x Complex[F]) Complex[F] {
	e := math.Exp(float64(x.Re))
	if x.Im == 0 {
		return Complex[F]{Re: F(e), Im: x.Im}
	}
	s, c := math.Sincos(float64(x.Im))
	return Complex[F]{Re: F(e * c), Im: F(e * s)}
}

// Log returns the principal branch (ln|x|, atan2(im, re)).
func Log[F Float](x Complex[F]) Complex[F] {
	return Complex[F]{
		Re: F(math.Log(float64(Abs(x)))),
		Im: F(math.Atan2(float64(x.Im), float64(x.Re))),
	}
}

// Sign returns x / |x|, or zero for the zero value. The zero check is exact
// on both components and happens before dividing.
func Sign[F Float](x Complex[F]) Complex[F] {
	if x.Re == 0 && x.Im == 0 {
		return Complex[F]{}
	}
	m := Abs(x)
	return Complex[F]{Re: x.Re / m, Im: x.Im / m}
}

// Neg returns -x.
func Neg[F Float](x Complex[F]) Complex[F] {
	return Complex[F]{Re: -x.Re, Im: -x.Im}
}

// Equal compares component-wise with IEEE semantics: any NaN component
// makes the values unequal.
func Equal[F Float](x, y Complex[F]) bool {
	return x.Re == y.Re && x.Im == y.Im
}

// NotEqual is the negation of Equal; it reports true on NaN components.
func NotEqual[F Float](x, y Complex[F]) bool {
	return x.Re != y.Re || x.Im != y.Im
}

// Identical compares bitwise, distinguishing signed zeros and NaN payloads.
func Identical[F Float](x, y Complex[F]) bool {
	return bits(x.Re) == bits(y.Re) && bits(x.Im) == bits(y.Im)
}

func abs[F Float](f F) F {
	return F(math.Abs(float64(f)))
}

func isInf[F Float](f F) bool {
	return math.IsInf(float64(f), 0)
}

func bits[F Float](f F) uint64 {
	switch v := any(f).(type) {
	case float32:
		return uint64(math.Float32bits(v))
	default:
		return math.Float64bits(float64(f))
	}
}
