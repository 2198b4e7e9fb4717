package kernel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type c128 = Complex[float64]

func finite(t *testing.T, z c128) {
	t.Helper()
	assert.False(t, math.IsInf(z.Re, 0) || math.IsNaN(z.Re), "real part not finite: %v", z.Re)
	assert.False(t, math.IsInf(z.Im, 0) || math.IsNaN(z.Im), "imaginary part not finite: %v", z.Im)
}

func TestBasicArithmetic(t *testing.T) {
	x := New(1.0, 2.0)
	y := New(3.0, 4.0)

	assert.Equal(t, c128{4, 6}, Add(x, y))
	assert.Equal(t, c128{-2, -2}, Sub(x, y))
	assert.Equal(t, c128{-5, 10}, Mul(x, y))
	assert.Equal(t, c128{1, 2}, Div(c128{-5, 10}, y))
	assert.Equal(t, c128{-1, -2}, Neg(x))
}

func TestAddNegIsSub(t *testing.T) {
	values := []c128{
		{0, 0}, {1, -1}, {1e300, -1e-300}, {-2.5, 3.75}, {math.SmallestNonzeroFloat64, 7},
	}
	for _, x := range values {
		for _, y := range values {
			assert.Equal(t, Sub(x, y), Add(x, Neg(y)), "x=%v y=%v", x, y)
		}
	}
}

func TestDivSelfIsOne(t *testing.T) {
	for _, x := range []c128{{2, 1}, {1, 2}, {3, 4}, {5, 0}, {0, -8}, {-1.5, 0.375}} {
		assert.Equal(t, c128{1, 0}, Div(x, x), "x=%v", x)
	}

	// Non-dyadic ratios round the residual; the result stays within an ulp.
	q := Div(c128{1.1, 3.3}, c128{1.1, 3.3})
	assert.InDelta(t, 1, q.Re, 1e-15)
	assert.InDelta(t, 0, q.Im, 1e-15)
}

func TestDivAvoidsOverflow(t *testing.T) {
	q := Div(c128{1e300, 1e300}, c128{1e300, 0})
	finite(t, q)
	assert.Equal(t, c128{1, 1}, q)

	q = Div(c128{1e300, 1e300}, c128{1e300, 1e300})
	finite(t, q)
	assert.InDelta(t, 1, q.Re, 1e-15)

	q = Div(c128{1e-300, 1e-300}, c128{1e-300, 2e-300})
	finite(t, q)
	assert.InDelta(t, 0.6, q.Re, 1e-15)
	assert.InDelta(t, -0.2, q.Im, 1e-15)

	q32 := Div(Complex[float32]{1e30, 1e30}, Complex[float32]{1e30, 0})
	assert.Equal(t, Complex[float32]{1, 1}, q32)
}

func TestDivByZeroIsNaN(t *testing.T) {
	q := Div(c128{1, 1}, c128{0, 0})
	assert.True(t, math.IsNaN(q.Re))
	assert.True(t, math.IsNaN(q.Im))
}

func TestAbs(t *testing.T) {
	assert.Equal(t, 5.0, Abs(c128{3, 4}))
	assert.Equal(t, 5.0, Abs(c128{-4, 3}))
	assert.Equal(t, 0.0, Abs(c128{0, 0}))
	assert.Equal(t, 2.0, Abs(c128{0, -2}))

	big := Abs(c128{1e200, 1e200})
	assert.False(t, math.IsInf(big, 0))
	assert.InDelta(t, math.Sqrt2, big/1e200, 1e-15)

	tiny := Abs(c128{3e-200, 4e-200})
	assert.InDelta(t, 5, tiny/1e-200, 1e-14)

	assert.True(t, math.IsInf(Abs(c128{math.Inf(-1), math.NaN()}), 1))
	assert.True(t, math.IsNaN(Abs(c128{math.NaN(), 1})))

	assert.Equal(t, float32(5), Abs(Complex[float32]{3, 4}))
	assert.False(t, math.IsInf(float64(Abs(Complex[float32]{1e30, 1e30})), 0))
}

func TestSign(t *testing.T) {
	assert.Equal(t, c128{0, 0}, Sign(c128{0, 0}))
	assert.Equal(t, c128{0.6, 0.8}, Sign(c128{3, 4}))
	assert.Equal(t, c128{-1, 0}, Sign(c128{-7, 0}))

	z := Sign(c128{math.Copysign(0, -1), 0})
	assert.False(t, math.IsNaN(z.Re))
}

func TestSignIdentities(t *testing.T) {
	for _, x := range []c128{{3, 4}, {-1.25, 7}, {1e-300, 2e-300}, {1e300, -1e300}} {
		s := Sign(x)
		assert.InDelta(t, 1, Abs(s), 1e-15, "x=%v", x)

		back := Mul(s, New(Abs(x), 0))
		scale := Abs(x)
		assert.InDelta(t, x.Re/scale, back.Re/scale, 1e-15, "x=%v", x)
		assert.InDelta(t, x.Im/scale, back.Im/scale, 1e-15, "x=%v", x)
	}

	// On the positive real axis x·sign(x) is |x|.
	for _, r := range []float64{0.5, 2, 1e100} {
		x := New(r, 0)
		assert.Equal(t, New(Abs(x), 0), Mul(x, Sign(x)))
	}
}

func TestExp(t *testing.T) {
	assert.Equal(t, c128{1, 0}, Exp(c128{0, 0}))

	z := Exp(c128{0, math.Pi})
	assert.InDelta(t, -1, z.Re, 1e-15)
	assert.InDelta(t, 0, z.Im, 1e-15)

	z = Exp(c128{1, math.Pi / 2})
	assert.InDelta(t, 0, z.Re, 1e-15)
	assert.InDelta(t, math.E, z.Im, 1e-15)

	z = Exp(c128{1000, 0})
	assert.True(t, math.IsInf(z.Re, 1))
	assert.Equal(t, 0.0, z.Im)
}

func TestLog(t *testing.T) {
	assert.Equal(t, c128{0, 0}, Log(c128{1, 0}))

	z := Log(c128{-1, 0})
	assert.Equal(t, 0.0, z.Re)
	assert.Equal(t, math.Pi, z.Im)

	z = Log(c128{-1, math.Copysign(0, -1)})
	assert.Equal(t, -math.Pi, z.Im, "signed zero selects the lower branch")

	z = Log(c128{0, 0})
	assert.True(t, math.IsInf(z.Re, -1))
	assert.Equal(t, 0.0, z.Im)

	z = Log(c128{0, 2})
	assert.InDelta(t, math.Ln2, z.Re, 1e-15)
	assert.InDelta(t, math.Pi/2, z.Im, 1e-15)

	z = Log(c128{1e300, 1e300})
	assert.False(t, math.IsInf(z.Re, 0))
}

func TestExpLogRoundTrip(t *testing.T) {
	for _, x := range []c128{{0.5, 0.25}, {-2, 1}, {3, -3}} {
		back := Exp(Log(x))
		assert.InDelta(t, x.Re, back.Re, 1e-14)
		assert.InDelta(t, x.Im, back.Im, 1e-14)
	}
}

func TestEquality(t *testing.T) {
	nan := math.NaN()
	values := []c128{{0, 0}, {1, -2}, {math.Inf(1), 0}, {1e-320, 5}}
	for _, x := range values {
		assert.True(t, Equal(x, x), "x=%v", x)
		assert.False(t, NotEqual(x, x), "x=%v", x)
	}

	for _, x := range []c128{{nan, 0}, {0, nan}, {nan, nan}} {
		assert.False(t, Equal(x, x))
		assert.True(t, NotEqual(x, x))
		assert.False(t, Equal(x, c128{0, 0}))
		assert.True(t, NotEqual(c128{0, 0}, x))
	}

	assert.True(t, Equal(c128{0, 0}, c128{math.Copysign(0, -1), 0}), "IEEE equality ignores the sign of zero")
	assert.False(t, Identical(c128{0, 0}, c128{math.Copysign(0, -1), 0}))
}

func TestNotEqualIsComplementOfEqual(t *testing.T) {
	nan := math.NaN()
	values := []c128{{0, 0}, {1, 2}, {1, nan}, {nan, 2}, {math.Inf(-1), 1}}
	for _, x := range values {
		for _, y := range values {
			require.Equal(t, !Equal(x, y), NotEqual(x, y), "x=%v y=%v", x, y)
		}
	}
}

func TestFloat32Precision(t *testing.T) {
	x := Complex[float32]{1.5, 0.25}
	y := Complex[float32]{2, -4}
	assert.Equal(t, Complex[float32]{4, -5.5}, Mul(x, y))

	// 1/3 rounds differently in float32 and float64.
	third := Div(Complex[float32]{1, 0}, Complex[float32]{3, 0})
	assert.Equal(t, float32(1)/float32(3), third.Re)
	assert.NotEqual(t, 1.0/3.0, float64(third.Re))
}
