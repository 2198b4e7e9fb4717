package fold

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/complexir/internal/asm"
	"github.com/roach88/complexir/internal/ir"
	"github.com/roach88/complexir/internal/kernel"
)

// lastOp parses src and returns its final op.
func lastOp(t *testing.T, src string) (*ir.Module, *ir.Operation) {
	t.Helper()
	m, err := asm.ParseModule(src)
	require.NoError(t, err)
	require.NotEmpty(t, m.Ops)
	return m, m.Ops[len(m.Ops)-1]
}

func TestFoldProjectionOfCreate(t *testing.T) {
	m, re := lastOp(t, `
complex.create %a, %b : complex<f32>
complex.re %0 : complex<f32>
`)
	a, ok := m.Lookup("a")
	require.True(t, ok)

	res, ok := Fold(re)
	require.True(t, ok)
	assert.Same(t, a, res.Value)
	assert.Nil(t, res.Attr)
	assert.Equal(t, RuleReOfCreate, res.Rule)

	m, im := lastOp(t, `
%z = complex.create %x, %y : complex<f64>
%i = complex.im %z : complex<f64>
`)
	y, ok := m.Lookup("y")
	require.True(t, ok)

	res, ok = Fold(im)
	require.True(t, ok)
	assert.Same(t, y, res.Value)
	assert.Equal(t, RuleImOfCreate, res.Rule)
}

func TestFoldDeclines(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"external operands", "complex.add %a, %b : complex<f64>"},
		{"re of non-create", "%n = complex.neg %a : complex<f32>\ncomplex.re %n : complex<f32>"},
		{"one constant operand", "%c = complex.constant [1.0, 2.0] : complex<f32>\ncomplex.mul %c, %a : complex<f32>"},
		{"constant op", "complex.constant [1.0, 2.0] : complex<f64>"},
		{"real constant", "arith.constant 2.5 : f64"},
		{"f16 is not evaluated", "%c = complex.constant [1.0, 2.0] : complex<f16>\ncomplex.neg %c : complex<f16>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, op := lastOp(t, tt.src)
			_, ok := Fold(op)
			assert.False(t, ok)
		})
	}
}

func TestFoldNil(t *testing.T) {
	_, ok := Fold(nil)
	assert.False(t, ok)
}

func TestFoldConstants(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name string
		src  string
		want ir.Attribute
	}{
		{
			name: "add f32",
			src:  "%x = complex.constant [1.5, 2.0] : complex<f32>\n%y = complex.constant [0.25, -4.0] : complex<f32>\ncomplex.add %x, %y : complex<f32>",
			want: ir.ComplexAttr{Re: 1.75, Im: -2},
		},
		{
			name: "sub f64",
			src:  "%x = complex.constant [1.5, 2.0] : complex<f64>\n%y = complex.constant [0.25, -4.0] : complex<f64>\ncomplex.sub %x, %y : complex<f64>",
			want: ir.ComplexAttr{Re: 1.25, Im: 6},
		},
		{
			name: "mul f64",
			src:  "%x = complex.constant [1.0, 2.0] : complex<f64>\n%y = complex.constant [3.0, 4.0] : complex<f64>\ncomplex.mul %x, %y : complex<f64>",
			want: ir.ComplexAttr{Re: -5, Im: 10},
		},
		{
			name: "div without overflow",
			src:  "%x = complex.constant [1e300, 1e300] : complex<f64>\n%y = complex.constant [1e300, 0.0] : complex<f64>\ncomplex.div %x, %y : complex<f64>",
			want: ir.ComplexAttr{Re: 1, Im: 1},
		},
		{
			name: "abs f32",
			src:  "%x = complex.constant [3.0, 4.0] : complex<f32>\ncomplex.abs %x : complex<f32>",
			want: ir.FloatAttr{Value: 5},
		},
		{
			name: "neg",
			src:  "%x = complex.constant [3.0, -0.0] : complex<f64>\ncomplex.neg %x : complex<f64>",
			want: ir.ComplexAttr{Re: -3, Im: 0},
		},
		{
			name: "sign of zero",
			src:  "%x = complex.constant [0.0, 0.0] : complex<f32>\ncomplex.sign %x : complex<f32>",
			want: ir.ComplexAttr{Re: 0, Im: 0},
		},
		{
			name: "exp of zero",
			src:  "%x = complex.constant [0.0, 0.0] : complex<f64>\ncomplex.exp %x : complex<f64>",
			want: ir.ComplexAttr{Re: 1, Im: 0},
		},
		{
			name: "log of one",
			src:  "%x = complex.constant [1.0, 0.0] : complex<f64>\ncomplex.log %x : complex<f64>",
			want: ir.ComplexAttr{Re: 0, Im: 0},
		},
		{
			name: "create",
			src:  "%r = arith.constant 1.5 : f32\n%i = arith.constant -2.5 : f32\ncomplex.create %r, %i : complex<f32>",
			want: ir.ComplexAttr{Re: 1.5, Im: -2.5},
		},
		{
			name: "re of constant",
			src:  "%x = complex.constant [1.5, 2.5] : complex<f64>\ncomplex.re %x : complex<f64>",
			want: ir.FloatAttr{Value: 1.5},
		},
		{
			name: "im of constant",
			src:  "%x = complex.constant [1.5, 2.5] : complex<f64>\ncomplex.im %x : complex<f64>",
			want: ir.FloatAttr{Value: 2.5},
		},
		{
			name: "eq",
			src:  "%x = complex.constant [1.5, 2.5] : complex<f64>\ncomplex.eq %x, %x : complex<f64>",
			want: ir.BoolAttr{Value: true},
		},
		{
			name: "eq with nan",
			src:  "%x = complex.constant [0x7FC00000, 2.5] : complex<f32>\ncomplex.eq %x, %x : complex<f32>",
			want: ir.BoolAttr{Value: false},
		},
		{
			name: "neq with nan",
			src:  "%x = complex.constant [0x7FC00000, 2.5] : complex<f32>\ncomplex.neq %x, %x : complex<f32>",
			want: ir.BoolAttr{Value: true},
		},
		{
			name: "div by zero",
			src:  "%x = complex.constant [1.0, 1.0] : complex<f64>\n%z = complex.constant [0.0, 0.0] : complex<f64>\ncomplex.div %x, %z : complex<f64>",
			want: ir.ComplexAttr{Re: nan, Im: nan},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, op := lastOp(t, tt.src)
			res, ok := Fold(op)
			require.True(t, ok)
			assert.Equal(t, RuleConstant, res.Rule)
			assert.Nil(t, res.Value)
			if c, isComplex := tt.want.(ir.ComplexAttr); isComplex && math.IsNaN(c.Re) {
				got, ok := res.Attr.(ir.ComplexAttr)
				require.True(t, ok)
				assert.True(t, math.IsNaN(got.Re))
				assert.True(t, math.IsNaN(got.Im))
				return
			}
			assert.Equal(t, tt.want, res.Attr)
		})
	}
}

func TestFoldMatchesKernel(t *testing.T) {
	// Inexact values: the fold must round exactly as the kernel does at
	// the op's precision.
	_, op := lastOp(t, `
%x = complex.constant [1.0, 3.0] : complex<f32>
%y = complex.constant [7.0, -11.0] : complex<f32>
complex.div %x, %y : complex<f32>
`)
	res, ok := Fold(op)
	require.True(t, ok)

	want := kernel.Div(kernel.New[float32](1, 3), kernel.New[float32](7, -11))
	assert.Equal(t, ir.ComplexAttr{Re: float64(want.Re), Im: float64(want.Im)}, res.Attr)

	_, op = lastOp(t, `
%x = complex.constant [0.5, 0.75] : complex<f64>
complex.exp %x : complex<f64>
`)
	res, ok = Fold(op)
	require.True(t, ok)
	e := kernel.Exp(kernel.New(0.5, 0.75))
	assert.Equal(t, ir.ComplexAttr{Re: e.Re, Im: e.Im}, res.Attr)
}

func TestFoldDoesNotMutate(t *testing.T) {
	m, op := lastOp(t, `
%x = complex.constant [1.5, 2.0] : complex<f32>
%y = complex.neg %x : complex<f32>
`)
	before, err := asm.PrintModule(m)
	require.NoError(t, err)

	_, ok := Fold(op)
	require.True(t, ok)

	after, err := asm.PrintModule(m)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, ir.OpNeg, op.Kind)
}
