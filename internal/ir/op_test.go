package ir

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeIdentity(t *testing.T) {
	assert.Equal(t, Complex(F32), Complex(FloatType{Width: 32}))
	assert.NotEqual(t, Complex(F32), Complex(F64))
	assert.True(t, Complex(F32) == ComplexType{Elem: F32})
	assert.Equal(t, "complex<f64>", Complex(F64).String())
	assert.Equal(t, "i1", I1.String())

	elem, ok := ElementType(Complex(F64))
	require.True(t, ok)
	assert.Equal(t, F64, elem)

	_, ok = ElementType(F64)
	assert.False(t, ok)

	assert.True(t, IsFloat(F32))
	assert.False(t, IsFloat(I1))
	assert.False(t, IsFloat(FloatType{Width: 8}))
}

func TestOpKindNames(t *testing.T) {
	for _, k := range AllOpKinds() {
		got, ok := LookupOpKind(k.String())
		require.True(t, ok, k.String())
		assert.Equal(t, k, got)
	}
	assert.Len(t, AllOpKinds(), 16)
	assert.Equal(t, "<invalid>", OpInvalid.String())

	_, ok := LookupOpKind("complex.pow")
	assert.False(t, ok)
}

func TestBuilderNumbering(t *testing.T) {
	b := NewBuilder()
	a, err := b.External("a", F32)
	require.NoError(t, err)
	c, err := b.External("b", F32)
	require.NoError(t, err)

	create, err := b.Append(OpCreate, []*Value{a, c}, []Type{Complex(F32)}, nil)
	require.NoError(t, err)
	assert.Equal(t, "0", create.Result().Name)
	assert.Same(t, create, create.Result().Def)

	re, err := b.Append(OpRe, []*Value{create.Result()}, []Type{F32}, nil)
	require.NoError(t, err)
	assert.Equal(t, "%1", re.Result().Ref())

	named, err := b.Append(OpNeg, []*Value{create.Result()}, []Type{Complex(F32)}, nil, "7")
	require.NoError(t, err)
	assert.Equal(t, "7", named.Result().Name)

	next, err := b.Append(OpNeg, []*Value{named.Result()}, []Type{Complex(F32)}, nil)
	require.NoError(t, err)
	assert.Equal(t, "8", next.Result().Name, "auto names skip past explicit numeric names")

	m := b.Module()
	assert.Len(t, m.Ops, 4)
	assert.Len(t, m.External, 2)
	assert.True(t, a.IsExternal())

	v, ok := m.Lookup("1")
	require.True(t, ok)
	assert.Same(t, re.Result(), v)
}

func TestBuilderRedefinition(t *testing.T) {
	b := NewBuilder()
	_, err := b.External("a", F32)
	require.NoError(t, err)

	_, err = b.External("a", F64)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRedefinition))

	_, err = b.Append(OpConstant, nil, []Type{Complex(F32)}, ComplexAttr{}, "a")
	assert.True(t, errors.Is(err, ErrRedefinition))
}

func TestEqualModules(t *testing.T) {
	build := func(attr Attribute) *Module {
		b := NewBuilder()
		_, err := b.Append(OpConstant, nil, []Type{Complex(F32)}, attr)
		require.NoError(t, err)
		return b.Module()
	}

	assert.True(t, EqualModules(build(ComplexAttr{Re: 1, Im: 2}), build(ComplexAttr{Re: 1, Im: 2})))
	assert.False(t, EqualModules(build(ComplexAttr{Re: 1, Im: 2}), build(ComplexAttr{Re: 1, Im: 3})))
	assert.False(t, EqualModules(build(ComplexAttr{Re: 1}), build(FloatAttr{Value: 1})))
}

func TestAttrEqualIsBitwise(t *testing.T) {
	nan := FloatAttr{Value: math.NaN()}
	assert.True(t, AttrEqual(nan, nan), "identical NaN payloads compare equal")
	assert.True(t, AttrEqual(BoolAttr{Value: true}, BoolAttr{Value: true}))
	assert.False(t, AttrEqual(BoolAttr{Value: true}, nil))
	assert.True(t, AttrEqual(nil, nil))
}
