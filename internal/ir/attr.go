package ir

import "math"

// Attribute is a sealed interface over compile-time constant payloads.
type Attribute interface {
	irAttr()
}

// FloatAttr is a real constant. f32 values are stored widened to float64.
type FloatAttr struct {
	Value float64
}

func (FloatAttr) irAttr() {}

// ComplexAttr is a complex constant.
type ComplexAttr struct {
	Re float64
	Im float64
}

func (ComplexAttr) irAttr() {}

// BoolAttr is an i1 constant.
type BoolAttr struct {
	Value bool
}

func (BoolAttr) irAttr() {}

// AttrEqual compares attributes bitwise, so NaN payloads and signed zeros
// are distinguished.
func AttrEqual(a, b Attribute) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case FloatAttr:
		y, ok := b.(FloatAttr)
		return ok && math.Float64bits(x.Value) == math.Float64bits(y.Value)
	case ComplexAttr:
		y, ok := b.(ComplexAttr)
		return ok &&
			math.Float64bits(x.Re) == math.Float64bits(y.Re) &&
			math.Float64bits(x.Im) == math.Float64bits(y.Im)
	case BoolAttr:
		y, ok := b.(BoolAttr)
		return ok && x.Value == y.Value
	default:
		return false
	}
}
