package ir

import "fmt"

// Type is a sealed interface over the static types known to the dialect.
// Two types are identical iff they compare equal with ==.
type Type interface {
	fmt.Stringer
	irType() // Sealed - only FloatType, IntegerType and ComplexType implement it
}

// FloatType is an IEEE-754 binary floating-point type of the given width.
type FloatType struct {
	Width int
}

func (FloatType) irType() {}

func (t FloatType) String() string {
	return fmt.Sprintf("f%d", t.Width)
}

// IntegerType is a signless integer type. Only i1 is produced by the dialect.
type IntegerType struct {
	Width int
}

func (IntegerType) irType() {}

func (t IntegerType) String() string {
	return fmt.Sprintf("i%d", t.Width)
}

// ComplexType wraps an element type. Verification restricts Elem to floats,
// but the type itself can be spelled with any element so that ill-typed IR
// reaches the verifier instead of being rejected by the parser.
type ComplexType struct {
	Elem Type
}

func (ComplexType) irType() {}

func (t ComplexType) String() string {
	return fmt.Sprintf("complex<%s>", t.Elem)
}

// Builtin types.
var (
	F32 Type = FloatType{Width: 32}
	F64 Type = FloatType{Width: 64}
	I1  Type = IntegerType{Width: 1}
)

// Complex returns complex<elem>.
func Complex(elem Type) Type {
	return ComplexType{Elem: elem}
}

// ElementType returns the element type of a complex type.
func ElementType(t Type) (Type, bool) {
	c, ok := t.(ComplexType)
	if !ok {
		return nil, false
	}
	return c.Elem, true
}

// IsFloat reports whether t is a float type of a supported width.
func IsFloat(t Type) bool {
	f, ok := t.(FloatType)
	return ok && (f.Width == 16 || f.Width == 32 || f.Width == 64)
}
