package ir

// OpKind enumerates the closed set of operation kinds understood by the
// dialect. The complex.* kinds are the dialect proper; RealConstant is the
// host's scalar constant and is only used as a fold input and output.
type OpKind int

const (
	OpInvalid OpKind = iota
	OpAbs
	OpAdd
	OpCreate
	OpDiv
	OpEqual
	OpExp
	OpIm
	OpLog
	OpMul
	OpNeg
	OpNotEqual
	OpRe
	OpSign
	OpSub
	OpConstant
	OpRealConstant
)

var opNames = map[OpKind]string{
	OpAbs:          "complex.abs",
	OpAdd:          "complex.add",
	OpCreate:       "complex.create",
	OpDiv:          "complex.div",
	OpEqual:        "complex.eq",
	OpExp:          "complex.exp",
	OpIm:           "complex.im",
	OpLog:          "complex.log",
	OpMul:          "complex.mul",
	OpNeg:          "complex.neg",
	OpNotEqual:     "complex.neq",
	OpRe:           "complex.re",
	OpSign:         "complex.sign",
	OpSub:          "complex.sub",
	OpConstant:     "complex.constant",
	OpRealConstant: "arith.constant",
}

var opKinds = func() map[string]OpKind {
	m := make(map[string]OpKind, len(opNames))
	for k, name := range opNames {
		m[name] = k
	}
	return m
}()

// String returns the fully qualified operation name, e.g. "complex.add".
func (k OpKind) String() string {
	if name, ok := opNames[k]; ok {
		return name
	}
	return "<invalid>"
}

// LookupOpKind maps a fully qualified operation name to its kind.
func LookupOpKind(name string) (OpKind, bool) {
	k, ok := opKinds[name]
	return k, ok
}

// AllOpKinds returns every valid kind in enumeration order.
func AllOpKinds() []OpKind {
	kinds := make([]OpKind, 0, len(opNames))
	for k := OpAbs; k <= OpRealConstant; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}
