// Package fold implements local simplification of complex dialect ops.
//
// Fold inspects one op and either declines or proposes a replacement for
// its result: an existing value (structural rules) or a constant payload
// computed with the kernel package (constant rules). It never modifies the
// op. Module applies Fold across a module and builds a new module with the
// replacements substituted.
package fold

import (
	"github.com/roach88/complexir/internal/ir"
	"github.com/roach88/complexir/internal/kernel"
)

// Rule names recorded on results and rewrites.
const (
	RuleReOfCreate = "re-of-create"
	RuleImOfCreate = "im-of-create"
	RuleConstant   = "constant"
)

// Result is a proposed replacement for an op's result. Exactly one of
// Value and Attr is set.
type Result struct {
	Rule  string
	Value *ir.Value    // existing value that replaces the result
	Attr  ir.Attribute // constant that replaces the result
}

type rule struct {
	name  string
	apply func(op *ir.Operation) (Result, bool)
}

// rules are tried in order; the first match wins. No rule produces an op
// that another rule (or itself) would rewrite again.
var rules = []rule{
	{RuleReOfCreate, projectCreate(ir.OpRe, 0)},
	{RuleImOfCreate, projectCreate(ir.OpIm, 1)},
	{RuleConstant, evalConstant},
}

// Fold attempts to simplify op. It returns false when no rule applies.
func Fold(op *ir.Operation) (Result, bool) {
	if op == nil || len(op.Results) != 1 || op.IsConstant() {
		return Result{}, false
	}
	for _, r := range rules {
		if res, ok := r.apply(op); ok {
			res.Rule = r.name
			return res, true
		}
	}
	return Result{}, false
}

// projectCreate matches re(create(a, b)) and im(create(a, b)).
func projectCreate(kind ir.OpKind, index int) func(*ir.Operation) (Result, bool) {
	return func(op *ir.Operation) (Result, bool) {
		if op.Kind != kind || len(op.Operands) != 1 {
			return Result{}, false
		}
		def := op.Operands[0].Def
		if def == nil || def.Kind != ir.OpCreate || len(def.Operands) != 2 {
			return Result{}, false
		}
		return Result{Value: def.Operands[index]}, true
	}
}

// evalConstant evaluates ops whose operands are all constant ops. f32 ops
// compute in float32 and f64 ops in float64; other widths are declined.
func evalConstant(op *ir.Operation) (Result, bool) {
	if len(op.Operands) == 0 {
		return Result{}, false
	}
	attrs := make([]ir.Attribute, len(op.Operands))
	for i, v := range op.Operands {
		if v == nil || v.Def == nil || !v.Def.IsConstant() {
			return Result{}, false
		}
		attrs[i] = v.Def.Attr
	}

	var (
		attr ir.Attribute
		ok   bool
	)
	switch width(op.Operands[0].Type) {
	case 32:
		attr, ok = eval[float32](op.Kind, attrs)
	case 64:
		attr, ok = eval[float64](op.Kind, attrs)
	}
	if !ok {
		return Result{}, false
	}
	return Result{Attr: attr}, true
}

func width(t ir.Type) int {
	if e, ok := ir.ElementType(t); ok {
		t = e
	}
	if f, ok := t.(ir.FloatType); ok {
		return f.Width
	}
	return 0
}

func eval[F kernel.Float](kind ir.OpKind, attrs []ir.Attribute) (ir.Attribute, bool) {
	switch kind {
	case ir.OpCreate:
		if len(attrs) != 2 {
			return nil, false
		}
		re, ok1 := realOf[F](attrs[0])
		im, ok2 := realOf[F](attrs[1])
		if !ok1 || !ok2 {
			return nil, false
		}
		return complexAttr(kernel.New(re, im)), true
	case ir.OpRe:
		return project[F](attrs, func(x kernel.Complex[F]) F { return x.Re })
	case ir.OpIm:
		return project[F](attrs, func(x kernel.Complex[F]) F { return x.Im })
	case ir.OpAbs:
		return project(attrs, kernel.Abs[F])
	case ir.OpNeg:
		return unary(attrs, kernel.Neg[F])
	case ir.OpExp:
		return unary(attrs, kernel.Exp[F])
	case ir.OpLog:
		return unary(attrs, kernel.Log[F])
	case ir.OpSign:
		return unary(attrs, kernel.Sign[F])
	case ir.OpAdd:
		return binary(attrs, kernel.Add[F])
	case ir.OpSub:
		return binary(attrs, kernel.Sub[F])
	case ir.OpMul:
		return binary(attrs, kernel.Mul[F])
	case ir.OpDiv:
		return binary(attrs, kernel.Div[F])
	case ir.OpEqual:
		return compare(attrs, kernel.Equal[F])
	case ir.OpNotEqual:
		return compare(attrs, kernel.NotEqual[F])
	default:
		return nil, false
	}
}

func realOf[F kernel.Float](a ir.Attribute) (F, bool) {
	f, ok := a.(ir.FloatAttr)
	return F(f.Value), ok
}

func complexOf[F kernel.Float](a ir.Attribute) (kernel.Complex[F], bool) {
	c, ok := a.(ir.ComplexAttr)
	return kernel.New(F(c.Re), F(c.Im)), ok
}

func complexAttr[F kernel.Float](c kernel.Complex[F]) ir.Attribute {
	return ir.ComplexAttr{Re: float64(c.Re), Im: float64(c.Im)}
}

func project[F kernel.Float](attrs []ir.Attribute, f func(kernel.Complex[F]) F) (ir.Attribute, bool) {
	x, ok := complexOf[F](attrs[0])
	if !ok || len(attrs) != 1 {
		return nil, false
	}
	return ir.FloatAttr{Value: float64(f(x))}, true
}

func unary[F kernel.Float](attrs []ir.Attribute, f func(kernel.Complex[F]) kernel.Complex[F]) (ir.Attribute, bool) {
	x, ok := complexOf[F](attrs[0])
	if !ok || len(attrs) != 1 {
		return nil, false
	}
	return complexAttr(f(x)), true
}

func binary[F kernel.Float](attrs []ir.Attribute, f func(x, y kernel.Complex[F]) kernel.Complex[F]) (ir.Attribute, bool) {
	if len(attrs) != 2 {
		return nil, false
	}
	x, ok1 := complexOf[F](attrs[0])
	y, ok2 := complexOf[F](attrs[1])
	if !ok1 || !ok2 {
		return nil, false
	}
	return complexAttr(f(x, y)), true
}

func compare[F kernel.Float](attrs []ir.Attribute, f func(x, y kernel.Complex[F]) bool) (ir.Attribute, bool) {
	if len(attrs) != 2 {
		return nil, false
	}
	x, ok1 := complexOf[F](attrs[0])
	y, ok2 := complexOf[F](attrs[1])
	if !ok1 || !ok2 {
		return nil, false
	}
	return ir.BoolAttr{Value: f(x, y)}, true
}
