package dialect

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/complexir/internal/ir"
)

// Constraint is a compiled predicate over a slot. Type slots use matchType,
// attribute slots use matchAttr. A constraint that admits exactly one type
// is buildable: the assembly parser can infer the slot from it.
type Constraint struct {
	Name      string
	matchType func(ir.Type) bool
	matchAttr func(ir.Attribute) bool
	buildable ir.Type
}

// MatchType reports whether t satisfies the constraint.
func (c Constraint) MatchType(t ir.Type) bool {
	return c.matchType != nil && t != nil && c.matchType(t)
}

// MatchAttr reports whether a satisfies the constraint.
func (c Constraint) MatchAttr(a ir.Attribute) bool {
	return c.matchAttr != nil && a != nil && c.matchAttr(a)
}

// Buildable returns the single type admitted by the constraint, if any.
func (c Constraint) Buildable() (ir.Type, bool) {
	return c.buildable, c.buildable != nil
}

func exactType(name string, want ir.Type) Constraint {
	return Constraint{
		Name:      name,
		matchType: func(t ir.Type) bool { return t == want },
		buildable: want,
	}
}

var baseConstraints = map[string]Constraint{
	"AnyFloat":    {Name: "AnyFloat", matchType: ir.IsFloat},
	"F16":         exactType("F16", ir.FloatType{Width: 16}),
	"F32":         exactType("F32", ir.F32),
	"F64":         exactType("F64", ir.F64),
	"I1":          exactType("I1", ir.I1),
	"ComplexAttr": {Name: "ComplexAttr", matchAttr: isComplexAttr},
	"FloatAttr":   {Name: "FloatAttr", matchAttr: isFloatAttr},
	"BoolAttr":    {Name: "BoolAttr", matchAttr: isBoolAttr},
}

func isComplexAttr(a ir.Attribute) bool {
	_, ok := a.(ir.ComplexAttr)
	return ok
}

func isFloatAttr(a ir.Attribute) bool {
	_, ok := a.(ir.FloatAttr)
	return ok
}

func isBoolAttr(a ir.Attribute) bool {
	_, ok := a.(ir.BoolAttr)
	return ok
}

// ParseConstraint compiles a constraint expression:
//
//	AnyFloat | F16 | F32 | F64 | I1
//	Complex<C>                      complex type whose element satisfies C
//	AnyOf<C1, C2, ...>              any alternative
//	ComplexAttr | FloatAttr | BoolAttr
func ParseConstraint(expr string) (Constraint, error) {
	expr = strings.TrimSpace(expr)
	if c, ok := baseConstraints[expr]; ok {
		return c, nil
	}

	head, args, ok := splitGeneric(expr)
	if !ok {
		return Constraint{}, fmt.Errorf("unknown constraint %q", expr)
	}

	switch head {
	case "Complex":
		if len(args) != 1 {
			return Constraint{}, fmt.Errorf("constraint %q: Complex takes exactly one argument", expr)
		}
		elem, err := ParseConstraint(args[0])
		if err != nil {
			return Constraint{}, err
		}
		c := Constraint{
			Name: expr,
			matchType: func(t ir.Type) bool {
				e, ok := ir.ElementType(t)
				return ok && elem.MatchType(e)
			},
		}
		if b, ok := elem.Buildable(); ok {
			c.buildable = ir.Complex(b)
		}
		return c, nil

	case "AnyOf":
		if len(args) < 2 {
			return Constraint{}, fmt.Errorf("constraint %q: AnyOf needs at least two alternatives", expr)
		}
		alts := make([]Constraint, len(args))
		for i, a := range args {
			alt, err := ParseConstraint(a)
			if err != nil {
				return Constraint{}, err
			}
			alts[i] = alt
		}
		return Constraint{
			Name: expr,
			matchType: func(t ir.Type) bool {
				for _, alt := range alts {
					if alt.MatchType(t) {
						return true
					}
				}
				return false
			},
			matchAttr: func(a ir.Attribute) bool {
				for _, alt := range alts {
					if alt.MatchAttr(a) {
						return true
					}
				}
				return false
			},
		}, nil

	default:
		return Constraint{}, fmt.Errorf("unknown constraint %q", expr)
	}
}

// splitGeneric splits "Head<a, b<c>>" into "Head" and ["a", "b<c>"].
func splitGeneric(expr string) (string, []string, bool) {
	open := strings.IndexByte(expr, '<')
	if open <= 0 || !strings.HasSuffix(expr, ">") {
		return "", nil, false
	}
	head := expr[:open]
	inner := expr[open+1 : len(expr)-1]

	var args []string
	depth, start := 0, 0
	for i, r := range inner {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
			if depth < 0 {
				return "", nil, false
			}
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return "", nil, false
	}
	args = append(args, strings.TrimSpace(inner[start:]))
	return head, args, true
}

// attrMatchesType reports whether a constant payload can be materialized with
// type t. f32 payloads must be exactly representable in float32.
func attrMatchesType(a ir.Attribute, t ir.Type) bool {
	switch v := a.(type) {
	case ir.ComplexAttr:
		elem, ok := ir.ElementType(t)
		if !ok || !ir.IsFloat(elem) {
			return false
		}
		return representable(v.Re, elem) && representable(v.Im, elem)
	case ir.FloatAttr:
		return ir.IsFloat(t) && representable(v.Value, t)
	case ir.BoolAttr:
		return t == ir.I1
	default:
		return false
	}
}

func representable(f float64, t ir.Type) bool {
	if t != ir.F32 || math.IsNaN(f) || math.IsInf(f, 0) {
		return true
	}
	return float64(float32(f)) == f
}
