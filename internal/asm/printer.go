package asm

import (
	"fmt"
	"strings"
	"sync"

	"github.com/roach88/complexir/internal/dialect"
	"github.com/roach88/complexir/internal/ir"
)

// Syntax holds the compiled assembly formats of a registry. It is
// read-only after construction and safe for concurrent use.
type Syntax struct {
	reg       *dialect.Registry
	templates map[ir.OpKind]template
}

// NewSyntax compiles the format of every schema in reg.
func NewSyntax(reg *dialect.Registry) (*Syntax, error) {
	s := &Syntax{
		reg:       reg,
		templates: make(map[ir.OpKind]template),
	}
	for _, schema := range reg.Schemas() {
		tmpl, err := compileFormat(schema)
		if err != nil {
			return nil, err
		}
		s.templates[schema.OpKind()] = tmpl
	}
	return s, nil
}

// Registry returns the registry the syntax was compiled from.
func (s *Syntax) Registry() *dialect.Registry {
	return s.reg
}

var (
	defaultOnce   sync.Once
	defaultSyntax *Syntax
)

// Default returns the syntax of the builtin dialects.
func Default() *Syntax {
	defaultOnce.Do(func() {
		s, err := NewSyntax(dialect.Builtin())
		if err != nil {
			panic(fmt.Sprintf("asm: builtin formats: %v", err))
		}
		defaultSyntax = s
	})
	return defaultSyntax
}

// Print renders op with the builtin syntax.
func Print(op *ir.Operation) (string, error) {
	return Default().Print(op)
}

// PrintModule renders m with the builtin syntax.
func PrintModule(m *ir.Module) (string, error) {
	return Default().PrintModule(m)
}

// Print renders one op as a single line:
//
//	%2 = complex.add %0, %1 : complex<f32>
//
// Literal "," attaches to the preceding token; every other element is
// separated by one space. attr-dict prints nothing because the dialect
// carries no discardable attributes.
func (s *Syntax) Print(op *ir.Operation) (string, error) {
	schema, ok := s.reg.Lookup(op.Kind)
	if !ok {
		return "", fmt.Errorf("print: op kind %s is not registered", op.Kind)
	}
	tmpl := s.templates[op.Kind]

	var b strings.Builder
	if len(op.Results) > 0 {
		for i, r := range op.Results {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(r.Ref())
		}
		b.WriteString(" = ")
	}
	b.WriteString(schema.Name)

	for _, d := range tmpl {
		switch d.kind {
		case dirLiteral:
			if d.text != "," {
				b.WriteByte(' ')
			}
			b.WriteString(d.text)
		case dirSlot:
			b.WriteByte(' ')
			switch d.slot.Class {
			case ir.SlotOperand:
				if d.slot.Index >= len(op.Operands) {
					return "", fmt.Errorf("print %s: missing operand %s", schema.Name, d.slot.Spec.Name)
				}
				b.WriteString(op.Operands[d.slot.Index].Ref())
			case ir.SlotAttribute:
				text, err := formatAttr(op)
				if err != nil {
					return "", fmt.Errorf("print %s: %w", schema.Name, err)
				}
				b.WriteString(text)
			}
		case dirAttrDict:
		case dirType:
			t, err := slotType(op, d.slot)
			if err != nil {
				return "", fmt.Errorf("print %s: %w", schema.Name, err)
			}
			b.WriteByte(' ')
			b.WriteString(t.String())
		}
	}
	return b.String(), nil
}

// PrintModule renders every op of m on its own line. External values are
// not declared; parsing the output recreates them from their first use.
func (s *Syntax) PrintModule(m *ir.Module) (string, error) {
	var b strings.Builder
	for i, op := range m.Ops {
		line, err := s.Print(op)
		if err != nil {
			return "", fmt.Errorf("op #%d: %w", i, err)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func slotType(op *ir.Operation, ref ir.SlotRef) (ir.Type, error) {
	var vals []*ir.Value
	switch ref.Class {
	case ir.SlotOperand:
		vals = op.Operands
	case ir.SlotResult:
		vals = op.Results
	}
	if ref.Index >= len(vals) || vals[ref.Index] == nil || vals[ref.Index].Type == nil {
		return nil, fmt.Errorf("slot %s has no type", ref.Spec.Name)
	}
	return vals[ref.Index].Type, nil
}

func formatAttr(op *ir.Operation) (string, error) {
	width := 64
	if r := op.Result(); r != nil && r.Type != nil {
		width = elemWidth(r.Type)
	}
	switch a := op.Attr.(type) {
	case ir.ComplexAttr:
		return "[" + formatFloat(a.Re, width) + ", " + formatFloat(a.Im, width) + "]", nil
	case ir.FloatAttr:
		return formatFloat(a.Value, width), nil
	case ir.BoolAttr:
		if a.Value {
			return "true", nil
		}
		return "false", nil
	default:
		return "", fmt.Errorf("missing constant value")
	}
}
