package dialect

import (
	"fmt"

	"github.com/roach88/complexir/internal/ir"
)

// Schema is an OpSchema with its constraints and traits compiled.
// Schemas are immutable and safe for concurrent use.
type Schema struct {
	ir.OpSchema

	kind       ir.OpKind
	operands   []Constraint
	results    []Constraint
	attributes []Constraint
	traits     []Trait
}

// NewSchema compiles an op definition. It fails on unknown op names,
// malformed constraint expressions and unknown or ill-formed traits.
func NewSchema(spec ir.OpSchema) (*Schema, error) {
	kind, ok := ir.LookupOpKind(spec.Name)
	if !ok {
		return nil, fmt.Errorf("unknown op %q", spec.Name)
	}
	s := &Schema{OpSchema: spec, kind: kind}

	var err error
	if s.operands, err = compileSlots(spec.Name, spec.Operands); err != nil {
		return nil, err
	}
	if s.results, err = compileSlots(spec.Name, spec.Results); err != nil {
		return nil, err
	}
	if s.attributes, err = compileSlots(spec.Name, spec.Attributes); err != nil {
		return nil, err
	}
	for _, ts := range spec.Traits {
		t, err := compileTrait(ts, &s.OpSchema)
		if err != nil {
			return nil, err
		}
		s.traits = append(s.traits, t)
	}
	return s, nil
}

func compileSlots(op string, slots []ir.SlotSpec) ([]Constraint, error) {
	out := make([]Constraint, len(slots))
	for i, sl := range slots {
		c, err := ParseConstraint(sl.Constraint)
		if err != nil {
			return nil, fmt.Errorf("op %s: slot %s: %w", op, sl.Name, err)
		}
		out[i] = c
	}
	return out, nil
}

// OpKind returns the enumerated kind the schema defines.
func (s *Schema) OpKind() ir.OpKind {
	return s.kind
}

// Traits returns the compiled traits in declaration order.
func (s *Schema) Traits() []Trait {
	return s.traits
}

// IsPure reports whether the op is free of side effects.
func (s *Schema) IsPure() bool {
	return s.HasTrait(TraitPure)
}

// ResultConstraint returns the constraint on result slot i.
func (s *Schema) ResultConstraint(i int) Constraint {
	return s.results[i]
}

// bind maps an op's operands, results and attribute onto slot names.
// Only the first attribute slot receives op.Attr.
func (s *Schema) bind(op *ir.Operation) bindings {
	b := bindings{
		types: make(map[string]ir.Type, len(s.Operands)+len(s.Results)),
		attrs: make(map[string]ir.Attribute, len(s.Attributes)),
	}
	for i, sl := range s.Operands {
		if i < len(op.Operands) {
			b.types[sl.Name] = op.Operands[i].Type
		}
	}
	for i, sl := range s.Results {
		if i < len(op.Results) {
			b.types[sl.Name] = op.Results[i].Type
		}
	}
	if len(s.Attributes) > 0 {
		b.attrs[s.Attributes[0].Name] = op.Attr
	}
	return b
}

// InferTypes completes a partial slot-type assignment. Traits propagate
// known types to their related slots until nothing changes. Buildable
// constraints then seed slots that are still unknown, and the traits run
// again. types is modified in place; slots that remain unresolved are
// absent from it on return.
func (s *Schema) InferTypes(types map[string]ir.Type, attr ir.Attribute) {
	b := bindings{types: types, attrs: make(map[string]ir.Attribute)}
	if len(s.Attributes) > 0 && attr != nil {
		b.attrs[s.Attributes[0].Name] = attr
	}

	propagate := func() {
		for changed := true; changed; {
			changed = false
			for _, t := range s.traits {
				if t.infer != nil && t.infer(b) {
					changed = true
				}
			}
		}
	}

	propagate()
	seeded := false
	seed := func(slots []ir.SlotSpec, cs []Constraint) {
		for i, sl := range slots {
			if types[sl.Name] != nil {
				continue
			}
			if t, ok := cs[i].Buildable(); ok {
				types[sl.Name] = t
				seeded = true
			}
		}
	}
	seed(s.Operands, s.operands)
	seed(s.Results, s.results)
	if seeded {
		propagate()
	}
}
