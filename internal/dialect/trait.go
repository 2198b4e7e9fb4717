package dialect

import (
	"fmt"

	"github.com/roach88/complexir/internal/ir"
)

// Trait names understood by the verifier.
const (
	TraitPure                      = "Pure"
	TraitElementwise               = "Elementwise"
	TraitSameOperandsAndResultType = "SameOperandsAndResultType"
	TraitAllTypesMatch             = "AllTypesMatch"
	TraitTypesMatchWith            = "TypesMatchWith"
	TraitConstantLike              = "ConstantLike"
)

// bindings maps slot names to the types and attributes of one op, or to the
// partial assignment the parser has built so far.
type bindings struct {
	types map[string]ir.Type
	attrs map[string]ir.Attribute
}

// Trait is a compiled trait: the declared spec plus its predicate and
// inference closures. Metadata-only traits have neither.
type Trait struct {
	Spec ir.TraitSpec

	// verify checks the trait against a fully typed op.
	verify func(op string, b bindings) *VerifyError

	// infer fills unknown slot types from known ones and reports whether it
	// assigned anything. It never overwrites a known type.
	infer func(b bindings) bool
}

// Name returns the trait name.
func (t Trait) Name() string {
	return t.Spec.Name
}

type traitFactory func(spec ir.TraitSpec, schema *ir.OpSchema) (Trait, error)

// traitTable maps trait names to their factories. Built at init, read-only.
var traitTable = map[string]traitFactory{
	TraitPure:                      metadataTrait,
	TraitElementwise:               metadataTrait,
	TraitSameOperandsAndResultType: sameOperandsAndResultType,
	TraitAllTypesMatch:             allTypesMatch,
	TraitTypesMatchWith:            typesMatchWith,
	TraitConstantLike:              constantLike,
}

func compileTrait(spec ir.TraitSpec, schema *ir.OpSchema) (Trait, error) {
	factory, ok := traitTable[spec.Name]
	if !ok {
		return Trait{}, fmt.Errorf("op %s: unknown trait %q", schema.Name, spec.Name)
	}
	return factory(spec, schema)
}

// Pure and Elementwise carry no predicate: there are no side effects to
// check and no shaped types whose lanes could disagree.
func metadataTrait(spec ir.TraitSpec, _ *ir.OpSchema) (Trait, error) {
	return Trait{Spec: spec}, nil
}

func sameOperandsAndResultType(spec ir.TraitSpec, schema *ir.OpSchema) (Trait, error) {
	return equalTypes(spec, schema.TypedSlots()), nil
}

func allTypesMatch(spec ir.TraitSpec, schema *ir.OpSchema) (Trait, error) {
	if len(spec.Slots) < 2 {
		return Trait{}, fmt.Errorf("op %s: %s needs at least two slots", schema.Name, spec.Name)
	}
	for _, s := range spec.Slots {
		if ref, ok := schema.Slot(s); !ok || ref.Class == ir.SlotAttribute {
			return Trait{}, fmt.Errorf("op %s: %s: %q is not a typed slot", schema.Name, spec.Name, s)
		}
	}
	return equalTypes(spec, spec.Slots), nil
}

// equalTypes requires every named slot to carry the type of the first.
func equalTypes(spec ir.TraitSpec, slots []string) Trait {
	return Trait{
		Spec: spec,
		verify: func(op string, b bindings) *VerifyError {
			if len(slots) == 0 {
				return nil
			}
			first := b.types[slots[0]]
			for _, s := range slots[1:] {
				if b.types[s] != first {
					return mismatch(op, spec.Name,
						fmt.Sprintf("%s has type %s but %s has type %s", slots[0], first, s, b.types[s]),
						slots[0], s)
				}
			}
			return nil
		},
		infer: func(b bindings) bool {
			var known ir.Type
			for _, s := range slots {
				if t := b.types[s]; t != nil {
					known = t
					break
				}
			}
			if known == nil {
				return false
			}
			changed := false
			for _, s := range slots {
				if b.types[s] == nil {
					b.types[s] = known
					changed = true
				}
			}
			return changed
		},
	}
}

func typesMatchWith(spec ir.TraitSpec, schema *ir.OpSchema) (Trait, error) {
	for _, s := range []string{spec.From, spec.To} {
		if ref, ok := schema.Slot(s); !ok || ref.Class == ir.SlotAttribute {
			return Trait{}, fmt.Errorf("op %s: %s: %q is not a typed slot", schema.Name, spec.Name, s)
		}
	}

	var forward func(ir.Type) (ir.Type, bool)
	var backward func(ir.Type) ir.Type
	switch spec.Transform {
	case "element":
		forward = ir.ElementType
		backward = ir.Complex
	case "":
		forward = func(t ir.Type) (ir.Type, bool) { return t, true }
		backward = func(t ir.Type) ir.Type { return t }
	default:
		return Trait{}, fmt.Errorf("op %s: %s: unsupported transform %q", schema.Name, spec.Name, spec.Transform)
	}

	from, to := spec.From, spec.To
	return Trait{
		Spec: spec,
		verify: func(op string, b bindings) *VerifyError {
			src, dst := b.types[from], b.types[to]
			want, ok := forward(src)
			if !ok {
				return mismatch(op, spec.Name,
					fmt.Sprintf("%s has type %s, which has no element type", from, src),
					from, to)
			}
			if want != dst {
				return mismatch(op, spec.Name,
					fmt.Sprintf("%s has type %s but %s requires %s", to, dst, from, want),
					from, to)
			}
			return nil
		},
		infer: func(b bindings) bool {
			src, dst := b.types[from], b.types[to]
			switch {
			case src != nil && dst == nil:
				if t, ok := forward(src); ok {
					b.types[to] = t
					return true
				}
			case src == nil && dst != nil:
				b.types[from] = backward(dst)
				return true
			}
			return false
		},
	}, nil
}

func constantLike(spec ir.TraitSpec, schema *ir.OpSchema) (Trait, error) {
	if ref, ok := schema.Slot(spec.From); !ok || ref.Class != ir.SlotAttribute {
		return Trait{}, fmt.Errorf("op %s: %s: %q is not an attribute slot", schema.Name, spec.Name, spec.From)
	}
	if ref, ok := schema.Slot(spec.To); !ok || ref.Class != ir.SlotResult {
		return Trait{}, fmt.Errorf("op %s: %s: %q is not a result slot", schema.Name, spec.Name, spec.To)
	}

	from, to := spec.From, spec.To
	return Trait{
		Spec: spec,
		verify: func(op string, b bindings) *VerifyError {
			if !attrMatchesType(b.attrs[from], b.types[to]) {
				return violation(op, spec.Name,
					fmt.Sprintf("value %s cannot be materialized as %s", from, b.types[to]),
					from, to)
			}
			return nil
		},
		infer: func(b bindings) bool {
			if _, ok := b.attrs[from].(ir.BoolAttr); ok && b.types[to] == nil {
				b.types[to] = ir.I1
				return true
			}
			return false
		},
	}, nil
}
