package ir

// DialectSpec represents a compiled dialect definition.
type DialectSpec struct {
	Name string     `json:"name"`
	Ops  []OpSchema `json:"ops"`
}

// OpSchema represents the declarative definition of one operation kind.
type OpSchema struct {
	Name       string      `json:"name"` // fully qualified, e.g. "complex.add"
	Summary    string      `json:"summary"`
	Operands   []SlotSpec  `json:"operands"`
	Results    []SlotSpec  `json:"results"`
	Attributes []SlotSpec  `json:"attributes,omitempty"`
	Traits     []TraitSpec `json:"traits"`
	Format     string      `json:"format"` // assembly format template
	HasFolder  bool        `json:"has_folder"`
}

// SlotSpec names one operand, result, or attribute slot and its constraint.
type SlotSpec struct {
	Name       string `json:"name"`
	Constraint string `json:"constraint"` // e.g. "Complex<AnyFloat>", "I1"
}

// TraitSpec attaches a named trait to an operation.
// Slots is used by AllTypesMatch; From/To/Transform by TypesMatchWith.
type TraitSpec struct {
	Name      string   `json:"name"`
	Slots     []string `json:"slots,omitempty"`
	From      string   `json:"from,omitempty"`
	To        string   `json:"to,omitempty"`
	Transform string   `json:"transform,omitempty"` // "element" or "" (identity)
	Summary   string   `json:"summary,omitempty"`
}

// SlotClass distinguishes operand, result and attribute slots.
type SlotClass int

const (
	SlotOperand SlotClass = iota
	SlotResult
	SlotAttribute
)

func (c SlotClass) String() string {
	switch c {
	case SlotOperand:
		return "operand"
	case SlotResult:
		return "result"
	case SlotAttribute:
		return "attribute"
	default:
		return "unknown"
	}
}

// SlotRef locates a named slot within an operation.
type SlotRef struct {
	Class SlotClass
	Index int
	Spec  SlotSpec
}

// Kind returns the enumerated kind for the schema name.
func (s *OpSchema) Kind() OpKind {
	k, _ := LookupOpKind(s.Name)
	return k
}

// Slot looks up a slot by name across operands, results and attributes.
func (s *OpSchema) Slot(name string) (SlotRef, bool) {
	for i, sl := range s.Operands {
		if sl.Name == name {
			return SlotRef{Class: SlotOperand, Index: i, Spec: sl}, true
		}
	}
	for i, sl := range s.Results {
		if sl.Name == name {
			return SlotRef{Class: SlotResult, Index: i, Spec: sl}, true
		}
	}
	for i, sl := range s.Attributes {
		if sl.Name == name {
			return SlotRef{Class: SlotAttribute, Index: i, Spec: sl}, true
		}
	}
	return SlotRef{}, false
}

// TypedSlots returns operand then result slot names, in declaration order.
func (s *OpSchema) TypedSlots() []string {
	names := make([]string, 0, len(s.Operands)+len(s.Results))
	for _, sl := range s.Operands {
		names = append(names, sl.Name)
	}
	for _, sl := range s.Results {
		names = append(names, sl.Name)
	}
	return names
}

// HasTrait reports whether the schema carries a trait with the given name.
func (s *OpSchema) HasTrait(name string) bool {
	for _, t := range s.Traits {
		if t.Name == name {
			return true
		}
	}
	return false
}
