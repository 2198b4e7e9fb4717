package ir

import (
	"errors"
	"fmt"
	"strconv"
)

// Value is an SSA value: either the result of an operation in the module or
// an external value supplied by the surrounding IR.
type Value struct {
	Name  string // without the leading '%'
	Type  Type
	Def   *Operation // nil for external values
	Index int        // result index within Def
}

// IsExternal reports whether the value is defined outside the module.
func (v *Value) IsExternal() bool {
	return v.Def == nil
}

// Ref returns the textual reference, e.g. "%0".
func (v *Value) Ref() string {
	return "%" + v.Name
}

// Operation is one realized use of an OpKind.
// Operations are immutable once appended to a module.
type Operation struct {
	Kind     OpKind
	Operands []*Value
	Results  []*Value
	Attr     Attribute // constant payload, nil for non-constant ops
}

// Result returns the first result, or nil for ops without results.
func (op *Operation) Result() *Value {
	if len(op.Results) == 0 {
		return nil
	}
	return op.Results[0]
}

// IsConstant reports whether the op materializes a literal.
func (op *Operation) IsConstant() bool {
	return op.Kind == OpConstant || op.Kind == OpRealConstant
}

// Module is an ordered list of operations plus the external values they
// reference, in first-use order.
type Module struct {
	Ops      []*Operation
	External []*Value
}

// Lookup finds a value by name among externals and op results.
func (m *Module) Lookup(name string) (*Value, bool) {
	for _, v := range m.External {
		if v.Name == name {
			return v, true
		}
	}
	for _, op := range m.Ops {
		for _, r := range op.Results {
			if r.Name == name {
				return r, true
			}
		}
	}
	return nil, false
}

// ErrRedefinition is returned when a value name is bound twice.
var ErrRedefinition = errors.New("value redefined")

// Builder appends operations to a module while maintaining SSA naming.
// A Builder is not safe for concurrent use.
type Builder struct {
	m      *Module
	values map[string]*Value
	next   int
}

// NewBuilder creates a builder for an empty module.
func NewBuilder() *Builder {
	return &Builder{
		m:      &Module{},
		values: make(map[string]*Value),
	}
}

// Lookup returns a previously defined value.
func (b *Builder) Lookup(name string) (*Value, bool) {
	v, ok := b.values[name]
	return v, ok
}

// External declares a value supplied by the surrounding IR.
func (b *Builder) External(name string, t Type) (*Value, error) {
	if _, exists := b.values[name]; exists {
		return nil, fmt.Errorf("%%%s: %w", name, ErrRedefinition)
	}
	v := &Value{Name: name, Type: t}
	b.values[name] = v
	b.m.External = append(b.m.External, v)
	b.reserve(name)
	return v, nil
}

// Append creates an operation with fresh result values and adds it to the
// module. Empty entries in names receive the next numeric name.
func (b *Builder) Append(kind OpKind, operands []*Value, resultTypes []Type, attr Attribute, names ...string) (*Operation, error) {
	op := &Operation{
		Kind:     kind,
		Operands: append([]*Value(nil), operands...),
		Attr:     attr,
	}
	for i, t := range resultTypes {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		if name == "" {
			name = b.fresh()
		}
		if _, exists := b.values[name]; exists {
			return nil, fmt.Errorf("%%%s: %w", name, ErrRedefinition)
		}
		b.reserve(name)
		v := &Value{Name: name, Type: t, Def: op, Index: i}
		b.values[name] = v
		op.Results = append(op.Results, v)
	}
	b.m.Ops = append(b.m.Ops, op)
	return op, nil
}

// Module returns the module built so far.
func (b *Builder) Module() *Module {
	return b.m
}

func (b *Builder) fresh() string {
	for {
		name := strconv.Itoa(b.next)
		b.next++
		if _, taken := b.values[name]; !taken {
			return name
		}
	}
}

// reserve keeps numeric auto-names ahead of explicitly numbered values.
func (b *Builder) reserve(name string) {
	if n, err := strconv.Atoi(name); err == nil && n >= b.next {
		b.next = n + 1
	}
}

// EqualModules reports structural equality: same externals, same ops with
// identical kinds, operand references, result names, types and attributes.
func EqualModules(a, b *Module) bool {
	if len(a.External) != len(b.External) || len(a.Ops) != len(b.Ops) {
		return false
	}
	for i := range a.External {
		if !sameValue(a.External[i], b.External[i]) {
			return false
		}
	}
	for i := range a.Ops {
		if !EqualOps(a.Ops[i], b.Ops[i]) {
			return false
		}
	}
	return true
}

// EqualOps compares two operations structurally.
func EqualOps(a, b *Operation) bool {
	if a.Kind != b.Kind || len(a.Operands) != len(b.Operands) || len(a.Results) != len(b.Results) {
		return false
	}
	for i := range a.Operands {
		if !sameValue(a.Operands[i], b.Operands[i]) {
			return false
		}
	}
	for i := range a.Results {
		if !sameValue(a.Results[i], b.Results[i]) {
			return false
		}
	}
	return AttrEqual(a.Attr, b.Attr)
}

func sameValue(a, b *Value) bool {
	return a.Name == b.Name && a.Type == b.Type
}
