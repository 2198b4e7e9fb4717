package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/complexir/internal/ir"
)

// CompileDialect parses a CUE value into a DialectSpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the dialect struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`dialect: complex: { op: add: { ... } }`)
//	spec, err := CompileDialect(v.LookupPath(cue.ParsePath("dialect.complex")))
//
// Operation names are qualified with the dialect name ("complex.add").
func CompileDialect(v cue.Value) (*ir.DialectSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.DialectSpec{}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].Unquoted()
	}
	if spec.Name == "" {
		return nil, &CompileError{
			Field:   "dialect",
			Message: "dialect must be declared under a named field",
			Pos:     v.Pos(),
		}
	}

	opsVal := v.LookupPath(cue.ParsePath("op"))
	if !opsVal.Exists() {
		return nil, &CompileError{
			Field:   "op",
			Message: "at least one op is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := opsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		op, err := compileOp(spec.Name+"."+iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return nil, err
		}
		spec.Ops = append(spec.Ops, op)
	}

	if len(spec.Ops) == 0 {
		return nil, &CompileError{
			Field:   "op",
			Message: "at least one op is required",
			Pos:     opsVal.Pos(),
		}
	}

	return spec, nil
}

// CompileDialects compiles every field under the top-level "dialect" key.
func CompileDialects(root cue.Value) ([]*ir.DialectSpec, error) {
	dialectsVal := root.LookupPath(cue.ParsePath("dialect"))
	if !dialectsVal.Exists() {
		return nil, &CompileError{
			Field:   "dialect",
			Message: "no dialect definitions found",
			Pos:     root.Pos(),
		}
	}

	iter, err := dialectsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var specs []*ir.DialectSpec
	for iter.Next() {
		spec, err := CompileDialect(iter.Value())
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// compileOp parses one op definition.
func compileOp(name string, v cue.Value) (ir.OpSchema, error) {
	op := ir.OpSchema{Name: name}

	summary, err := optionalString(v, "summary")
	if err != nil {
		return op, err
	}
	op.Summary = summary

	op.Operands, err = parseSlots(v, "operands")
	if err != nil {
		return op, err
	}
	op.Results, err = parseSlots(v, "results")
	if err != nil {
		return op, err
	}
	if len(op.Results) == 0 {
		return op, &CompileError{
			Field:   fmt.Sprintf("op.%s.results", name),
			Message: "op must declare at least one result",
			Pos:     v.Pos(),
		}
	}
	op.Attributes, err = parseSlots(v, "attributes")
	if err != nil {
		return op, err
	}

	op.Traits, err = parseTraits(v)
	if err != nil {
		return op, err
	}

	formatVal := v.LookupPath(cue.ParsePath("format"))
	if !formatVal.Exists() {
		return op, &CompileError{
			Field:   fmt.Sprintf("op.%s.format", name),
			Message: "assembly format is required",
			Pos:     v.Pos(),
		}
	}
	op.Format, err = formatVal.String()
	if err != nil {
		return op, formatCUEError(err)
	}

	foldVal := v.LookupPath(cue.ParsePath("fold"))
	if foldVal.Exists() {
		op.HasFolder, err = foldVal.Bool()
		if err != nil {
			return op, formatCUEError(err)
		}
	}

	return op, nil
}

// parseSlots extracts an ordered list of {name, constraint} slots.
func parseSlots(v cue.Value, field string) ([]ir.SlotSpec, error) {
	listVal := v.LookupPath(cue.ParsePath(field))
	if !listVal.Exists() {
		return nil, nil
	}

	iter, err := listVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var slots []ir.SlotSpec
	for iter.Next() {
		slotVal := iter.Value()
		name, err := requiredString(slotVal, "name", field)
		if err != nil {
			return nil, err
		}
		constraint, err := requiredString(slotVal, "constraint", field)
		if err != nil {
			return nil, err
		}
		slots = append(slots, ir.SlotSpec{Name: name, Constraint: constraint})
	}
	return slots, nil
}

// parseTraits extracts the ordered trait list. Order is significant: the
// verifier evaluates traits in declaration order.
func parseTraits(v cue.Value) ([]ir.TraitSpec, error) {
	listVal := v.LookupPath(cue.ParsePath("traits"))
	if !listVal.Exists() {
		return nil, nil
	}

	iter, err := listVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var traits []ir.TraitSpec
	for iter.Next() {
		traitVal := iter.Value()

		// Shorthand: a bare string names a trait without parameters
		if name, err := traitVal.String(); err == nil {
			traits = append(traits, ir.TraitSpec{Name: name})
			continue
		}

		name, err := requiredString(traitVal, "name", "traits")
		if err != nil {
			return nil, err
		}
		trait := ir.TraitSpec{Name: name}

		slotsVal := traitVal.LookupPath(cue.ParsePath("slots"))
		if slotsVal.Exists() {
			slotIter, err := slotsVal.List()
			if err != nil {
				return nil, formatCUEError(err)
			}
			for slotIter.Next() {
				s, err := slotIter.Value().String()
				if err != nil {
					return nil, formatCUEError(err)
				}
				trait.Slots = append(trait.Slots, s)
			}
		}

		for field, dst := range map[string]*string{
			"from":      &trait.From,
			"to":        &trait.To,
			"transform": &trait.Transform,
			"summary":   &trait.Summary,
		} {
			s, err := optionalString(traitVal, field)
			if err != nil {
				return nil, err
			}
			*dst = s
		}

		traits = append(traits, trait)
	}
	return traits, nil
}

func requiredString(v cue.Value, field, context string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{
			Field:   context + "." + field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
