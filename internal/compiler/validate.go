package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/complexir/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// OpSchema errors (E101-E109)
	ErrOpUnknownKind   = "E101" // op name does not map to a known kind
	ErrOpNoResults     = "E102" // at least one result required
	ErrOpFormatEmpty   = "E103" // assembly format is required
	ErrDuplicateName   = "E104" // duplicate op or slot name
	ErrEmptyConstraint = "E105" // slot without constraint
	ErrInvalidSlotName = "E106" // slot name is not an identifier

	// Trait errors (E110-E119)
	ErrTraitNameEmpty        = "E110" // trait without name
	ErrTraitUnknownSlot      = "E111" // trait references an undeclared slot
	ErrTraitMissingParam     = "E112" // AllTypesMatch/TypesMatchWith without parameters
	ErrTraitUnknownTransform = "E113" // TypesMatchWith transform is not supported

	// Format errors (E120-E129)
	ErrFormatUnknownSlot = "E120" // $slot or type($slot) names an undeclared slot
	ErrFormatMissingSlot = "E121" // operand or attribute never appears in the format
	ErrFormatNoType      = "E122" // format has no type($slot) directive
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates compiled dialect definitions against schema rules.
// Returns all errors found (does not fail-fast).
// Supports DialectSpec and OpSchema types.
func Validate(v any) []ValidationError {
	switch spec := v.(type) {
	case *ir.DialectSpec:
		return validateDialect(spec)
	case ir.DialectSpec:
		return validateDialect(&spec)
	case *ir.OpSchema:
		return validateOp(spec, "op")
	case ir.OpSchema:
		return validateOp(&spec, "op")
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

func validateDialect(spec *ir.DialectSpec) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool)
	for i, op := range spec.Ops {
		if seen[op.Name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("ops[%d].name", i),
				Message: fmt.Sprintf("duplicate op name: %q", op.Name),
				Code:    ErrDuplicateName,
			})
		}
		seen[op.Name] = true
		errs = append(errs, validateOp(&spec.Ops[i], fmt.Sprintf("ops[%d]", i))...)
	}
	return errs
}

// validateOp validates a single op schema.
func validateOp(op *ir.OpSchema, path string) []ValidationError {
	var errs []ValidationError

	// E101: the op set is closed
	if _, ok := ir.LookupOpKind(op.Name); !ok {
		errs = append(errs, ValidationError{
			Field:   path + ".name",
			Message: fmt.Sprintf("%q is not a known operation kind", op.Name),
			Code:    ErrOpUnknownKind,
		})
	}

	// E102: at least one result
	if len(op.Results) == 0 {
		errs = append(errs, ValidationError{
			Field:   path + ".results",
			Message: fmt.Sprintf("op %q must declare at least one result", op.Name),
			Code:    ErrOpNoResults,
		})
	}

	// E104-E106: slot names unique, identifiers, constrained
	slots := make(map[string]bool)
	checkSlots := func(kind string, list []ir.SlotSpec) {
		for i, s := range list {
			field := fmt.Sprintf("%s.%s[%d]", path, kind, i)
			if !identPattern.MatchString(s.Name) {
				errs = append(errs, ValidationError{
					Field:   field + ".name",
					Message: fmt.Sprintf("invalid slot name %q", s.Name),
					Code:    ErrInvalidSlotName,
				})
			}
			if slots[s.Name] {
				errs = append(errs, ValidationError{
					Field:   field + ".name",
					Message: fmt.Sprintf("duplicate slot name: %q", s.Name),
					Code:    ErrDuplicateName,
				})
			}
			slots[s.Name] = true
			if strings.TrimSpace(s.Constraint) == "" {
				errs = append(errs, ValidationError{
					Field:   field + ".constraint",
					Message: fmt.Sprintf("slot %q has no constraint", s.Name),
					Code:    ErrEmptyConstraint,
				})
			}
		}
	}
	checkSlots("operands", op.Operands)
	checkSlots("results", op.Results)
	checkSlots("attributes", op.Attributes)

	// E110-E113: trait parameters
	for i, t := range op.Traits {
		field := fmt.Sprintf("%s.traits[%d]", path, i)
		if strings.TrimSpace(t.Name) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: "trait name is required",
				Code:    ErrTraitNameEmpty,
			})
			continue
		}
		switch t.Name {
		case "AllTypesMatch":
			if len(t.Slots) < 2 {
				errs = append(errs, ValidationError{
					Field:   field + ".slots",
					Message: "AllTypesMatch requires at least two slots",
					Code:    ErrTraitMissingParam,
				})
			}
		case "TypesMatchWith", "ConstantLike":
			if t.From == "" || t.To == "" {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("%s requires from and to slots", t.Name),
					Code:    ErrTraitMissingParam,
				})
			}
			if t.Name == "TypesMatchWith" && t.Transform != "" && t.Transform != "element" {
				errs = append(errs, ValidationError{
					Field:   field + ".transform",
					Message: fmt.Sprintf("unsupported transform %q, must be \"element\" or empty", t.Transform),
					Code:    ErrTraitUnknownTransform,
				})
			}
		}
		for _, ref := range traitSlotRefs(t) {
			if !slots[ref] {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("trait %s references undeclared slot %q", t.Name, ref),
					Code:    ErrTraitUnknownSlot,
				})
			}
		}
	}

	// E103, E120-E122: format references
	errs = append(errs, validateFormat(op, path, slots)...)

	return errs
}

func validateFormat(op *ir.OpSchema, path string, slots map[string]bool) []ValidationError {
	var errs []ValidationError
	field := path + ".format"

	if strings.TrimSpace(op.Format) == "" {
		return []ValidationError{{
			Field:   field,
			Message: fmt.Sprintf("op %q has an empty assembly format", op.Name),
			Code:    ErrOpFormatEmpty,
		}}
	}

	typeRefs := typeDirectivePattern.FindAllStringSubmatch(op.Format, -1)
	if len(typeRefs) == 0 {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: "format must contain a type($slot) directive",
			Code:    ErrFormatNoType,
		})
	}
	for _, m := range typeRefs {
		if !slots[m[1]] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("type directive references undeclared slot %q", m[1]),
				Code:    ErrFormatUnknownSlot,
			})
		}
	}

	// Strip type(...) directives before collecting plain placeholders
	plain := typeDirectivePattern.ReplaceAllString(op.Format, "")
	used := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(plain, -1) {
		used[m[1]] = true
		if !slots[m[1]] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("placeholder references undeclared slot %q", m[1]),
				Code:    ErrFormatUnknownSlot,
			})
		}
	}

	// Every operand and attribute must be spelled; results are implicit
	for _, list := range [][]ir.SlotSpec{op.Operands, op.Attributes} {
		for _, s := range list {
			if !used[s.Name] {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("slot %q does not appear in the format", s.Name),
					Code:    ErrFormatMissingSlot,
				})
			}
		}
	}

	return errs
}

// traitSlotRefs returns every slot name a trait refers to.
func traitSlotRefs(t ir.TraitSpec) []string {
	refs := append([]string(nil), t.Slots...)
	if t.From != "" {
		refs = append(refs, t.From)
	}
	if t.To != "" {
		refs = append(refs, t.To)
	}
	return refs
}

var (
	identPattern         = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	placeholderPattern   = regexp.MustCompile(`\$([a-zA-Z_][a-zA-Z0-9_]*)`)
	typeDirectivePattern = regexp.MustCompile(`type\(\$([a-zA-Z_][a-zA-Z0-9_]*)\)`)
)
