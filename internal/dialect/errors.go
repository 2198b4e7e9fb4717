package dialect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/complexir/internal/compiler"
)

// ErrorKind categorizes verification failures.
type ErrorKind string

const (
	// KindConstraintViolation indicates a slot or trait predicate failed.
	KindConstraintViolation ErrorKind = "CONSTRAINT_VIOLATION"

	// KindTypeMismatch indicates two slots required to agree did not.
	KindTypeMismatch ErrorKind = "TYPE_MISMATCH"
)

// VerifyError reports the first failed check for an operation.
//
// Constraint names either the slot constraint ("Complex<AnyFloat>") or the
// trait ("TypesMatchWith") that rejected the op. Slots lists the slot names
// involved, in the order the check read them.
type VerifyError struct {
	// Kind identifies the error category.
	Kind ErrorKind

	// Op is the qualified op name, e.g. "complex.add".
	Op string

	// Constraint names the failed constraint or trait.
	Constraint string

	// Slots are the offending slot names.
	Slots []string

	// Message is a human-readable description.
	Message string

	// Index is the op's position in its module, or -1 when verified alone.
	Index int
}

// Error implements the error interface.
func (e *VerifyError) Error() string {
	var b strings.Builder
	if e.Index >= 0 {
		fmt.Fprintf(&b, "op #%d ", e.Index)
	}
	fmt.Fprintf(&b, "%s: %s: %s", e.Op, e.Kind, e.Constraint)
	if len(e.Slots) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(e.Slots, ", "))
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// IsConstraintViolation returns true if err is a constraint violation.
// Uses errors.As to handle wrapped errors.
func IsConstraintViolation(err error) bool {
	var ve *VerifyError
	if errors.As(err, &ve) {
		return ve.Kind == KindConstraintViolation
	}
	return false
}

// IsTypeMismatch returns true if err is a type mismatch.
// Uses errors.As to handle wrapped errors.
func IsTypeMismatch(err error) bool {
	var ve *VerifyError
	if errors.As(err, &ve) {
		return ve.Kind == KindTypeMismatch
	}
	return false
}

func violation(op, constraint, msg string, slots ...string) *VerifyError {
	return &VerifyError{
		Kind:       KindConstraintViolation,
		Op:         op,
		Constraint: constraint,
		Slots:      slots,
		Message:    msg,
		Index:      -1,
	}
}

func mismatch(op, trait, msg string, slots ...string) *VerifyError {
	return &VerifyError{
		Kind:       KindTypeMismatch,
		Op:         op,
		Constraint: trait,
		Slots:      slots,
		Message:    msg,
		Index:      -1,
	}
}

// DefinitionError lists every schema rule violated by compiled dialect
// definitions.
type DefinitionError struct {
	Errors []compiler.ValidationError
}

// Error implements the error interface.
func (e *DefinitionError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Error()
	}
	return "invalid dialect definitions:\n  " + strings.Join(msgs, "\n  ")
}
