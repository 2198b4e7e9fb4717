package asm

import (
	"errors"
	"fmt"

	"github.com/roach88/complexir/internal/dialect"
)

// KindParseError is the error category reported for malformed text.
const KindParseError = "PARSE_ERROR"

// ParseError reports what the parser expected and what it found instead.
// Offset is a byte offset into the parsed text; Line and Column are
// 1-based.
type ParseError struct {
	Expected string
	Found    string
	Offset   int
	Line     int
	Column   int
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s: expected %s, found %s", e.Line, e.Column, KindParseError, e.Expected, e.Found)
}

// IsParseError returns true if err is a parse error.
// Uses errors.As to handle wrapped errors.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

func expected(what string, found token) *ParseError {
	return &ParseError{
		Expected: what,
		Found:    found.describe(),
		Offset:   found.offset,
		Line:     found.line,
		Column:   found.column,
	}
}

// OpError attaches the position of an op to an error raised while building
// or verifying it. The underlying error stays reachable through errors.As.
type OpError struct {
	Line   int
	Column int
	Err    error
}

// Error implements the error interface.
func (e *OpError) Error() string {
	return fmt.Sprintf("%d:%d: %v", e.Line, e.Column, e.Err)
}

// Unwrap returns the underlying error.
func (e *OpError) Unwrap() error {
	return e.Err
}

func positioned(at token, err error) error {
	return &OpError{Line: at.line, Column: at.column, Err: err}
}

// Position returns the 1-based line and column err refers to, if it came
// from the parser.
func Position(err error) (line, column int, ok bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Line, pe.Column, true
	}
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Line, oe.Column, true
	}
	return 0, 0, false
}

// ErrorKind returns the category of an error returned by the parser:
// PARSE_ERROR, CONSTRAINT_VIOLATION or TYPE_MISMATCH. Other errors yield "".
func ErrorKind(err error) string {
	var pe *ParseError
	if errors.As(err, &pe) {
		return KindParseError
	}
	var ve *dialect.VerifyError
	if errors.As(err, &ve) {
		return string(ve.Kind)
	}
	return ""
}
