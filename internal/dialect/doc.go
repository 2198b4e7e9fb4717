// Package dialect compiles declarative op definitions into schemas and
// verifies operations against them.
//
// Op definitions live in CUE (see complex.cue). Each op declares its operand,
// result and attribute slots with constraint expressions, and an ordered
// list of traits. A trait is a name mapped through a table to a predicate
// closure and an inference closure; there is no per-op verification code.
//
// The builtin registry is compiled once from the embedded definitions and is
// read-only afterwards, so Verify, VerifyModule and Schema.InferTypes are
// safe to call from any goroutine.
package dialect
