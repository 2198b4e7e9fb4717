// Package ir provides the minimal host IR that the complex dialect operates on.
//
// This package contains the value graph (types, values, operations, modules),
// the declarative operation schema records, and canonical serialization used
// for content-addressed module identity. All other internal packages import
// ir; ir imports nothing internal.
//
// Key design constraints:
//   - Types are compared structurally with ==; no implicit widening exists
//   - Operations are immutable once built; rewrites build new modules
//   - Floats never appear in canonical JSON; they are encoded as IEEE-754 bit patterns
//   - All JSON tags use snake_case
package ir
