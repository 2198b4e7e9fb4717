// Package harness runs conformance scenarios against the dialect pipeline.
//
// A scenario feeds module text through parse, verify, fold and print, and
// checks the outcome against expectations and assertions. Each run records
// its fold in a private in-memory journal so scenarios can also assert
// that refolding the recorded input reproduces the same rewrites.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: re_of_create
//	description: "re(create(a, b)) folds to a"
//	dialect: custom.cue        # optional; builtin dialects otherwise
//	input: |
//	  complex.create %a, %b : complex<f32>
//	  complex.re %0 : complex<f32>
//	skip_fold: false           # true stops after verification
//	expect:
//	  output: |
//	    %0 = complex.create %a, %b : complex<f32>
//	  rewrites:
//	    - "%1 -> %a (re-of-create)"
//	assertions:
//	  - type: rewrite_applied
//	    rule: re-of-create
//	  - type: op_count
//	    op: complex.re
//	    count: 0
//	  - type: deterministic
//
// A scenario that must fail names the error instead:
//
//	expect:
//	  error:
//	    kind: TYPE_MISMATCH
//	    line: 3
//	    contains: "SameOperandsAndResultType"
//
// # Assertion Types
//
//   - rewrite_applied: a rewrite with the given rule (and value, if set) happened
//   - rewrite_order: the listed values were rewritten in this order
//   - rewrite_count: exactly count rewrites happened (of rule, if set)
//   - op_count: the output holds exactly count ops (of kind op, if set)
//   - deterministic: replaying the journaled run reproduces it
//
// # Golden Traces
//
// Every run produces a trace of pipeline stages numbered from 1. RunWithGolden
// compares its canonical JSON against testdata/golden/<name>.golden.
package harness
