package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes the rewrite log to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Rewrites []string // Full rewrite log for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Rewrites) > 0 {
		fmt.Fprintf(&buf, "\nRewrites:\n")
		for i, rw := range e.Rewrites {
			fmt.Fprintf(&buf, "  [%d] %s\n", i, rw)
		}
	}

	return buf.String()
}

// checkExpect compares the result against the expect clause.
func checkExpect(result *Result, expect *ExpectClause) {
	if expect == nil {
		if result.Failure != nil {
			result.AddError(fmt.Sprintf("unexpected error: %s", result.Failure.Message))
		}
		return
	}

	if want := expect.Error; want != nil {
		got := result.Failure
		switch {
		case got == nil:
			result.AddError(fmt.Sprintf("expected %s error, pipeline succeeded", want.Kind))
		case got.Kind != want.Kind:
			result.AddError(fmt.Sprintf("error kind = %s, want %s (%s)", got.Kind, want.Kind, got.Message))
		case want.Line != 0 && got.Line != want.Line:
			result.AddError(fmt.Sprintf("error line = %d, want %d (%s)", got.Line, want.Line, got.Message))
		case want.Contains != "" && !strings.Contains(got.Message, want.Contains):
			result.AddError(fmt.Sprintf("error %q does not contain %q", got.Message, want.Contains))
		}
		return
	}

	if result.Failure != nil {
		result.AddError(fmt.Sprintf("unexpected error: %s", result.Failure.Message))
		return
	}

	if expect.Output != "" && result.Output != expect.Output {
		result.AddError(fmt.Sprintf("output mismatch:\n--- want\n%s--- got\n%s", expect.Output, result.Output))
	}

	if expect.Rewrites != nil && !slices.Equal(result.Rewrites, expect.Rewrites) {
		result.AddError(fmt.Sprintf("rewrites = %v, want %v", result.Rewrites, expect.Rewrites))
	}
}

// evaluateAssertions runs every assertion and returns failure messages.
// Assertions about the outcome are skipped, with one message, if the
// pipeline failed.
func (h *Harness) evaluateAssertions(ctx context.Context, result *Result, assertions []Assertion) []string {
	if len(assertions) == 0 {
		return nil
	}
	if result.Failure != nil {
		return []string{fmt.Sprintf("assertions not evaluated: pipeline failed: %s", result.Failure.Message)}
	}

	var msgs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertRewriteApplied:
			err = assertRewriteApplied(result, a)
		case AssertRewriteOrder:
			err = assertRewriteOrder(result, a)
		case AssertRewriteCount:
			err = assertRewriteCount(result, a)
		case AssertOpCount:
			err = assertOpCount(result, a)
		case AssertDeterministic:
			err = h.assertDeterministic(ctx, result)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			msgs = append(msgs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return msgs
}

// rewriteParts splits "%1 -> %a (re-of-create)" into value and rule.
func rewriteParts(rw string) (value, rule string) {
	value, rest, _ := strings.Cut(rw, " -> ")
	if i := strings.LastIndex(rest, " ("); i >= 0 {
		rule = strings.TrimSuffix(rest[i+2:], ")")
	}
	return value, rule
}

func assertRewriteApplied(result *Result, a Assertion) error {
	for _, rw := range result.Rewrites {
		value, rule := rewriteParts(rw)
		if (a.Value == "" || value == a.Value) && (a.Rule == "" || rule == a.Rule) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertRewriteApplied,
		Expected: fmt.Sprintf("rewrite of %q by rule %q", a.Value, a.Rule),
		Actual:   "not found",
		Rewrites: result.Rewrites,
	}
}

// assertRewriteOrder checks the listed values were rewritten in order.
// Other rewrites may come in between.
func assertRewriteOrder(result *Result, a Assertion) error {
	positions := make(map[string]int)
	for i, rw := range result.Rewrites {
		value, _ := rewriteParts(rw)
		if _, seen := positions[value]; !seen {
			positions[value] = i
		}
	}

	prev := -1
	for _, v := range a.Values {
		pos, ok := positions[v]
		if !ok {
			return &AssertionError{
				Type:     AssertRewriteOrder,
				Expected: fmt.Sprintf("all values rewritten: %v", a.Values),
				Actual:   fmt.Sprintf("missing value: %s", v),
				Rewrites: result.Rewrites,
			}
		}
		if pos <= prev {
			return &AssertionError{
				Type:     AssertRewriteOrder,
				Expected: fmt.Sprintf("values rewritten in order: %v", a.Values),
				Actual:   fmt.Sprintf("%s rewritten at %d, before an earlier value", v, pos),
				Rewrites: result.Rewrites,
			}
		}
		prev = pos
	}
	return nil
}

func assertRewriteCount(result *Result, a Assertion) error {
	count := 0
	for _, rw := range result.Rewrites {
		if _, rule := rewriteParts(rw); a.Rule == "" || rule == a.Rule {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertRewriteCount,
			Expected: fmt.Sprintf("%d rewrite(s) by rule %q", a.Count, a.Rule),
			Actual:   fmt.Sprintf("%d", count),
			Rewrites: result.Rewrites,
		}
	}
	return nil
}

func assertOpCount(result *Result, a Assertion) error {
	count := result.total
	if a.Op != "" {
		count = result.ops[a.Op]
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertOpCount,
			Expected: fmt.Sprintf("%d op(s) %s", a.Count, a.Op),
			Actual:   fmt.Sprintf("%d", count),
		}
	}
	return nil
}

// assertDeterministic refolds the journaled input and compares the
// rewrites and output with the recorded run.
func (h *Harness) assertDeterministic(ctx context.Context, result *Result) error {
	if result.RunID == "" {
		return fmt.Errorf("deterministic: nothing was folded")
	}
	replay, err := h.store.ReplayRun(ctx, result.RunID, h.syn)
	if err != nil {
		return fmt.Errorf("deterministic: %w", err)
	}
	if !replay.Deterministic() {
		return &AssertionError{
			Type:     AssertDeterministic,
			Expected: "replay reproduces the recorded run",
			Actual:   fmt.Sprintf("%d divergent rewrite(s)", len(replay.Divergences)),
			Rewrites: result.Rewrites,
		}
	}
	return nil
}
