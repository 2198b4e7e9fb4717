package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/complexir/internal/asm"
	"github.com/roach88/complexir/internal/dialect"
)

// Scenario defines a conformance scenario: a module to run through the
// pipeline and what should come out.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Dialect optionally points to a CUE file replacing the builtin
	// dialect definitions. Relative paths are resolved against the
	// scenario file by LoadScenario.
	Dialect string `yaml:"dialect,omitempty"`

	// Input is the module text.
	Input string `yaml:"input"`

	// SkipFold stops the pipeline after verification; the output is the
	// input module printed back.
	SkipFold bool `yaml:"skip_fold,omitempty"`

	// Expect checks the pipeline outcome.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// Assertions are further checks on the outcome.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// ExpectClause specifies the expected outcome. Unset fields are not
// checked. Error and the other fields are mutually exclusive.
type ExpectClause struct {
	// Output is the exact printed module.
	Output string `yaml:"output,omitempty"`

	// Rewrites is the exact rewrite log. An explicit empty list expects
	// no rewrites.
	Rewrites []string `yaml:"rewrites,omitempty"`

	// Error expects the pipeline to fail.
	Error *ExpectError `yaml:"error,omitempty"`
}

// ExpectError describes an expected failure.
type ExpectError struct {
	// Kind is PARSE_ERROR, CONSTRAINT_VIOLATION or TYPE_MISMATCH.
	Kind string `yaml:"kind"`

	// Line is the 1-based line of the failing op; 0 is not checked.
	Line int `yaml:"line,omitempty"`

	// Contains must be a substring of the error message.
	Contains string `yaml:"contains,omitempty"`
}

// Assertion is an additional check on the outcome.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Rule filters rewrites (rewrite_applied, rewrite_count).
	Rule string `yaml:"rule,omitempty"`

	// Value is a rewritten value such as "%1" (rewrite_applied).
	Value string `yaml:"value,omitempty"`

	// Values are rewritten values in expected order (rewrite_order).
	Values []string `yaml:"values,omitempty"`

	// Op filters output ops by name (op_count).
	Op string `yaml:"op,omitempty"`

	// Count is the expected number (rewrite_count, op_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertRewriteApplied = "rewrite_applied"
	AssertRewriteOrder   = "rewrite_order"
	AssertRewriteCount   = "rewrite_count"
	AssertOpCount        = "op_count"
	AssertDeterministic  = "deterministic"
)

// LoadScenario reads and parses a scenario YAML file. A relative dialect
// path is resolved against the scenario's directory. Returns an error if
// the file doesn't exist, is malformed, contains unknown fields (typos),
// or fails validation.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Dialect != "" && !filepath.IsAbs(scenario.Dialect) {
		scenario.Dialect = filepath.Join(filepath.Dir(path), scenario.Dialect)
	}
	if scenario.Dialect != "" {
		if _, err := os.Stat(scenario.Dialect); err != nil {
			return nil, fmt.Errorf("invalid scenario: dialect file not found: %s", scenario.Dialect)
		}
	}

	return scenario, nil
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks required fields and assertion shapes.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Input == "" {
		return fmt.Errorf("input is required")
	}

	if s.Expect == nil && len(s.Assertions) == 0 {
		return fmt.Errorf("expect or assertions is required")
	}

	if e := s.Expect; e != nil && e.Error != nil {
		if e.Output != "" || e.Rewrites != nil {
			return fmt.Errorf("expect: error excludes output and rewrites")
		}
		switch e.Error.Kind {
		case asm.KindParseError, string(dialect.KindConstraintViolation), string(dialect.KindTypeMismatch):
		default:
			return fmt.Errorf("expect.error: unknown kind %q", e.Error.Kind)
		}
	}

	if s.SkipFold && s.Expect != nil && s.Expect.Rewrites != nil {
		return fmt.Errorf("expect.rewrites: nothing is folded when skip_fold is set")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertRewriteApplied:
		if a.Rule == "" && a.Value == "" {
			return fmt.Errorf("assertions[%d]: rule or value is required for rewrite_applied", index)
		}
	case AssertRewriteOrder:
		if len(a.Values) == 0 {
			return fmt.Errorf("assertions[%d]: values list is required for rewrite_order", index)
		}
	case AssertRewriteCount, AssertOpCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertDeterministic:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
