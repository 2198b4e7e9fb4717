package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/complexir/internal/ir"
)

// TraceSnapshot captures what a scenario run produced.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string
	Trace        []TraceEvent
	Output       string
	Failure      *Failure
}

// Snapshot returns the snapshot of a result.
func Snapshot(name string, result *Result) TraceSnapshot {
	return TraceSnapshot{
		ScenarioName: name,
		Trace:        result.Trace,
		Output:       result.Output,
		Failure:      result.Failure,
	}
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical JSON serialization.
// This is required because ir.MarshalCanonical only handles primitives, slices and maps.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	trace := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		trace[i] = map[string]any{
			"seq":    event.Seq,
			"stage":  event.Stage,
			"detail": event.Detail,
		}
	}

	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         trace,
	}
	if s.Output != "" {
		result["output"] = s.Output
	}
	if f := s.Failure; f != nil {
		failure := map[string]any{
			"kind":    f.Kind,
			"message": f.Message,
		}
		if f.Line > 0 {
			failure["line"] = f.Line
			failure["column"] = f.Column
		}
		result["failure"] = failure
	}
	return result
}

// MarshalCanonical returns the snapshot as canonical JSON.
func (s *TraceSnapshot) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check Pass.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(t.Context(), scenario)
	if err != nil {
		return nil, err
	}

	snapshot := Snapshot(scenario.Name, result)
	data, err := snapshot.MarshalCanonical()
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return result, nil
}
