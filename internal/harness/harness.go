package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/complexir/internal/asm"
	"github.com/roach88/complexir/internal/dialect"
	"github.com/roach88/complexir/internal/fold"
	"github.com/roach88/complexir/internal/ir"
	"github.com/roach88/complexir/internal/store"
)

// verifyParallelism bounds concurrent op verification within a scenario.
const verifyParallelism = 4

// Harness runs one scenario against a syntax and a private journal.
type Harness struct {
	syn    *asm.Syntax
	store  *store.Store
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory journal for isolation.
// Execution flow:
//  1. Load the scenario's dialect, or use the builtin one
//  2. Parse the input (each op is verified as it is parsed)
//  3. Verify the whole module
//  4. Fold it and journal the run, unless skip_fold is set
//  5. Print the result
//  6. Check expectations and assertions
//
// The returned error is reserved for problems with the harness itself
// (unreadable dialect, journal failure); pipeline errors are part of the
// result.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	syn, err := loadSyntax(scenario.Dialect)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory journal: %w", err)
	}
	defer st.Close()

	h := &Harness{
		syn:    syn,
		store:  st,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	result := NewResult()
	if err := h.execute(ctx, scenario, result); err != nil {
		return nil, err
	}

	checkExpect(result, scenario.Expect)
	for _, msg := range h.evaluateAssertions(ctx, result, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"rewrites", len(result.Rewrites))
	return result, nil
}

// loadSyntax compiles the dialect file at path, or returns the builtin
// syntax when path is empty.
func loadSyntax(path string) (*asm.Syntax, error) {
	if path == "" {
		return asm.Default(), nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dialect: %w", err)
	}
	reg, err := dialect.CompileSource(path, string(src))
	if err != nil {
		return nil, fmt.Errorf("failed to compile dialect: %w", err)
	}
	syn, err := asm.NewSyntax(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to compile dialect formats: %w", err)
	}
	return syn, nil
}

// execute runs the pipeline, recording every stage in the trace.
func (h *Harness) execute(ctx context.Context, scenario *Scenario, result *Result) error {
	m, err := h.syn.ParseModule(scenario.Input)
	if err != nil {
		h.fail(result, err)
		return nil
	}
	result.AddTrace(StageParse, "%d ops", len(m.Ops))

	if err := h.syn.Registry().VerifyModule(ctx, m, verifyParallelism); err != nil {
		h.fail(result, err)
		return nil
	}
	result.AddTrace(StageVerify, "ok")

	out := m
	if !scenario.SkipFold {
		folded, rewrites, err := fold.Module(m)
		if err != nil {
			h.fail(result, err)
			return nil
		}
		result.AddTrace(StageFold, "%d rewrites", len(rewrites))
		for _, rw := range rewrites {
			result.Rewrites = append(result.Rewrites, rw.String())
			result.AddTrace(StageRewrite, "%s", rw.String())
		}

		run, err := h.store.RecordRun(ctx, store.RunInput{
			Source:   scenario.Name,
			Input:    scenario.Input,
			Module:   m,
			Output:   folded,
			Rewrites: rewrites,
		})
		if err != nil {
			return fmt.Errorf("failed to journal fold: %w", err)
		}
		result.RunID = run.ID
		out = folded
	}

	text, err := h.syn.PrintModule(out)
	if err != nil {
		h.fail(result, err)
		return nil
	}
	result.Output = text
	countOps(result, out)
	result.AddTrace(StagePrint, "%d ops", len(out.Ops))
	return nil
}

func (h *Harness) fail(result *Result, err error) {
	f := &Failure{Kind: asm.ErrorKind(err), Message: err.Error()}
	f.Line, f.Column, _ = asm.Position(err)
	result.Failure = f
	result.AddTrace(StageError, "%s", err.Error())
	h.logger.Info("pipeline failed", "kind", f.Kind, "error", err)
}

func countOps(result *Result, m *ir.Module) {
	for _, op := range m.Ops {
		result.ops[op.Kind.String()]++
	}
	result.total = len(m.Ops)
}
