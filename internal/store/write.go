package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/roach88/complexir/internal/fold"
	"github.com/roach88/complexir/internal/ir"
)

// RunInput is one fold invocation to record.
type RunInput struct {
	Source   string // file name, or "-" for stdin
	Input    string // module text that was parsed
	Module   *ir.Module
	Output   *ir.Module
	Rewrites []fold.Rewrite
}

// Run is a recorded fold invocation.
type Run struct {
	ID       string
	Seq      int64
	Source   string
	Input    string
	ModuleID string
	OutputID string
	Rewrites []RewriteRecord
}

// RewriteRecord is one journaled rewrite.
type RewriteRecord struct {
	ID          string
	Seq         int64
	Op          string
	Value       string // folded result, e.g. "%1"
	Rule        string
	Replacement string // replacing value, e.g. "%a"
}

// String renders the record the way fold.Rewrite does.
func (r RewriteRecord) String() string {
	return fmt.Sprintf("%s -> %s (%s)", r.Value, r.Replacement, r.Rule)
}

// rewriteRecords converts fold rewrites to journal records for the module
// identified by moduleID.
func rewriteRecords(moduleID string, rewrites []fold.Rewrite) ([]RewriteRecord, error) {
	records := make([]RewriteRecord, len(rewrites))
	for i, rw := range rewrites {
		value := "%" + rw.Name
		id, err := ir.RewriteID(moduleID, value, rw.Rule, int64(rw.Seq))
		if err != nil {
			return nil, err
		}
		records[i] = RewriteRecord{
			ID:          id,
			Seq:         int64(rw.Seq),
			Op:          rw.Op.String(),
			Value:       value,
			Rule:        rw.Rule,
			Replacement: rw.Replacement.Ref(),
		}
	}
	return records, nil
}

// RecordRun appends a fold run and its rewrites to the journal in one
// transaction and returns the stored run.
func (s *Store) RecordRun(ctx context.Context, in RunInput) (Run, error) {
	if in.Module == nil || in.Output == nil {
		return Run{}, fmt.Errorf("record run: module and output are required")
	}
	moduleID, err := ir.ModuleID(in.Module)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	outputID, err := ir.ModuleID(in.Output)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	records, err := rewriteRecords(moduleID, in.Rewrites)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	id, err := s.newID()
	if err != nil {
		return Run{}, fmt.Errorf("record run: generate id: %w", err)
	}

	run := Run{
		ID:       id.String(),
		Source:   in.Source,
		Input:    in.Input,
		ModuleID: moduleID,
		OutputID: outputID,
		Rewrites: records,
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(seq), 0) + 1 FROM runs").Scan(&run.Seq); err != nil {
			return fmt.Errorf("next seq: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO runs (id, seq, source, input, module_id, output_id)
			VALUES (?, ?, ?, ?, ?, ?)
		`, run.ID, run.Seq, run.Source, run.Input, run.ModuleID, run.OutputID); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for _, r := range records {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO rewrites (run_id, seq, id, op, value, rule, replacement)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, run.ID, r.Seq, r.ID, r.Op, r.Value, r.Rule, r.Replacement); err != nil {
				return fmt.Errorf("insert rewrite %d: %w", r.Seq, err)
			}
		}
		return nil
	})
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}

	slog.Debug("recorded fold run",
		"run", run.ID,
		"seq", run.Seq,
		"source", run.Source,
		"rewrites", len(records))
	return run, nil
}
