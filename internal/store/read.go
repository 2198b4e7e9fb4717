package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Created returns the creation time carried by the run's UUIDv7 ID.
func (r Run) Created() (time.Time, bool) {
	id, err := uuid.Parse(r.ID)
	if err != nil || id.Version() != 7 {
		return time.Time{}, false
	}
	sec, nsec := id.Time().UnixTime()
	return time.Unix(sec, nsec).UTC(), true
}

// ReadRun returns the run with the given ID, including its rewrites.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, source, input, module_id, output_id
		FROM runs
		WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if err != nil {
		return Run{}, err
	}

	byRun, err := s.readRewrites(ctx, "WHERE run_id = ?", id)
	if err != nil {
		return Run{}, err
	}
	run.Rewrites = byRun[run.ID]
	return run, nil
}

// ListRuns returns the latest limit runs in seq order, oldest first.
// A limit of zero or less returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	return s.listRuns(ctx, `
		SELECT id FROM runs ORDER BY seq DESC LIMIT ?
	`, limit)
}

// RunsForModule returns every run whose input had the given module ID,
// oldest first.
func (s *Store) RunsForModule(ctx context.Context, moduleID string) ([]Run, error) {
	return s.listRuns(ctx, `
		SELECT id FROM runs WHERE module_id = ?
	`, moduleID)
}

// listRuns loads the runs selected by idQuery with their rewrites, using
// one query for runs and one for rewrites.
func (s *Store) listRuns(ctx context.Context, idQuery string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, source, input, module_id, output_id
		FROM runs
		WHERE id IN (`+idQuery+`)
		ORDER BY seq ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	byRun, err := s.readRewrites(ctx, "WHERE run_id IN ("+idQuery+")", args...)
	if err != nil {
		return nil, err
	}
	for i := range runs {
		runs[i].Rewrites = byRun[runs[i].ID]
	}
	return runs, nil
}

// readRewrites returns rewrites matching where, grouped by run ID and
// ordered by seq. Runs without rewrites map to nothing.
func (s *Store) readRewrites(ctx context.Context, where string, args ...any) (map[string][]RewriteRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, id, op, value, rule, replacement
		FROM rewrites
		`+where+`
		ORDER BY run_id, seq ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query rewrites: %w", err)
	}
	defer rows.Close()

	byRun := make(map[string][]RewriteRecord)
	for rows.Next() {
		var (
			runID string
			r     RewriteRecord
		)
		if err := rows.Scan(&runID, &r.Seq, &r.ID, &r.Op, &r.Value, &r.Rule, &r.Replacement); err != nil {
			return nil, fmt.Errorf("scan rewrite: %w", err)
		}
		byRun[runID] = append(byRun[runID], r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rewrites: %w", err)
	}
	return byRun, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	err := row.Scan(&run.ID, &run.Seq, &run.Source, &run.Input, &run.ModuleID, &run.OutputID)
	if err == sql.ErrNoRows {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	return run, nil
}
