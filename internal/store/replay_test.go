package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/roach88/complexir/internal/asm"
)

func TestReplayRun_Deterministic(t *testing.T) {
	s := createTestStore(t)
	run := recordTestRun(t, s, "consts.cir", constantModule)

	replay, err := s.ReplayRun(context.Background(), run.ID, asm.Default())
	if err != nil {
		t.Fatalf("ReplayRun() failed: %v", err)
	}
	if !replay.Deterministic() {
		t.Errorf("replay diverged: %+v", replay.Divergences)
	}
	if replay.OutputID != run.OutputID {
		t.Errorf("OutputID = %s, want %s", replay.OutputID, run.OutputID)
	}
	if len(replay.Rewrites) != 2 {
		t.Errorf("len(Rewrites) = %d, want 2", len(replay.Rewrites))
	}
}

func TestReplayRun_DetectsTamperedJournal(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	run := recordTestRun(t, s, "consts.cir", constantModule)

	if _, err := s.db.Exec(
		"UPDATE rewrites SET replacement = '%p' WHERE run_id = ? AND seq = 1", run.ID,
	); err != nil {
		t.Fatal(err)
	}
	if _, err := s.db.Exec(`
		INSERT INTO rewrites (run_id, seq, id, op, value, rule, replacement)
		VALUES (?, 2, 'bogus', 'complex.re', '%z', 're-of-create', '%a')
	`, run.ID); err != nil {
		t.Fatal(err)
	}

	replay, err := s.ReplayRun(ctx, run.ID, asm.Default())
	if err != nil {
		t.Fatalf("ReplayRun() failed: %v", err)
	}
	if replay.Deterministic() {
		t.Fatal("Deterministic() = true for a tampered journal")
	}

	want := []Divergence{
		{Seq: 1, Recorded: "%i -> %p (im-of-create)", Replayed: "%i -> %q (im-of-create)"},
		{Seq: 2, Recorded: "%z -> %a (re-of-create)"},
	}
	if len(replay.Divergences) != len(want) {
		t.Fatalf("Divergences = %+v, want %+v", replay.Divergences, want)
	}
	for i := range want {
		if replay.Divergences[i] != want[i] {
			t.Errorf("Divergences[%d] = %+v, want %+v", i, replay.Divergences[i], want[i])
		}
	}
}

func TestReplayRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReplayRun(context.Background(), "missing", asm.Default())
	if err != sql.ErrNoRows {
		t.Errorf("ReplayRun() error = %v, want sql.ErrNoRows", err)
	}
}

func TestReplayRun_UnparsableInput(t *testing.T) {
	s := createTestStore(t)
	run := recordTestRun(t, s, "-", sampleModule)

	if _, err := s.db.Exec("UPDATE runs SET input = 'complex.bogus %a' WHERE id = ?", run.ID); err != nil {
		t.Fatal(err)
	}

	_, err := s.ReplayRun(context.Background(), run.ID, asm.Default())
	if !asm.IsParseError(err) {
		t.Errorf("ReplayRun() error = %v, want a parse error", err)
	}
}
