package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/roach88/complexir/internal/ir"
)

func TestRecordRun(t *testing.T) {
	s := createTestStore(t)
	in := foldInput(t, "sample.cir", sampleModule)

	run, err := s.RecordRun(context.Background(), in)
	if err != nil {
		t.Fatalf("RecordRun() failed: %v", err)
	}

	id, err := uuid.Parse(run.ID)
	if err != nil {
		t.Fatalf("run ID %q is not a UUID: %v", run.ID, err)
	}
	if id.Version() != 7 {
		t.Errorf("run ID version = %d, want 7", id.Version())
	}
	if run.Seq != 1 {
		t.Errorf("Seq = %d, want 1", run.Seq)
	}
	if run.ModuleID != ir.MustModuleID(in.Module) {
		t.Errorf("ModuleID = %s, want input module ID", run.ModuleID)
	}
	if run.OutputID != ir.MustModuleID(in.Output) {
		t.Errorf("OutputID = %s, want output module ID", run.OutputID)
	}

	if len(run.Rewrites) != 1 {
		t.Fatalf("len(Rewrites) = %d, want 1", len(run.Rewrites))
	}
	rw := run.Rewrites[0]
	wantID, err := ir.RewriteID(run.ModuleID, "%1", "re-of-create", 0)
	if err != nil {
		t.Fatalf("RewriteID() failed: %v", err)
	}
	if rw.ID != wantID {
		t.Errorf("rewrite ID = %s, want %s", rw.ID, wantID)
	}
	if got := rw.String(); got != "%1 -> %a (re-of-create)" {
		t.Errorf("rewrite = %q", got)
	}
	if rw.Op != "complex.re" {
		t.Errorf("Op = %q, want complex.re", rw.Op)
	}
}

func TestRecordRun_SeqIncrements(t *testing.T) {
	s := createTestStore(t)

	for want := int64(1); want <= 3; want++ {
		run := recordTestRun(t, s, "sample.cir", sampleModule)
		if run.Seq != want {
			t.Errorf("Seq = %d, want %d", run.Seq, want)
		}
	}
}

func TestRecordRun_NoRewrites(t *testing.T) {
	s := createTestStore(t)

	run := recordTestRun(t, s, "-", "complex.add %a, %b : complex<f64>\n")
	if len(run.Rewrites) != 0 {
		t.Errorf("len(Rewrites) = %d, want 0", len(run.Rewrites))
	}
	if run.ModuleID != run.OutputID {
		t.Error("a module with nothing to fold must keep its ID")
	}
}

func TestRecordRun_MissingModule(t *testing.T) {
	s := createTestStore(t)

	_, err := s.RecordRun(context.Background(), RunInput{Source: "-"})
	if err == nil {
		t.Fatal("RecordRun() with no module should fail")
	}
}

func TestRecordRun_RollsBackOnError(t *testing.T) {
	s := createTestStore(t)
	fixed := uuid.MustParse("01890a5d-ac96-774b-bcce-b302099a8057")
	s.newID = func() (uuid.UUID, error) { return fixed, nil }

	recordTestRun(t, s, "first.cir", constantModule)

	_, err := s.RecordRun(context.Background(), foldInput(t, "second.cir", constantModule))
	if err == nil {
		t.Fatal("RecordRun() with a duplicate run ID should fail")
	}

	var runs, rewrites int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&runs); err != nil {
		t.Fatal(err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM rewrites").Scan(&rewrites); err != nil {
		t.Fatal(err)
	}
	if runs != 1 || rewrites != 2 {
		t.Errorf("runs = %d, rewrites = %d; want 1 and 2", runs, rewrites)
	}
}

func TestRecordRun_IDError(t *testing.T) {
	s := createTestStore(t)
	s.newID = func() (uuid.UUID, error) { return uuid.Nil, errors.New("entropy exhausted") }

	_, err := s.RecordRun(context.Background(), foldInput(t, "-", sampleModule))
	if err == nil || !strings.Contains(err.Error(), "entropy exhausted") {
		t.Errorf("RecordRun() error = %v, want id generation failure", err)
	}
}
