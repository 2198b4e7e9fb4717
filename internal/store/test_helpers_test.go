package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/complexir/internal/asm"
	"github.com/roach88/complexir/internal/fold"
)

const sampleModule = `complex.create %a, %b : complex<f32>
complex.re %0 : complex<f32>
`

const constantModule = `%c = complex.constant [1.5, 2.0] : complex<f64>
%n = complex.neg %c : complex<f64>
%x = complex.create %p, %q : complex<f64>
%i = complex.im %x : complex<f64>
`

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// foldInput parses and folds src into a RunInput.
func foldInput(t *testing.T, source, src string) RunInput {
	t.Helper()
	m, err := asm.ParseModule(src)
	if err != nil {
		t.Fatalf("ParseModule() failed: %v", err)
	}
	out, rewrites, err := fold.Module(m)
	if err != nil {
		t.Fatalf("fold.Module() failed: %v", err)
	}
	return RunInput{
		Source:   source,
		Input:    src,
		Module:   m,
		Output:   out,
		Rewrites: rewrites,
	}
}

// recordTestRun folds src and records it.
func recordTestRun(t *testing.T, s *Store, source, src string) Run {
	t.Helper()
	run, err := s.RecordRun(context.Background(), foldInput(t, source, src))
	if err != nil {
		t.Fatalf("RecordRun() failed: %v", err)
	}
	return run
}
