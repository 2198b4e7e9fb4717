package store

import (
	"context"
	"fmt"

	"github.com/roach88/complexir/internal/asm"
	"github.com/roach88/complexir/internal/fold"
	"github.com/roach88/complexir/internal/ir"
)

// Divergence is a rewrite position where a replay disagrees with the
// journal. An empty side means that side has no rewrite at Seq.
type Divergence struct {
	Seq      int64  `json:"seq"`
	Recorded string `json:"recorded"`
	Replayed string `json:"replayed"`
}

// Replay is the outcome of refolding a recorded run.
type Replay struct {
	Run         Run
	OutputID    string
	Rewrites    []RewriteRecord
	Divergences []Divergence
}

// Deterministic reports whether the replay reproduced the run exactly:
// same rewrites in the same order and the same output module.
func (r Replay) Deterministic() bool {
	return len(r.Divergences) == 0 && r.OutputID == r.Run.OutputID
}

// ReplayRun reparses the recorded input of run id with syn, folds it again
// and compares the result against the journal. Returns sql.ErrNoRows if
// the run does not exist.
func (s *Store) ReplayRun(ctx context.Context, id string, syn *asm.Syntax) (Replay, error) {
	run, err := s.ReadRun(ctx, id)
	if err != nil {
		return Replay{}, err
	}

	m, err := syn.ParseModule(run.Input)
	if err != nil {
		return Replay{}, fmt.Errorf("replay run %s: %w", id, err)
	}
	moduleID, err := ir.ModuleID(m)
	if err != nil {
		return Replay{}, fmt.Errorf("replay run %s: %w", id, err)
	}
	out, rewrites, err := fold.Module(m)
	if err != nil {
		return Replay{}, fmt.Errorf("replay run %s: %w", id, err)
	}
	outputID, err := ir.ModuleID(out)
	if err != nil {
		return Replay{}, fmt.Errorf("replay run %s: %w", id, err)
	}
	records, err := rewriteRecords(moduleID, rewrites)
	if err != nil {
		return Replay{}, fmt.Errorf("replay run %s: %w", id, err)
	}

	return Replay{
		Run:         run,
		OutputID:    outputID,
		Rewrites:    records,
		Divergences: diffRewrites(run.Rewrites, records),
	}, nil
}

func diffRewrites(recorded, replayed []RewriteRecord) []Divergence {
	var out []Divergence
	for i := 0; i < max(len(recorded), len(replayed)); i++ {
		var d Divergence
		d.Seq = int64(i)
		same := i < len(recorded) && i < len(replayed) &&
			recorded[i].ID == replayed[i].ID &&
			recorded[i].Replacement == replayed[i].Replacement
		if same {
			continue
		}
		if i < len(recorded) {
			d.Recorded = recorded[i].String()
		}
		if i < len(replayed) {
			d.Replayed = replayed[i].String()
		}
		out = append(out, d)
	}
	return out
}
