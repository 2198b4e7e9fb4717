// Package store provides a SQLite-backed journal of fold runs.
//
// Every `complexc fold --journal` invocation records one run: the input
// module text, the content-addressed IDs of the input and output modules,
// and the ordered list of rewrites applied. The journal is append-only.
//
// # Identity and Ordering
//
//   - Run IDs are UUIDv7, so they sort by creation time and carry it.
//   - Runs are ordered by seq, a logical counter assigned on insert.
//   - Rewrite IDs are content-addressed (ir.RewriteID) from the input
//     module ID, the rewritten value, the rule, and the rewrite's position.
//     Folding the same module twice yields the same rewrite IDs, which is
//     what ReplayRun checks.
//
// All queries order by seq so results are identical across reads.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - 5-second busy timeout
//   - foreign keys enforced
//
// # Usage
//
//	s, err := store.Open("fold.db")
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	run, err := s.RecordRun(ctx, store.RunInput{
//	    Source:   "model.cir",
//	    Input:    text,
//	    Module:   m,
//	    Output:   out,
//	    Rewrites: rewrites,
//	})
package store
