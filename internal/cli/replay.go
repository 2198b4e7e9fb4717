package cli

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/complexir/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	JournalOptions
}

// ReplayReport is the outcome of replaying one run.
type ReplayReport struct {
	Run           RunSummary         `json:"run"`
	Deterministic bool               `json:"deterministic"`
	OutputID      string             `json:"output_id"`
	Divergences   []store.Divergence `json:"divergences,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{JournalOptions: JournalOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "replay [run-id]",
		Short: "Refold journaled runs and check determinism",
		Long: `Reparse and refold recorded runs, comparing the rewrites and output
against the journal. Without a run ID every recorded run is replayed.

Exit codes:
  0 - All replays match the journal
  1 - At least one replay diverged
  2 - Command error (journal or run not found)

Examples:
  complexc replay --journal fold.db
  complexc replay --journal fold.db 0190c3a4-...`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args, cmd)
		},
	}

	opts.bind(cmd)

	return cmd
}

func runReplay(opts *ReplayOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	syn, err := opts.syntax(formatter)
	if err != nil {
		return err
	}
	st, err := opts.open(cmd, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	var ids []string
	if len(args) == 1 {
		ids = args
	} else {
		runs, err := st.ListRuns(cmd.Context(), 0)
		if err != nil {
			_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to read journal", err)
		}
		for _, run := range runs {
			ids = append(ids, run.ID)
		}
	}

	reports := make([]ReplayReport, 0, len(ids))
	allMatch := true
	for _, id := range ids {
		rep, err := st.ReplayRun(cmd.Context(), id, syn)
		if errors.Is(err, sql.ErrNoRows) {
			_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("run not found: %s", id), nil)
			return WrapExitError(ExitCommandError, "run not found", err)
		}
		if err != nil {
			_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "replay failed", err)
		}
		report := ReplayReport{
			Run:           summarize(rep.Run),
			Deterministic: rep.Deterministic(),
			OutputID:      rep.OutputID,
			Divergences:   rep.Divergences,
		}
		allMatch = allMatch && report.Deterministic
		formatter.VerboseLog("Replayed run %s: deterministic=%t", id, report.Deterministic)
		reports = append(reports, report)
	}

	if opts.Format == "json" {
		if allMatch {
			if err := formatter.Success(reports); err != nil {
				return err
			}
		} else if err := formatter.Failure(reports, ErrCodeGeneric, "replay diverged from journal"); err != nil {
			return err
		}
	} else {
		writeReplayText(cmd, reports)
	}

	if !allMatch {
		return NewExitError(ExitFailure, "replay diverged from journal")
	}
	return nil
}

func writeReplayText(cmd *cobra.Command, reports []ReplayReport) {
	out := cmd.OutOrStdout()
	if len(reports) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return
	}
	for _, r := range reports {
		if r.Deterministic {
			fmt.Fprintf(out, "✓ #%d %s: %d rewrite(s) reproduced\n", r.Run.Seq, r.Run.ID, len(r.Run.Rewrites))
			continue
		}
		fmt.Fprintf(out, "✗ #%d %s: replay diverged\n", r.Run.Seq, r.Run.ID)
		for _, d := range r.Divergences {
			fmt.Fprintf(out, "    seq %d: recorded %q, replayed %q\n", d.Seq, d.Recorded, d.Replayed)
		}
		if r.OutputID != r.Run.OutputID {
			fmt.Fprintf(out, "    output %s, recorded %s\n", r.OutputID, r.Run.OutputID)
		}
	}
}
