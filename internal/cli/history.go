package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/complexir/internal/ir"
	"github.com/roach88/complexir/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	JournalOptions
	Limit  int    // latest N runs; 0 for all
	Module string // only runs of the module in this file
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{JournalOptions: JournalOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled fold runs",
		Long: `List fold runs recorded in a journal, oldest first.

With --module, only runs whose input was the same module (by content
hash) as the given file are listed.

Examples:
  complexc history --journal fold.db
  complexc history --journal fold.db --limit 5
  complexc history --journal fold.db --module module.cir --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	opts.bind(cmd)
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "show the latest N runs (0 = all)")
	cmd.Flags().StringVar(&opts.Module, "module", "", "only runs of the module in this file")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := opts.open(cmd, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	var runs []store.Run
	if opts.Module != "" {
		moduleID, err := moduleIDOf(opts, cmd, formatter)
		if err != nil {
			return err
		}
		runs, err = st.RunsForModule(cmd.Context(), moduleID)
		if err != nil {
			_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to read journal", err)
		}
		if opts.Limit > 0 && len(runs) > opts.Limit {
			runs = runs[len(runs)-opts.Limit:]
		}
	} else {
		runs, err = st.ListRuns(cmd.Context(), opts.Limit)
		if err != nil {
			_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to read journal", err)
		}
	}

	summaries := make([]RunSummary, 0, len(runs))
	for _, run := range runs {
		summaries = append(summaries, summarize(run))
	}

	if opts.Format == "json" {
		return formatter.Success(summaries)
	}

	out := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintf(out, "#%d %s %s (%d rewrite(s))\n", s.Seq, s.ID, s.Source, len(s.Rewrites))
		for _, rw := range s.Rewrites {
			fmt.Fprintf(out, "    %s\n", rw)
		}
	}
	return nil
}

// moduleIDOf parses the --module file and returns its content hash.
func moduleIDOf(opts *HistoryOptions, cmd *cobra.Command, f *OutputFormatter) (string, error) {
	syn, err := opts.syntax(f)
	if err != nil {
		return "", err
	}
	src, err := readInput(cmd, opts.Module)
	if err != nil {
		_ = f.Error(ErrCodeNotFound, fmt.Sprintf("cannot read %s: %v", opts.Module, err), nil)
		return "", WrapExitError(ExitCommandError, "failed to read module", err)
	}
	m, err := syn.ParseModule(src)
	if err != nil {
		return "", reportRejected(f, opts.Module, err)
	}
	id, err := ir.ModuleID(m)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "failed to hash module", err)
	}
	return id, nil
}
