package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/complexir/internal/fold"
	"github.com/roach88/complexir/internal/store"
)

// FoldOptions holds flags for the fold command.
type FoldOptions struct {
	*RootOptions
	Journal string // SQLite journal path; empty disables journaling
}

// FoldResult is the outcome of folding a module.
type FoldResult struct {
	Path     string   `json:"path"`
	Output   string   `json:"output"`
	Rewrites []string `json:"rewrites"`
	RunID    string   `json:"run_id,omitempty"`
}

// NewFoldCommand creates the fold command.
func NewFoldCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FoldOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fold <file>",
		Short: "Fold a module and print the result",
		Long: `Parse and verify a module, apply local folds and print the result.

Folds replace re/im of a create with the matching operand and evaluate ops
whose operands are all constants. With --journal the run and its rewrites
are recorded so it can be listed with "history" and checked with "replay".

Examples:
  complexc fold module.cir
  complexc fold --journal fold.db module.cir
  complexc fold -v module.cir   # log each rewrite to stderr`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("journal") && opts.Config != nil {
				opts.Journal = opts.Config.Fold.Journal
			}
			return runFold(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "record the run in this SQLite journal")

	return cmd
}

func runFold(opts *FoldOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	syn, err := opts.syntax(formatter)
	if err != nil {
		return err
	}

	src, err := readInput(cmd, path)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("cannot read %s: %v", path, err), nil)
		return WrapExitError(ExitCommandError, "failed to read input", err)
	}

	m, err := syn.ParseModule(src)
	if err != nil {
		return reportRejected(formatter, path, err)
	}
	if err := syn.Registry().VerifyModule(cmd.Context(), m, 0); err != nil {
		return reportRejected(formatter, path, err)
	}

	out, rewrites, err := fold.Module(m)
	if err != nil {
		return reportRejected(formatter, path, err)
	}
	text, err := syn.PrintModule(out)
	if err != nil {
		return reportRejected(formatter, path, err)
	}

	result := FoldResult{Path: path, Output: text, Rewrites: make([]string, 0, len(rewrites))}
	for _, rw := range rewrites {
		result.Rewrites = append(result.Rewrites, rw.String())
		formatter.VerboseLog("rewrite %s", rw.String())
	}

	if opts.Journal != "" {
		st, err := store.Open(opts.Journal)
		if err != nil {
			_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer st.Close()

		run, err := st.RecordRun(cmd.Context(), store.RunInput{
			Source:   path,
			Input:    src,
			Module:   m,
			Output:   out,
			Rewrites: rewrites,
		})
		if err != nil {
			_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		result.RunID = run.ID
		formatter.VerboseLog("Recorded run %s (seq %d)", run.ID, run.Seq)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprint(cmd.OutOrStdout(), text)
	return nil
}
