package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Parallelism int // concurrent op checks per module; 0 means unbounded
}

// FileResult is the verification outcome for one file.
type FileResult struct {
	Path       string      `json:"path"`
	Valid      bool        `json:"valid"`
	Ops        int         `json:"ops"`
	Diagnostic *Diagnostic `json:"diagnostic,omitempty"`
}

// VerifyResult holds verification results for all files.
type VerifyResult struct {
	Valid bool         `json:"valid"`
	Files []FileResult `json:"files"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify <file>...",
		Short: "Parse and verify modules",
		Long: `Parse each module and verify every op against its dialect schema.

Use "-" to read a module from stdin.

Exit codes:
  0 - All modules valid
  1 - One or more modules rejected
  2 - Command error (unreadable file, bad dialect)

Examples:
  complexc verify module.cir
  complexc verify --from ./dialects a.cir b.cir
  cat module.cir | complexc verify - --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("parallelism") && opts.Config != nil {
				opts.Parallelism = opts.Config.Verify.Parallelism
			}
			return runVerify(opts, args, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Parallelism, "parallelism", "j", 0, "max concurrent op checks per module (0 = unbounded)")

	return cmd
}

func runVerify(opts *VerifyOptions, paths []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	if opts.Parallelism < 0 {
		return NewExitError(ExitCommandError, "--parallelism must be non-negative")
	}

	syn, err := opts.syntax(formatter)
	if err != nil {
		return err
	}

	result := VerifyResult{Valid: true, Files: make([]FileResult, 0, len(paths))}
	for _, path := range paths {
		src, err := readInput(cmd, path)
		if err != nil {
			_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("cannot read %s: %v", path, err), nil)
			return WrapExitError(ExitCommandError, "failed to read input", err)
		}

		fr := FileResult{Path: path, Valid: true}
		m, err := syn.ParseModule(src)
		if err == nil {
			fr.Ops = len(m.Ops)
			err = syn.Registry().VerifyModule(cmd.Context(), m, opts.Parallelism)
		}
		if err != nil {
			fr.Valid = false
			fr.Diagnostic = diagnose(err)
			result.Valid = false
		}
		formatter.VerboseLog("Verified %s: %d op(s), valid=%t", path, fr.Ops, fr.Valid)
		result.Files = append(result.Files, fr)
	}

	if opts.Format == "json" {
		if result.Valid {
			if err := formatter.Success(result); err != nil {
				return err
			}
		} else if err := formatter.Failure(result, ErrCodeGeneric, "verification failed"); err != nil {
			return err
		}
	} else {
		out := cmd.OutOrStdout()
		for _, fr := range result.Files {
			if fr.Valid {
				fmt.Fprintf(out, "✓ %s: %d op(s) verified\n", fr.Path, fr.Ops)
				continue
			}
			fmt.Fprintf(out, "✗ %s: %s\n", fr.Path, fr.Diagnostic.Message)
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "verification failed")
	}
	return nil
}
