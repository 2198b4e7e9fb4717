package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// FmtOptions holds flags for the fmt command.
type FmtOptions struct {
	*RootOptions
	Write bool // rewrite the file in place
	Check bool // report whether the file is formatted, write nothing
}

// FmtResult is the outcome of formatting one file.
type FmtResult struct {
	Path      string `json:"path"`
	Formatted bool   `json:"formatted"` // input already in canonical form
	Output    string `json:"output,omitempty"`
}

// NewFmtCommand creates the fmt command.
func NewFmtCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FmtOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fmt <file>",
		Short: "Print a module in canonical form",
		Long: `Parse a module and print it back in canonical form.

Printing follows each op's assembly format, so the output parses back to
an identical module. Use "-" to read from stdin.

Exit codes:
  0 - Success (with --check: already formatted)
  1 - Module rejected, or not formatted with --check
  2 - Command error

Examples:
  complexc fmt module.cir
  complexc fmt -w module.cir
  complexc fmt --check module.cir`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Write, "write", "w", false, "write result to the source file instead of stdout")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "exit 1 if the file is not formatted")
	cmd.MarkFlagsMutuallyExclusive("write", "check")

	return cmd
}

func runFmt(opts *FmtOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	if opts.Write && path == "-" {
		return NewExitError(ExitCommandError, "cannot write stdin in place")
	}

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
	text, err := syn.PrintModule(m)
	if err != nil {
		return reportRejected(formatter, path, err)
	}

	result := FmtResult{Path: path, Formatted: text == src}
	switch {
	case opts.Check:
		if opts.Format == "json" {
			if err := formatter.Success(result); err != nil {
				return err
			}
		} else if !result.Formatted {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: not formatted\n", path)
		}
		if !result.Formatted {
			return NewExitError(ExitFailure, "file is not formatted")
		}
		return nil

	case opts.Write:
		if !result.Formatted {
			if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
				_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
				return WrapExitError(ExitCommandError, "failed to write file", err)
			}
			formatter.VerboseLog("Rewrote %s", path)
		}
		if opts.Format == "json" {
			return formatter.Success(result)
		}
		return nil

	default:
		if opts.Format == "json" {
			result.Output = text
			return formatter.Success(result)
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	}
}

// reportRejected outputs a parse or verification error for path and
// returns an ExitFailure error.
func reportRejected(f *OutputFormatter, path string, err error) error {
	d := diagnose(err)
	if f.Format == "json" {
		_ = f.Error(d.Kind, d.Message, d)
	} else {
		fmt.Fprintf(f.Writer, "✗ %s: %s\n", path, d.Message)
	}
	return WrapExitError(ExitFailure, "module rejected", err)
}
