package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/complexir/internal/compiler"
	"github.com/roach88/complexir/internal/dialect"
	"github.com/roach88/complexir/internal/ir"
)

// OpInfo summarizes one op schema for listing.
type OpInfo struct {
	Name    string   `json:"name"`
	Summary string   `json:"summary,omitempty"`
	Format  string   `json:"format"`
	Traits  []string `json:"traits"`
	Folds   bool     `json:"folds"`
}

// CheckResult is the outcome of checking a dialect directory.
type CheckResult struct {
	Valid  bool                       `json:"valid"`
	Files  int                        `json:"files,omitempty"`
	Ops    []string                   `json:"ops,omitempty"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// NewDialectCommand creates the dialect command group.
func NewDialectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dialect",
		Short: "Inspect and check dialect definitions",
		Long: `Inspect the active dialect or check CUE dialect definitions.

Examples:
  complexc dialect list
  complexc dialect list --from ./dialects
  complexc dialect check ./dialects
  complexc dialect source > complex.cue`,
	}

	cmd.AddCommand(newDialectListCommand(rootOpts))
	cmd.AddCommand(newDialectCheckCommand(rootOpts))
	cmd.AddCommand(newDialectSourceCommand(rootOpts))

	return cmd
}

func newDialectListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List the ops of the active dialect",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)
			syn, err := opts.syntax(formatter)
			if err != nil {
				return err
			}

			schemas := syn.Registry().Schemas()
			ops := make([]OpInfo, 0, len(schemas))
			for _, s := range schemas {
				ops = append(ops, opInfo(s))
			}

			if opts.Format == "json" {
				return formatter.Success(ops)
			}
			out := cmd.OutOrStdout()
			for _, op := range ops {
				fmt.Fprintf(out, "%-20s %s\n", op.Name, op.Format)
				if len(op.Traits) > 0 {
					fmt.Fprintf(out, "%-20s traits: %s\n", "", strings.Join(op.Traits, ", "))
				}
			}
			return nil
		},
	}
}

func opInfo(s *dialect.Schema) OpInfo {
	info := OpInfo{
		Name:    s.Name,
		Summary: s.Summary,
		Format:  s.Format,
		Traits:  make([]string, 0, len(s.OpSchema.Traits)),
		Folds:   s.HasFolder,
	}
	for _, t := range s.OpSchema.Traits {
		info.Traits = append(info.Traits, traitLabel(t))
	}
	return info
}

// traitLabel renders a trait with its slot arguments,
// e.g. "TypesMatchWith(lhs -> result, element)".
func traitLabel(t ir.TraitSpec) string {
	switch {
	case len(t.Slots) > 0:
		return fmt.Sprintf("%s(%s)", t.Name, strings.Join(t.Slots, ", "))
	case t.From != "" && t.Transform != "":
		return fmt.Sprintf("%s(%s -> %s, %s)", t.Name, t.From, t.To, t.Transform)
	case t.From != "":
		return fmt.Sprintf("%s(%s -> %s)", t.Name, t.From, t.To)
	default:
		return t.Name
	}
}

func newDialectCheckCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <dir>",
		Short: "Check CUE dialect definitions",
		Long: `Compile the CUE files in a directory as a dialect and report every
schema rule violation.

Exit codes:
  0 - Definitions valid
  1 - Definitions violate schema rules
  2 - Command error (directory not found, CUE errors)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDialectCheck(opts, args[0], cmd)
		},
	}
}

func runDialectCheck(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	res, err := LoadDialect(dir)
	if err != nil {
		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to load dialect", err)
		}
		if len(loadErr.Validation) == 0 {
			_ = formatter.Error(loadErr.Code, loadErr.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to load dialect", err)
		}

		result := CheckResult{Errors: loadErr.Validation}
		if opts.Format == "json" {
			if err := formatter.Failure(result, loadErr.Code, loadErr.Message); err != nil {
				return err
			}
		} else {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✗ %s: %s\n", dir, loadErr.Message)
			for _, ve := range loadErr.Validation {
				fmt.Fprintf(out, "  %s\n", ve.Error())
			}
		}
		return NewExitError(ExitFailure, "invalid dialect definitions")
	}

	result := CheckResult{Valid: true, Files: res.FileCount}
	for _, s := range res.Registry.Schemas() {
		result.Ops = append(result.Ops, s.Name)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %d op(s) in %d file(s)\n", dir, len(result.Ops), result.Files)
	return nil
}

func newDialectSourceCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "source",
		Short:         "Print the builtin dialect definitions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Format == "json" {
				return opts.formatter(cmd).Success(map[string]string{"source": dialect.BuiltinSource()})
			}
			fmt.Fprint(cmd.OutOrStdout(), dialect.BuiltinSource())
			return nil
		},
	}
}
