package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/complexir/internal/asm"
	"github.com/roach88/complexir/internal/ir"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	DialectDir string // CUE dialect directory; empty means the builtin dialect

	// Config is the loaded config file, nil if none was given.
	Config *Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the complexc CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "complexc",
		Version: ir.ToolVersion,
		Short:   "complexc - complex dialect toolkit",
		Long: `A toolkit for the complex-number IR dialect: verify, format and
fold modules written in the dialect's textual form.`,
		SilenceUsage:  true,
		SilenceErrors: true, // main reports errors with their exit code
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.applyConfig(cmd); err != nil {
				return err
			}
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			setupLogging(cmd.ErrOrStderr(), opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.DialectDir, "from", "", "directory of CUE dialect definitions (default: builtin)")

	// Add subcommands
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewFmtCommand(opts))
	cmd.AddCommand(NewFoldCommand(opts))
	cmd.AddCommand(NewDialectCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// applyConfig loads the config file, if any, and fills in global options
// whose flags were not set explicitly.
func (o *RootOptions) applyConfig(cmd *cobra.Command) error {
	if o.ConfigPath == "" {
		return nil
	}
	cfg, err := LoadConfig(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	o.Config = cfg

	flags := cmd.Flags()
	if cfg.Format != "" && !flags.Changed("format") {
		o.Format = cfg.Format
	}
	if cfg.Dialect != "" && !flags.Changed("from") {
		o.DialectDir = cfg.Dialect
	}
	return nil
}

// setupLogging installs the default slog logger. Debug logs are only
// emitted in verbose mode.
func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// formatter returns an output formatter writing to the command's streams.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// syntax returns the builtin syntax, or the one compiled from DialectDir.
// Load failures are reported through f and returned as ExitCommandError.
func (o *RootOptions) syntax(f *OutputFormatter) (*asm.Syntax, error) {
	if o.DialectDir == "" {
		return asm.Default(), nil
	}
	res, err := LoadDialect(o.DialectDir)
	if err != nil {
		code, msg := ErrCodeGeneric, err.Error()
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			code, msg = loadErr.Code, loadErr.Message
		}
		_ = f.Error(code, msg, nil)
		return nil, WrapExitError(ExitCommandError, "failed to load dialect", err)
	}
	f.VerboseLog("Loaded dialect from %d CUE file(s) in %s", res.FileCount, o.DialectDir)
	return res.Syntax, nil
}

// readInput reads a module file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
