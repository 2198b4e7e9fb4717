package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/complexir/internal/asm"
	"github.com/roach88/complexir/internal/compiler"
	"github.com/roach88/complexir/internal/dialect"
)

// LoadResult contains the dialect compiled from a directory.
type LoadResult struct {
	Registry  *dialect.Registry
	Syntax    *asm.Syntax
	FileCount int // Number of CUE files found
}

// LoadError represents an error that occurred during dialect loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available

	// Validation lists schema rule violations when Code is
	// ErrCodeInvalidDialect.
	Validation []compiler.ValidationError
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadDialect loads every CUE file in dir as one instance and compiles
// its "dialect" field. Errors are *LoadError.
func LoadDialect(dir string) (*LoadResult, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("dialect directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing dialect directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	reg, err := dialect.CompileValue(value)
	if err != nil {
		return nil, convertCompileError(err)
	}
	syn, err := asm.NewSyntax(reg)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidDialect, Message: err.Error()}
	}

	return &LoadResult{Registry: reg, Syntax: syn, FileCount: len(cueFiles)}, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a dialect compilation error to a LoadError
// with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeCompileFailed,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	var defErr *dialect.DefinitionError
	if errors.As(err, &defErr) {
		return &LoadError{
			Code:       ErrCodeInvalidDialect,
			Message:    fmt.Sprintf("%d schema rule violation(s)", len(defErr.Errors)),
			Validation: defErr.Errors,
		}
	}
	return &LoadError{Code: ErrCodeInvalidDialect, Message: err.Error()}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric        = "E001" // Generic/unknown error
	ErrCodeScanError      = "E002" // Directory scan error
	ErrCodeNoFiles        = "E003" // No CUE files found
	ErrCodeLoadFailed     = "E004" // CUE load failed
	ErrCodeNotFound       = "E005" // Path not found
	ErrCodeBuildFailed    = "E006" // CUE build failed
	ErrCodeWriteFailed    = "E007" // File write error
	ErrCodeCompileFailed  = "E008" // Dialect field has the wrong shape
	ErrCodeInvalidDialect = "E009" // Dialect violates schema rules
	ErrCodeJournal        = "E010" // Journal open/read/write error
)
