package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/complexir/internal/store"
)

// JournalOptions holds flags shared by commands that read a fold journal.
type JournalOptions struct {
	*RootOptions
	Journal string
}

func (o *JournalOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Journal, "journal", "", "path to the SQLite fold journal (default: fold.journal from config)")
}

// open opens the journal, which must already exist. Errors are reported
// through f and returned as ExitCommandError.
func (o *JournalOptions) open(cmd *cobra.Command, f *OutputFormatter) (*store.Store, error) {
	path := o.Journal
	if !cmd.Flags().Changed("journal") && o.Config != nil && o.Config.Fold.Journal != "" {
		path = o.Config.Fold.Journal
	}
	if path == "" {
		return nil, NewExitError(ExitCommandError, "--journal is required")
	}
	if _, err := os.Stat(path); err != nil {
		_ = f.Error(ErrCodeNotFound, fmt.Sprintf("journal not found: %s", path), nil)
		return nil, WrapExitError(ExitCommandError, "journal not found", err)
	}

	st, err := store.Open(path)
	if err != nil {
		_ = f.Error(ErrCodeJournal, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	f.VerboseLog("Opened journal %s", path)
	return st, nil
}

// RunSummary is a journaled run as reported by history and replay.
type RunSummary struct {
	ID       string   `json:"id"`
	Seq      int64    `json:"seq"`
	Created  string   `json:"created,omitempty"` // RFC 3339, from the run ID
	Source   string   `json:"source"`
	ModuleID string   `json:"module_id"`
	OutputID string   `json:"output_id"`
	Rewrites []string `json:"rewrites"`
}

func summarize(run store.Run) RunSummary {
	s := RunSummary{
		ID:       run.ID,
		Seq:      run.Seq,
		Source:   run.Source,
		ModuleID: run.ModuleID,
		OutputID: run.OutputID,
		Rewrites: make([]string, 0, len(run.Rewrites)),
	}
	if t, ok := run.Created(); ok {
		s.Created = t.Format("2006-01-02T15:04:05.000Z07:00")
	}
	for _, rw := range run.Rewrites {
		s.Rewrites = append(s.Rewrites, rw.String())
	}
	return s
}
