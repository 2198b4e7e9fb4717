package harness

import "fmt"

// Trace stages, in pipeline order.
const (
	StageParse   = "parse"
	StageVerify  = "verify"
	StageFold    = "fold"
	StageRewrite = "rewrite"
	StagePrint   = "print"
	StageError   = "error"
)

// TraceEvent is one step of a scenario run.
type TraceEvent struct {
	Seq    int64  `json:"seq"`
	Stage  string `json:"stage"`
	Detail string `json:"detail"`
}

// Failure describes the error that stopped the pipeline.
type Failure struct {
	Kind    string `json:"kind"` // PARSE_ERROR, TYPE_MISMATCH, CONSTRAINT_VIOLATION, or "" for other errors
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Message string `json:"message"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation and assertion held.
	Pass bool `json:"pass"`

	// Errors lists failed expectations and assertions.
	Errors []string `json:"errors,omitempty"`

	// Trace lists pipeline stages in order.
	Trace []TraceEvent `json:"trace"`

	// Output is the printed module, empty if the pipeline failed.
	Output string `json:"output,omitempty"`

	// Rewrites lists applied folds as "%1 -> %a (re-of-create)".
	Rewrites []string `json:"rewrites,omitempty"`

	// Failure is set if the pipeline stopped on an error.
	Failure *Failure `json:"failure,omitempty"`

	// RunID identifies the journaled fold run, empty if nothing was folded.
	RunID string `json:"run_id,omitempty"`

	// ops counts output ops by kind name, for op_count assertions.
	ops map[string]int
	// total is the number of output ops.
	total int
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		ops:    make(map[string]int),
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a trace event numbered after the previous one.
func (r *Result) AddTrace(stage, format string, args ...any) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:    int64(len(r.Trace) + 1),
		Stage:  stage,
		Detail: fmt.Sprintf(format, args...),
	})
}
