// Package agent implements the self-correcting parser generation loop:
// ask the LLM for a parser, write it to disk, validate it against the
// target's fixture bundle, and feed failures back until the parser passes
// or the retry budget is exhausted.
package agent

import (
	"context"
	"time"
)

// Verdict classifies a single validation run.
type Verdict string

const (
	// VerdictPass means the subprocess exited zero and printed the
	// success marker.
	VerdictPass Verdict = "PASS"

	// VerdictFail means the subprocess ran but the parser output did not
	// match expectations (nonzero exit or missing marker).
	VerdictFail Verdict = "FAIL"

	// VerdictAPIError means the LLM call itself failed; it does not
	// consume the retry budget.
	VerdictAPIError Verdict = "API_ERROR"

	// VerdictEmptyOutput means the model responded but no code block
	// could be extracted.
	VerdictEmptyOutput Verdict = "EMPTY_OUTPUT"
)

// LoopState represents the current state of the refinement loop.
type LoopState string

const (
	LoopStateInit         LoopState = "init"
	LoopStateGenerating   LoopState = "generating"
	LoopStateTesting      LoopState = "testing"
	LoopStateSuccess      LoopState = "success"
	LoopStateFailureRetry LoopState = "failure_retry"
	LoopStateAborted      LoopState = "aborted"
	LoopStateExhausted    LoopState = "exhausted"
)

// Terminal reports whether the loop has finished.
func (s LoopState) Terminal() bool {
	switch s {
	case LoopStateSuccess, LoopStateAborted, LoopStateExhausted:
		return true
	}
	return false
}

// StateTransition records a single state change for debugging.
type StateTransition struct {
	FromState LoopState
	ToState   LoopState
	Attempt   int
	Timestamp time.Time
	Detail    string
}

// Attempt records one generate/write/validate cycle.
type Attempt struct {
	Number     int
	Code       string
	Diagnostic string
	Verdict    Verdict
	Duration   time.Duration
}

// FeedbackContext carries the failure evidence from the immediately
// preceding attempt into the next prompt. It is replaced wholesale on
// every failure; earlier attempts are never accumulated.
type FeedbackContext struct {
	Code       string
	Diagnostic string
}

// Result is the final outcome of a loop run.
type Result struct {
	Target       string
	State        LoopState
	Attempts     []Attempt
	ArtifactPath string
}

// LLMClient is the narrow surface the loop needs from a generative model.
type LLMClient interface {
	// Complete sends a prompt and returns the raw completion text.
	Complete(ctx context.Context, prompt string) (string, error)

	// CompleteWithSystem sends a prompt with a system instruction.
	CompleteWithSystem(ctx context.Context, system, prompt string) (string, error)
}

// ValidationResult is what a validator run produces. A run that could not
// even start (missing interpreter, bad argv) is still a FAIL with the
// failure reason as its diagnostic; the validator never returns an error.
type ValidationResult struct {
	Passed     bool
	Output     string
	ExitCode   int
	Duration   time.Duration
	TimedOut   bool
	StartError string
}

// Validator runs the validation subprocess for a target.
type Validator interface {
	Validate(ctx context.Context, target string) ValidationResult
}
