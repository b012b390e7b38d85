package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"parsewright/internal/logging"
)

// maxDiagnosticBytes bounds the validator output carried into the next
// prompt. The tail is kept since tracebacks and assertion diffs end there.
const maxDiagnosticBytes = 6000

// LoopConfig holds loop construction parameters.
type LoopConfig struct {
	Target      string
	MaxAttempts int

	// Optional progress hooks for the CLI layer.
	OnAttemptStart func(attempt, max int)
	OnVerdict      func(a Attempt)
}

// Loop drives the generate/write/validate cycle for one target. The
// attempt counter increments only on a FAIL verdict below the budget;
// a budget of N yields exactly N full cycles against a parser that never
// passes, and a first-attempt pass leaves the counter at zero.
type Loop struct {
	mu sync.RWMutex

	state    LoopState
	failures int
	history  []StateTransition
	attempts []Attempt

	cfg       LoopConfig
	llm       LLMClient
	validator Validator
	writer    *ArtifactWriter
	prompts   *PromptBuilder

	// feedback holds the previous attempt's evidence, replaced wholesale
	// after every failure. Nil means first attempt.
	feedback *FeedbackContext
}

// NewLoop builds a loop over explicit dependencies. Nothing reads globals;
// tests swap in fakes for the client and validator.
func NewLoop(cfg LoopConfig, llm LLMClient, validator Validator, writer *ArtifactWriter, prompts *PromptBuilder) *Loop {
	return &Loop{
		state:     LoopStateInit,
		cfg:       cfg,
		llm:       llm,
		validator: validator,
		writer:    writer,
		prompts:   prompts,
	}
}

// State returns the current loop state.
func (l *Loop) State() LoopState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Failures returns how many FAIL verdicts have consumed the budget.
func (l *Loop) Failures() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.failures
}

// History returns the state transition history.
func (l *Loop) History() []StateTransition {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]StateTransition{}, l.history...)
}

func (l *Loop) transition(to LoopState, detail string) {
	l.history = append(l.history, StateTransition{
		FromState: l.state,
		ToState:   to,
		Attempt:   len(l.attempts),
		Timestamp: time.Now(),
		Detail:    detail,
	})
	logging.Agent("target=%s %s -> %s (%s)", l.cfg.Target, l.state, to, detail)
	l.state = to
}

// Run executes the loop until a terminal state. The returned Result is
// always populated; the error is nil only on success.
func (l *Loop) Run(ctx context.Context) (*Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != LoopStateInit {
		return nil, fmt.Errorf("loop already ran (state %s)", l.state)
	}

	for !l.state.Terminal() {
		if err := ctx.Err(); err != nil {
			l.transition(LoopStateAborted, "context cancelled")
			break
		}
		l.step(ctx)
	}

	res := &Result{
		Target:       l.cfg.Target,
		State:        l.state,
		Attempts:     append([]Attempt{}, l.attempts...),
		ArtifactPath: l.writer.Path(l.cfg.Target),
	}

	switch l.state {
	case LoopStateSuccess:
		return res, nil
	case LoopStateExhausted:
		return res, fmt.Errorf("%w after %d attempts", ErrExhausted, l.failures)
	default:
		return res, ErrAborted
	}
}

// step runs one full generate/write/validate cycle.
func (l *Loop) step(ctx context.Context) {
	attemptNo := len(l.attempts) + 1
	if l.cfg.OnAttemptStart != nil {
		l.cfg.OnAttemptStart(attemptNo, l.cfg.MaxAttempts)
	}

	start := time.Now()
	l.transition(LoopStateGenerating, fmt.Sprintf("attempt %d", attemptNo))

	code, verdict, diag := l.generate(ctx)
	if verdict != "" {
		// Generation-side failure: budget untouched, loop aborts.
		a := Attempt{Number: attemptNo, Verdict: verdict, Diagnostic: diag, Duration: time.Since(start)}
		l.attempts = append(l.attempts, a)
		if l.cfg.OnVerdict != nil {
			l.cfg.OnVerdict(a)
		}
		l.transition(LoopStateAborted, string(verdict))
		return
	}

	if _, err := l.writer.Write(l.cfg.Target, code); err != nil {
		// Environment failure, not a validation outcome: no validator
		// ran and the budget stays untouched.
		a := Attempt{Number: attemptNo, Code: code, Verdict: VerdictFail,
			Diagnostic: "artifact write failed: " + err.Error(), Duration: time.Since(start)}
		l.attempts = append(l.attempts, a)
		if l.cfg.OnVerdict != nil {
			l.cfg.OnVerdict(a)
		}
		l.transition(LoopStateAborted, "artifact write failed")
		return
	}

	l.transition(LoopStateTesting, "validating artifact")
	vr := l.validator.Validate(ctx, l.cfg.Target)

	a := Attempt{
		Number:   attemptNo,
		Code:     code,
		Duration: time.Since(start),
	}

	if vr.Passed {
		a.Verdict = VerdictPass
		l.attempts = append(l.attempts, a)
		if l.cfg.OnVerdict != nil {
			l.cfg.OnVerdict(a)
		}
		l.transition(LoopStateSuccess, "validation passed")
		return
	}

	a.Verdict = VerdictFail
	a.Diagnostic = diagnosticFrom(vr)
	l.attempts = append(l.attempts, a)
	if l.cfg.OnVerdict != nil {
		l.cfg.OnVerdict(a)
	}

	l.failures++
	if l.failures >= l.cfg.MaxAttempts {
		l.transition(LoopStateExhausted, fmt.Sprintf("budget %d consumed", l.cfg.MaxAttempts))
		return
	}

	// Replace, never accumulate: only the latest failure travels forward.
	l.feedback = &FeedbackContext{Code: code, Diagnostic: a.Diagnostic}
	l.transition(LoopStateFailureRetry, fmt.Sprintf("failure %d of %d", l.failures, l.cfg.MaxAttempts))
}

// generate asks the model for code and extracts it. A non-empty verdict
// means generation failed; the loop aborts without touching the budget.
func (l *Loop) generate(ctx context.Context) (code string, verdict Verdict, diag string) {
	var prompt string
	if l.feedback == nil {
		prompt = l.prompts.Initial()
	} else {
		prompt = l.prompts.Refinement(*l.feedback)
	}

	logging.API("target=%s prompt %d bytes", l.cfg.Target, len(prompt))
	resp, err := l.llm.CompleteWithSystem(ctx, l.prompts.SystemInstruction(), prompt)
	if err != nil {
		logging.APIError("target=%s completion failed: %v", l.cfg.Target, err)
		return "", VerdictAPIError, err.Error()
	}

	code = ExtractCode(resp, l.prompts.Language)
	if code == "" {
		logging.APIError("target=%s response contained no code", l.cfg.Target)
		return "", VerdictEmptyOutput, "model response contained no extractable code"
	}
	return code, "", ""
}

// diagnosticFrom condenses a validation result into prompt-sized evidence.
func diagnosticFrom(vr ValidationResult) string {
	var parts []string
	if vr.StartError != "" {
		parts = append(parts, "validator did not start: "+vr.StartError)
	}
	if vr.TimedOut {
		parts = append(parts, "validator timed out")
	}
	if out := strings.TrimSpace(vr.Output); out != "" {
		parts = append(parts, tail(out, maxDiagnosticBytes))
	}
	if len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("validator exited with code %d and no output", vr.ExitCode))
	}
	return strings.Join(parts, "\n")
}

// tail returns at most n trailing bytes of s, cut at a line boundary.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[len(s)-n:]
	if idx := strings.IndexByte(s, '\n'); idx != -1 && idx < len(s)-1 {
		s = s[idx+1:]
	}
	return s
}
