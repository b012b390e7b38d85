// Package validator runs the validation subprocess for a target and
// classifies its outcome. The contract with the subprocess is narrow on
// purpose: a run passes iff the process exits zero AND its combined
// output contains the configured success marker. Everything else is a
// failure whose output becomes the diagnostic for the next attempt.
package validator

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"parsewright/internal/agent"
	"parsewright/internal/logging"
)

// targetPlaceholder in the argv template is replaced with the target
// identifier before execution.
const targetPlaceholder = "{target}"

// Runner executes a configurable validation command.
type Runner struct {
	// Command is the argv template, e.g. ["python3", "run_tests.py", "{target}"].
	Command []string

	// SuccessMarker must appear in the combined output for a PASS.
	SuccessMarker string

	// Timeout bounds a single validation run.
	Timeout time.Duration

	// Dir is the working directory for the subprocess; empty means inherit.
	Dir string
}

// Validate runs the validation command for the target. It never returns
// an error: a run that could not start is still a failed validation, with
// the start failure recorded as the diagnostic.
func (r *Runner) Validate(ctx context.Context, target string) agent.ValidationResult {
	argv := r.renderArgv(target)
	if len(argv) == 0 {
		return agent.ValidationResult{
			Passed:     false,
			StartError: "empty validator command",
			ExitCode:   -1,
		}
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	logging.Validator("target=%s exec %s", target, strings.Join(argv, " "))

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Dir
	output, err := cmd.CombinedOutput()
	elapsed := time.Since(start)

	res := agent.ValidationResult{
		Output:   string(output),
		Duration: elapsed,
		TimedOut: errors.Is(ctx.Err(), context.DeadlineExceeded),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = -1
			res.StartError = err.Error()
		}
		logging.Validator("target=%s verdict=FAIL exit=%d timeout=%v in %v",
			target, res.ExitCode, res.TimedOut, elapsed)
		return res
	}

	// Exit zero alone is not enough; a broken harness that crashes before
	// comparing anything must not register as a pass.
	res.Passed = strings.Contains(res.Output, r.SuccessMarker)
	if !res.Passed {
		logging.Validator("target=%s verdict=FAIL marker %q missing", target, r.SuccessMarker)
	} else {
		logging.Validator("target=%s verdict=PASS in %v", target, elapsed)
	}
	return res
}

// renderArgv substitutes the target placeholder into the command template.
func (r *Runner) renderArgv(target string) []string {
	argv := make([]string, len(r.Command))
	for i, arg := range r.Command {
		argv[i] = strings.ReplaceAll(arg, targetPlaceholder, target)
	}
	return argv
}
