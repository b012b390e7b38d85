package agent

import (
	"context"
	"fmt"
)

// mockLLM is a scriptable LLM client that records every prompt it sees.
type mockLLM struct {
	responses []string
	errs      []error
	calls     int
	systems   []string
	prompts   []string
}

func (m *mockLLM) Complete(ctx context.Context, prompt string) (string, error) {
	return m.CompleteWithSystem(ctx, "", prompt)
}

func (m *mockLLM) CompleteWithSystem(ctx context.Context, system, prompt string) (string, error) {
	i := m.calls
	m.calls++
	m.systems = append(m.systems, system)
	m.prompts = append(m.prompts, prompt)

	if i < len(m.errs) && m.errs[i] != nil {
		return "", m.errs[i]
	}
	if i < len(m.responses) {
		return m.responses[i], nil
	}
	return "", fmt.Errorf("mockLLM: unscripted call %d", i)
}

// mockValidator returns scripted results and records invocation targets.
type mockValidator struct {
	results []ValidationResult
	calls   int
	targets []string
}

func (m *mockValidator) Validate(ctx context.Context, target string) ValidationResult {
	i := m.calls
	m.calls++
	m.targets = append(m.targets, target)

	if i < len(m.results) {
		return m.results[i]
	}
	return ValidationResult{Passed: false, Output: "mockValidator: unscripted call", ExitCode: 1}
}

func fenced(code string) string {
	return "Here is the parser:\n```python\n" + code + "\n```\n"
}

func passResult() ValidationResult {
	return ValidationResult{Passed: true, Output: "VALIDATION_OK", ExitCode: 0}
}

func failResult(diag string) ValidationResult {
	return ValidationResult{Passed: false, Output: diag, ExitCode: 1}
}
