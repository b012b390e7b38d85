// Package ux renders the terminal output of a loop run: attempt headers,
// verdict lines, and the final success or failure banner.
package ux

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("42")).
			Foreground(lipgloss.Color("42")).
			Bold(true).
			Padding(0, 2)

	failureStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("196")).
			Foreground(lipgloss.Color("196")).
			Bold(true).
			Padding(0, 2)

	attemptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	verdictPass = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	verdictFail = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// AttemptHeader renders the header line for one generate/validate cycle.
func AttemptHeader(attempt, max int) string {
	return attemptStyle.Render(fmt.Sprintf("▸ attempt %d/%d", attempt, max))
}

// Verdict renders a verdict line.
func Verdict(verdict string, detail string) string {
	line := fmt.Sprintf("  %s", verdict)
	switch verdict {
	case "PASS":
		line = verdictPass.Render(line)
	default:
		line = verdictFail.Render(line)
	}
	if detail != "" {
		line += " " + dimStyle.Render(detail)
	}
	return line
}

// SuccessBanner renders the final banner for a passing parser.
func SuccessBanner(target, artifactPath string) string {
	return successStyle.Render(fmt.Sprintf("✓ %s parser validated\n%s", target, artifactPath))
}

// FailureBanner renders the final banner for an exhausted or aborted run.
func FailureBanner(target, reason string) string {
	return failureStyle.Render(fmt.Sprintf("✗ %s parser failed\n%s", target, reason))
}
