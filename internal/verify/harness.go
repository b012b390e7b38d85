// Package verify implements the built-in validation harness. It runs a
// generated parser against the target's sample PDF through an embedded
// Python driver, streams the resulting CSV back, and compares it with
// the expected fixture after normalization. On a match it prints the
// success marker; on a mismatch it prints a bounded diagnostic that the
// refinement loop feeds back to the model.
package verify

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"parsewright/internal/fixtures"
	"parsewright/internal/logging"
	"parsewright/internal/statement"
)

//go:embed driver.py
var driverPy []byte

// headRows bounds how many rows of each table land in a diagnostic.
const headRows = 5

// Harness verifies one target's generated parser against its fixtures.
type Harness struct {
	// Python is the interpreter used to run the driver.
	Python string

	// ParserDir holds generated artifacts, one <target>_parser.py each.
	ParserDir string

	// FixtureRoot holds fixture bundles.
	FixtureRoot string

	// SuccessMarker is printed to Out on a match.
	SuccessMarker string

	// Timeout bounds the parser subprocess.
	Timeout time.Duration

	// Out receives the marker and diagnostics; typically os.Stdout.
	Out io.Writer
}

// ParserPath returns the artifact path for a target.
func (h *Harness) ParserPath(target string) string {
	return filepath.Join(h.ParserDir, target+"_parser.py")
}

// Run verifies the target. A nil error means the parser's output matched
// the expected CSV and the marker was printed.
func (h *Harness) Run(ctx context.Context, target string) error {
	parserPath := h.ParserPath(target)
	if _, err := os.Stat(parserPath); err != nil {
		return fmt.Errorf("no parser artifact at %s", parserPath)
	}

	bundle := fixtures.NewBundle(target, h.FixtureRoot)
	if missing := bundle.Check(); len(missing) > 0 {
		return fmt.Errorf("missing fixtures: %s", strings.Join(missing, ", "))
	}

	expectedFile, err := os.Open(bundle.ExpectedCSV())
	if err != nil {
		return fmt.Errorf("failed to open expected CSV: %w", err)
	}
	defer expectedFile.Close()

	expected, err := statement.ParseCSV(expectedFile)
	if err != nil {
		return fmt.Errorf("expected CSV is unreadable: %w", err)
	}

	rawActual, err := h.runParser(ctx, parserPath, bundle.SamplePDF())
	if err != nil {
		fmt.Fprintf(h.Out, "parser execution failed:\n%v\n", err)
		return fmt.Errorf("parser execution failed")
	}

	actual, err := statement.ParseCSVString(rawActual)
	if err != nil {
		fmt.Fprintf(h.Out, "parser produced unreadable CSV: %v\n", err)
		return fmt.Errorf("parser output unreadable")
	}

	expected.Normalize()
	actual.Normalize()

	// Column order in the fixture is presentation, not semantics; align
	// the expected side with the parser's order when the sets match.
	expected.ReorderColumns(actual.Columns)

	if diff := statement.Diff(expected, actual); diff != "" {
		logging.Verify("target=%s mismatch", target)
		fmt.Fprintf(h.Out, "expected (first %d rows):\n%s\n\n", headRows, expected.Head(headRows))
		fmt.Fprintf(h.Out, "actual (first %d rows):\n%s\n\n", headRows, actual.Head(headRows))
		fmt.Fprintln(h.Out, diff)
		return fmt.Errorf("parser output does not match expected CSV")
	}

	logging.Verify("target=%s match", target)
	fmt.Fprintln(h.Out, h.SuccessMarker)
	return nil
}

// runParser executes the embedded driver and returns the parser's CSV
// from stdout. Stderr (tracebacks) becomes part of the error.
func (h *Harness) runParser(ctx context.Context, parserPath, pdfPath string) (string, error) {
	driverPath, err := h.writeDriver()
	if err != nil {
		return "", err
	}
	defer os.Remove(driverPath)

	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, h.Python, driverPath, parserPath, pdfPath)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logging.Verify("exec %s %s %s %s", h.Python, driverPath, parserPath, pdfPath)
	if err := cmd.Run(); err != nil {
		trace := strings.TrimSpace(stderr.String())
		if trace == "" {
			trace = err.Error()
		}
		return "", fmt.Errorf("%s", trace)
	}
	return stdout.String(), nil
}

// writeDriver materializes the embedded driver to a temp file.
func (h *Harness) writeDriver() (string, error) {
	f, err := os.CreateTemp("", "parsewright-driver-*.py")
	if err != nil {
		return "", fmt.Errorf("failed to create driver file: %w", err)
	}
	if _, err := f.Write(driverPy); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write driver file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
