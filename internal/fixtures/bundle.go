// Package fixtures resolves the on-disk fixture bundle for a target: the
// sample statement PDF and the expected CSV the generated parser must
// reproduce. Layout is fixed by convention:
//
//	<root>/<target>/<target>_sample.pdf
//	<root>/<target>/<target>_expected.csv
package fixtures

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// DefaultColumns is the statement schema used when the expected CSV
// header cannot be read.
var DefaultColumns = []string{"Date", "Description", "Withdrawal", "Deposit", "Balance"}

// Bundle locates a target's fixture files.
type Bundle struct {
	Target string
	Root   string
}

// NewBundle returns a bundle for the target under the fixture root.
func NewBundle(target, root string) *Bundle {
	return &Bundle{Target: target, Root: root}
}

// SamplePDF returns the sample statement path.
func (b *Bundle) SamplePDF() string {
	return fmt.Sprintf("%s/%s/%s_sample.pdf", b.Root, b.Target, b.Target)
}

// ExpectedCSV returns the expected output path.
func (b *Bundle) ExpectedCSV() string {
	return fmt.Sprintf("%s/%s/%s_expected.csv", b.Root, b.Target, b.Target)
}

// Check returns the fixture paths that are missing. An empty slice means
// the bundle is complete and the loop can start.
func (b *Bundle) Check() []string {
	var missing []string
	for _, path := range []string{b.SamplePDF(), b.ExpectedCSV()} {
		if _, err := os.Stat(path); err != nil {
			missing = append(missing, path)
		}
	}
	return missing
}

// SchemaColumns returns the column names from the expected CSV header,
// falling back to the default statement schema when the file cannot be
// read. The prompt still needs a schema even when the CSV is broken; the
// validator will catch the mismatch later.
func (b *Bundle) SchemaColumns() []string {
	f, err := os.Open(b.ExpectedCSV())
	if err != nil {
		return DefaultColumns
	}
	defer f.Close()

	header, err := csv.NewReader(f).Read()
	if err != nil || len(header) == 0 {
		return DefaultColumns
	}
	for i, col := range header {
		header[i] = strings.TrimSpace(col)
	}
	return header
}

// ExpectedHead returns the header plus up to n data rows of the expected
// CSV, as raw CSV text for prompt evidence.
func (b *Bundle) ExpectedHead(n int) (string, error) {
	data, err := os.ReadFile(b.ExpectedCSV())
	if err != nil {
		return "", fmt.Errorf("failed to read expected CSV: %w", err)
	}

	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	limit := n + 1 // header plus n rows
	if limit > len(lines) {
		limit = len(lines)
	}
	return strings.TrimSpace(strings.Join(lines[:limit], "\n")), nil
}
