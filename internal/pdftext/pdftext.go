// Package pdftext extracts plain text from statement PDFs for prompt
// evidence. Fidelity does not matter much here: the model only needs
// enough of the document's shape to see the table layout, so extraction
// failures degrade to an empty sample instead of failing the run.
package pdftext

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Sample extracts up to limit bytes of plain text from the PDF at path.
func Sample(path string, limit int) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}

	text, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read extracted text: %w", err)
	}

	return Clamp(clean(string(text)), limit), nil
}

// clean drops non-printable bytes that PDF extraction tends to produce,
// keeping newlines so row structure survives.
func clean(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\t':
			sb.WriteRune(r)
		case r >= 32 && r < 127:
			sb.WriteRune(r)
		}
	}
	return strings.TrimSpace(sb.String())
}

// Clamp truncates s to at most limit bytes, cutting at a line boundary
// when one is close enough.
func Clamp(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	s = s[:limit]
	if idx := strings.LastIndexByte(s, '\n'); idx > limit/2 {
		s = s[:idx]
	}
	return s
}
