package agent

import (
	"fmt"
	"strings"
)

// PromptBuilder assembles the prompts sent to the model. The initial
// prompt states the contract and grounds it with fixture evidence; a
// refinement prompt additionally carries the previous attempt's code and
// diagnostic, fenced so the model can tell evidence from instruction.
type PromptBuilder struct {
	// Target is the institution identifier, e.g. "icici".
	Target string

	// Language tags the fenced block the model must emit.
	Language string

	// Columns is the expected output schema, in order.
	Columns []string

	// PDFSample is a bounded plain-text excerpt of the sample document.
	PDFSample string

	// ExpectedHead is the first few rows of the expected CSV.
	ExpectedHead string
}

// SystemInstruction is the fixed system prompt for parser generation.
func (b *PromptBuilder) SystemInstruction() string {
	return "You are a senior data engineer who writes precise, self-contained " +
		b.Language + " data-extraction code. Respond with a single fenced " +
		b.Language + " code block and nothing else."
}

// Initial builds the first-attempt prompt.
func (b *PromptBuilder) Initial() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Write a %s module that parses %s bank statement PDFs.\n\n", b.Language, b.Target)
	sb.WriteString("Requirements:\n")
	fmt.Fprintf(&sb, "- Define a function parse(pdf_path: str) -> pd.DataFrame.\n")
	fmt.Fprintf(&sb, "- The DataFrame must have exactly these columns, in order: %s.\n", strings.Join(b.Columns, ", "))
	sb.WriteString("- Amount columns hold floats; cells with no value must be NaN, not 0.\n")
	sb.WriteString("- Dates must be kept as they appear in the statement.\n")
	sb.WriteString("- Use pdfplumber to read the PDF and pandas to build the DataFrame.\n")
	sb.WriteString("- The module must be self-contained: no file I/O besides reading pdf_path, no network.\n")

	b.writeEvidence(&sb)

	fmt.Fprintf(&sb, "\nReturn ONLY the complete module in a single ```%s code block.\n", b.Language)
	return sb.String()
}

// Refinement builds a retry prompt from the previous attempt's failure.
// Only the immediately preceding attempt is carried; the caller replaces
// the feedback wholesale between attempts.
func (b *PromptBuilder) Refinement(fb FeedbackContext) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Your previous %s parser for %s bank statements failed validation.\n\n", b.Language, b.Target)

	sb.WriteString("PREVIOUS CODE:\n")
	fmt.Fprintf(&sb, "```%s\n%s\n```\n\n", b.Language, strings.TrimSpace(fb.Code))

	sb.WriteString("ERROR TRACE:\n")
	fmt.Fprintf(&sb, "```\n%s\n```\n\n", strings.TrimSpace(fb.Diagnostic))

	sb.WriteString("Fix the code so the parser produces the expected output.\n")
	fmt.Fprintf(&sb, "- parse(pdf_path: str) -> pd.DataFrame with columns: %s.\n", strings.Join(b.Columns, ", "))
	sb.WriteString("- Empty amount cells must be NaN, not 0.\n")

	b.writeEvidence(&sb)

	fmt.Fprintf(&sb, "\nReturn ONLY the complete corrected module in a single ```%s code block.\n", b.Language)
	return sb.String()
}

func (b *PromptBuilder) writeEvidence(sb *strings.Builder) {
	if b.PDFSample != "" {
		sb.WriteString("\nText extracted from the sample statement:\n")
		fmt.Fprintf(sb, "```\n%s\n```\n", strings.TrimSpace(b.PDFSample))
	}
	if b.ExpectedHead != "" {
		sb.WriteString("\nFirst rows of the expected CSV:\n")
		fmt.Fprintf(sb, "```csv\n%s\n```\n", strings.TrimSpace(b.ExpectedHead))
	}
}
