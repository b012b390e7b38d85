package agent

import (
	"strings"
	"testing"
)

func testBuilder() *PromptBuilder {
	return &PromptBuilder{
		Target:       "icici",
		Language:     "python",
		Columns:      []string{"Date", "Description", "Withdrawal", "Deposit", "Balance"},
		PDFSample:    "01-08-2024 UPI/alpha 100.00 1000.00",
		ExpectedHead: "Date,Description,Withdrawal,Deposit,Balance\n01-08-2024,UPI/alpha,100.0,,1000.0",
	}
}

func TestInitial(t *testing.T) {
	p := testBuilder().Initial()

	for _, want := range []string{
		"icici",
		"parse(pdf_path: str) -> pd.DataFrame",
		"Date, Description, Withdrawal, Deposit, Balance",
		"NaN, not 0",
		"pdfplumber",
		"01-08-2024 UPI/alpha",
		"UPI/alpha,100.0",
		"```python code block",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("Initial() missing %q", want)
		}
	}
	if strings.Contains(p, "PREVIOUS CODE") {
		t.Error("Initial() must not carry feedback sections")
	}
}

func TestRefinement(t *testing.T) {
	fb := FeedbackContext{
		Code:       "def parse(p):\n    raise RuntimeError",
		Diagnostic: "Traceback (most recent call last):\nRuntimeError",
	}
	p := testBuilder().Refinement(fb)

	if !strings.Contains(p, "PREVIOUS CODE:\n```python\ndef parse(p):") {
		t.Error("Refinement() missing fenced previous code")
	}
	if !strings.Contains(p, "ERROR TRACE:\n```\nTraceback") {
		t.Error("Refinement() missing fenced diagnostic")
	}
	// Fixture evidence still travels on retries.
	if !strings.Contains(p, "01-08-2024 UPI/alpha") {
		t.Error("Refinement() missing PDF sample")
	}
}

func TestSystemInstruction(t *testing.T) {
	s := testBuilder().SystemInstruction()
	if !strings.Contains(s, "python") {
		t.Errorf("SystemInstruction() = %q, want language mention", s)
	}
}
