package agent

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWrite_CreatesDirectoryAndFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "parsers")
	w := &ArtifactWriter{ParserDir: dir}

	path, err := w.Write("icici", "def parse(p): ...")
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if path != filepath.Join(dir, "icici_parser.py") {
		t.Errorf("path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if !strings.Contains(string(data), "def parse(p): ...") {
		t.Errorf("artifact = %q, generated code lost", data)
	}
}

func TestWrite_AlwaysStartsWithPreamble(t *testing.T) {
	w := &ArtifactWriter{ParserDir: t.TempDir()}

	path, err := w.Write("sbi", "def parse(p):\n    return pd.DataFrame()")
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "import pandas as pd\nimport pdfplumber\nimport re\n") {
		t.Errorf("artifact = %q, want full preamble first", data)
	}
}

func TestWrite_PreambleEvenWhenImportsAppearInBody(t *testing.T) {
	w := &ArtifactWriter{ParserDir: t.TempDir()}

	// Imports buried in a function body must not satisfy the preamble.
	code := "def parse(p):\n" +
		"    import pandas as pd\n" +
		"    import pdfplumber\n" +
		"    import re\n" +
		"    return pd.DataFrame()"
	path, err := w.Write("icici", code)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "import pandas as pd\nimport pdfplumber\nimport re\n") {
		t.Errorf("artifact begins %q, want the preamble regardless of body imports", firstLine(string(data)))
	}
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx != -1 {
		return s[:idx]
	}
	return s
}

func TestWrite_Overwrites(t *testing.T) {
	w := &ArtifactWriter{ParserDir: t.TempDir()}

	if _, err := w.Write("icici", "OLD = True"); err != nil {
		t.Fatal(err)
	}
	path, err := w.Write("icici", "NEW = True")
	if err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "OLD = True") {
		t.Error("old attempt should have been overwritten")
	}
}
