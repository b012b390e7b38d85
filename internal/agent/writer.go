package agent

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"parsewright/internal/logging"
)

// preamble is prepended to every artifact unconditionally. Models
// occasionally elide imports when refining code, and an import that only
// appears inside a function body must not count; the artifact always
// starts with the full dependency block.
const preamble = "import pandas as pd\nimport pdfplumber\nimport re\n"

// ArtifactWriter persists generated parser code to the artifact layout:
// one <target>_parser.py per target under the parser directory. Each
// attempt overwrites the previous one; only the latest attempt is kept.
type ArtifactWriter struct {
	ParserDir string
}

// Path returns the artifact path for a target.
func (w *ArtifactWriter) Path(target string) string {
	return filepath.Join(w.ParserDir, target+"_parser.py")
}

// Write persists code for the target, creating the parser directory if
// needed, and returns the artifact path.
func (w *ArtifactWriter) Write(target, code string) (string, error) {
	if err := os.MkdirAll(w.ParserDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create parser directory: %w", err)
	}

	code = preamble + "\n" + strings.TrimLeft(code, "\n")

	path := w.Path(target)
	if err := os.WriteFile(path, []byte(code), 0644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}

	logging.Artifact("wrote %s (%d bytes)", path, len(code))
	return path, nil
}
