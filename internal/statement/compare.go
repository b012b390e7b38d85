package statement

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// relTolerance is the relative tolerance for amount comparison. Float
// round-tripping through CSV loses a little precision; exact equality
// would fail correct parsers.
const relTolerance = 1e-5

// Cell is a typed view of one table cell for comparison. Numeric columns
// carry Number (nil for missing); text columns carry Text.
type Cell struct {
	Text   string
	Number *float64
}

// records converts the table into typed rows keyed by column name.
func (t *Table) records() []map[string]Cell {
	out := make([]map[string]Cell, len(t.Rows))
	for i, row := range t.Rows {
		rec := make(map[string]Cell, len(t.Columns))
		for j, col := range t.Columns {
			cell := strings.TrimSpace(row[j])
			if numericColumns[col] {
				if cell == "" {
					rec[col] = Cell{}
				} else if v, err := strconv.ParseFloat(cell, 64); err == nil {
					rec[col] = Cell{Number: &v}
				} else {
					// Unparseable amounts compare as text, which will
					// surface in the diff.
					rec[col] = Cell{Text: cell}
				}
			} else {
				rec[col] = Cell{Text: cell}
			}
		}
		out[i] = rec
	}
	return out
}

// Diff compares two normalized tables and returns a human-readable
// difference report, or "" when they match. Column order matters; amounts
// match within relative tolerance.
func Diff(expected, actual *Table) string {
	if d := cmp.Diff(expected.Columns, actual.Columns); d != "" {
		return "column mismatch (-expected +actual):\n" + d
	}
	if len(expected.Rows) != len(actual.Rows) {
		return fmt.Sprintf("row count mismatch: expected %d rows, got %d",
			len(expected.Rows), len(actual.Rows))
	}
	if d := cmp.Diff(expected.records(), actual.records(),
		cmpopts.EquateApprox(relTolerance, 0)); d != "" {
		return "cell mismatch (-expected +actual):\n" + d
	}
	return ""
}

// Equal reports whether two normalized tables match.
func Equal(expected, actual *Table) bool {
	return Diff(expected, actual) == ""
}
