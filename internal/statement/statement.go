// Package statement models parsed bank statement tables and the
// normalization steps applied before comparing a parser's output against
// the expected fixture. Normalization is deliberately symmetric: every
// step is applied to both sides, so legacy column names, date formats,
// and zero-vs-missing ambiguity never decide a verdict.
package statement

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Table is a rectangular statement: a header and raw string cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// legacyColumns maps older fixture headers to the canonical schema.
var legacyColumns = map[string]string{
	"Debit Amt":  "Withdrawal",
	"Credit Amt": "Deposit",
}

// numericColumns are compared as floats with tolerance; everything else
// is compared as normalized text.
var numericColumns = map[string]bool{
	"Withdrawal": true,
	"Deposit":    true,
	"Balance":    true,
}

// dateLayouts are the statement date formats normalized to ISO form.
// Timestamped variants cover parsers that emit full datetimes.
var dateLayouts = []string{
	"02-01-2006",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"02-01-2006 15:04:05",
}

// ParseCSV reads a table from CSV. The first record is the header; rows
// shorter than the header are padded with empty cells.
func ParseCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV has no header")
	}

	t := &Table{Columns: records[0]}
	for _, rec := range records[1:] {
		row := make([]string, len(t.Columns))
		for i := range row {
			if i < len(rec) {
				row[i] = rec[i]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ParseCSVString reads a table from CSV text.
func ParseCSVString(s string) (*Table, error) {
	return ParseCSV(strings.NewReader(s))
}

// RenameLegacyColumns rewrites older fixture headers to the canonical
// schema names.
func (t *Table) RenameLegacyColumns() {
	for i, col := range t.Columns {
		if canonical, ok := legacyColumns[col]; ok {
			t.Columns[i] = canonical
		}
	}
}

// NormalizeDates rewrites Date cells to YYYY-MM-DD. Cells that match no
// known layout are left untouched.
func (t *Table) NormalizeDates() {
	idx := t.columnIndex("Date")
	if idx < 0 {
		return
	}
	for _, row := range t.Rows {
		cell := strings.TrimSpace(row[idx])
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, cell); err == nil {
				row[idx] = d.Format("2006-01-02")
				break
			}
		}
	}
}

// StripThousandsSeparators removes comma grouping from numeric cells so
// "1,234.56" coerces to a float instead of falling back to text
// comparison.
func (t *Table) StripThousandsSeparators() {
	for i, col := range t.Columns {
		if !numericColumns[col] {
			continue
		}
		for _, row := range t.Rows {
			row[i] = strings.ReplaceAll(row[i], ",", "")
		}
	}
}

// ReorderColumns rearranges the table's columns to the given order. A
// no-op unless the requested set matches the table's columns exactly;
// genuine schema mismatches must stay visible to Diff.
func (t *Table) ReorderColumns(order []string) {
	if len(order) != len(t.Columns) {
		return
	}
	perm := make([]int, len(order))
	for i, name := range order {
		idx := t.columnIndex(name)
		if idx < 0 {
			return
		}
		perm[i] = idx
	}

	t.Columns = append([]string{}, order...)
	for r, row := range t.Rows {
		next := make([]string, len(row))
		for i, idx := range perm {
			next[i] = row[idx]
		}
		t.Rows[r] = next
	}
}

// ZeroAsMissing blanks literal zero amounts in the Withdrawal and Deposit
// columns. Parsers disagree on whether an empty amount cell is missing or
// 0.0; neither reading should fail validation.
func (t *Table) ZeroAsMissing() {
	for _, name := range []string{"Withdrawal", "Deposit"} {
		idx := t.columnIndex(name)
		if idx < 0 {
			continue
		}
		for _, row := range t.Rows {
			if v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64); err == nil && v == 0 {
				row[idx] = ""
			}
		}
	}
}

// CollapseWhitespace trims cells and collapses internal runs of
// whitespace to single spaces in non-numeric columns.
func (t *Table) CollapseWhitespace() {
	for i, col := range t.Columns {
		if numericColumns[col] {
			continue
		}
		for _, row := range t.Rows {
			row[i] = strings.Join(strings.Fields(row[i]), " ")
		}
	}
}

// Normalize applies all normalization steps in order. Separators are
// stripped before the zero rule so "0,000.00" style cells still blank.
func (t *Table) Normalize() {
	t.RenameLegacyColumns()
	t.StripThousandsSeparators()
	t.NormalizeDates()
	t.ZeroAsMissing()
	t.CollapseWhitespace()
}

// Head renders the header and up to n rows as CSV text, for diagnostics.
func (t *Table) Head(n int) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	w.Write(t.Columns)
	for i, row := range t.Rows {
		if i >= n {
			break
		}
		w.Write(row)
	}
	w.Flush()
	return strings.TrimSpace(sb.String())
}

func (t *Table) columnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}
