package fixtures

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeBundle(t *testing.T, root, target, csvContent string) {
	t.Helper()
	dir := filepath.Join(root, target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, target+"_sample.pdf"), []byte("%PDF-1.4"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, target+"_expected.csv"), []byte(csvContent), 0644); err != nil {
		t.Fatal(err)
	}
}

const sampleCSV = "Date,Description,Withdrawal,Deposit,Balance\n" +
	"01-08-2024,UPI/alpha,100.0,,900.0\n" +
	"02-08-2024,NEFT/beta,,50.0,950.0\n" +
	"03-08-2024,ATM,200.0,,750.0\n"

func TestPaths(t *testing.T) {
	b := NewBundle("icici", "data")
	if b.SamplePDF() != "data/icici/icici_sample.pdf" {
		t.Errorf("SamplePDF() = %q", b.SamplePDF())
	}
	if b.ExpectedCSV() != "data/icici/icici_expected.csv" {
		t.Errorf("ExpectedCSV() = %q", b.ExpectedCSV())
	}
}

func TestCheck(t *testing.T) {
	root := t.TempDir()
	writeBundle(t, root, "icici", sampleCSV)

	if missing := NewBundle("icici", root).Check(); len(missing) != 0 {
		t.Errorf("Check() = %v, want empty", missing)
	}

	missing := NewBundle("sbi", root).Check()
	if len(missing) != 2 {
		t.Fatalf("Check() = %v, want both files missing", missing)
	}
	if !strings.Contains(missing[0], "sbi_sample.pdf") {
		t.Errorf("missing[0] = %q", missing[0])
	}
}

func TestSchemaColumns(t *testing.T) {
	root := t.TempDir()
	writeBundle(t, root, "icici", sampleCSV)

	got := NewBundle("icici", root).SchemaColumns()
	want := []string{"Date", "Description", "Withdrawal", "Deposit", "Balance"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SchemaColumns() = %v, want %v", got, want)
	}
}

func TestSchemaColumns_FallbackWhenUnreadable(t *testing.T) {
	got := NewBundle("icici", t.TempDir()).SchemaColumns()
	if !reflect.DeepEqual(got, DefaultColumns) {
		t.Errorf("SchemaColumns() = %v, want defaults", got)
	}
}

func TestExpectedHead(t *testing.T) {
	root := t.TempDir()
	writeBundle(t, root, "icici", sampleCSV)

	head, err := NewBundle("icici", root).ExpectedHead(2)
	if err != nil {
		t.Fatalf("ExpectedHead() error = %v", err)
	}
	lines := strings.Split(head, "\n")
	if len(lines) != 3 {
		t.Fatalf("head lines = %d, want header + 2 rows", len(lines))
	}
	if lines[0] != "Date,Description,Withdrawal,Deposit,Balance" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(head, "NEFT/beta") {
		t.Error("second row missing")
	}
	if strings.Contains(head, "03-08-2024") {
		t.Error("third row should be cut")
	}
}
