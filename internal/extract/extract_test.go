package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/tablelift/tablelift/constants"
	"github.com/tablelift/tablelift/internal/common"
)

func TestExtractUnsupportedExtension(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	_, err := e.Extract(context.Background(), "statement.docx")

	var ufe *common.UnsupportedFileTypeError
	if !errors.As(err, &ufe) {
		t.Fatalf("want UnsupportedFileTypeError, got %v", err)
	}
	if ufe.Ext != "docx" {
		t.Errorf("Ext = %q", ufe.Ext)
	}
}

func TestExtractCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tx.csv")
	content := "date,description,amount\n2025-03-01,Sales,100.00\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	e := NewExtractor(Config{}, nil)
	got, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != content {
		t.Errorf("csv content must pass through verbatim, got %q", got.Text)
	}
	if got.Format != constants.CSV {
		t.Errorf("Format = %q", got.Format)
	}
}

func TestExtractCSVMissingFile(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	_, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	if !errors.Is(err, common.ErrExtraction) {
		t.Fatalf("want ErrExtraction, got %v", err)
	}
}

func TestExtractSpreadsheet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pnl.xlsx")

	f := excelize.NewFile()
	const sheet = "Sheet1"
	rows := [][]any{
		{"Subcategory", "Amount", "Period"},
		{"Sales Revenue", 12400.00, "March 2025"},
		{"Rent", -800.00, "March 2025"},
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	e := NewExtractor(Config{SampleRows: 2}, nil)
	got, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Format != constants.SPREADSHEET {
		t.Errorf("Format = %q", got.Format)
	}
	if !strings.Contains(got.Text, "Sheet: Sheet1") {
		t.Errorf("text missing sheet header:\n%s", got.Text)
	}
	if !strings.Contains(got.Text, "Sales Revenue,12400,March 2025") {
		t.Errorf("text missing flattened row:\n%s", got.Text)
	}
	if len(got.SheetSamples) != 1 {
		t.Fatalf("want 1 sheet sample, got %d", len(got.SheetSamples))
	}
	if len(got.SheetSamples[0].Rows) != 2 {
		t.Errorf("SampleRows cap not applied, got %d rows", len(got.SheetSamples[0].Rows))
	}
}

func TestDetectTables(t *testing.T) {
	text := strings.Join([]string{
		"Profit and Loss Statement",
		"For the month of March 2025",
		"",
		"Sales Revenue\t12400.00\t11000.00",
		"Rent Expense\t800.00\t800.00",
		"Notes: figures are unaudited",
	}, "\n")

	rows := detectTables(text)
	if len(rows) != 2 {
		t.Fatalf("want 2 table rows, got %d: %v", len(rows), rows)
	}
	if rows[0][0] != "Sales Revenue" || rows[0][1] != "12400.00" {
		t.Errorf("row 0 = %v", rows[0])
	}
}

func TestDetectTablesIgnoresProse(t *testing.T) {
	text := "This invoice totals 100.00 and is due in 30 days.\nThanks for your business."
	if rows := detectTables(text); len(rows) != 0 {
		t.Fatalf("prose must not be detected as tables, got %v", rows)
	}
}
