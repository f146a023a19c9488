package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tablelift/tablelift/constants"
	"github.com/tablelift/tablelift/internal/reconcile"
)

// Service turns a canonical table into XLSX bytes: a transactions sheet with
// the full rows, a Summary sheet with headline figures, and a Category
// Summary sheet when the table carries categories.
type Service struct {
	logger *slog.Logger

	// sheet is the transactions sheet name, configurable for collaborators
	// that template on it.
	sheet string
}

func NewService(sheetName string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if sheetName == "" {
		sheetName = defaultSheetTransactions
	}
	return &Service{logger: logger, sheet: sheetName}
}

const (
	defaultSheetTransactions = "Transactions"
	sheetSummary             = "Summary"
	sheetCategories          = "Category Summary"
)

// ExportXLSX renders the table into a workbook. An empty table still
// produces a workbook with the header row, so a failed document downloads
// as a well-formed, empty spreadsheet.
func (s *Service) ExportXLSX(table reconcile.Table) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	if err := s.writeTransactions(f, table); err != nil {
		return nil, err
	}
	if err := s.writeSummary(f, table); err != nil {
		return nil, err
	}
	if hasCategories(table) {
		if err := s.writeCategorySummary(f, table); err != nil {
			return nil, err
		}
	}

	// excelize seeds "Sheet1"; drop it once real sheets exist
	_ = f.DeleteSheet("Sheet1")
	if idx, _ := f.GetSheetIndex(s.sheet); idx != -1 {
		f.SetActiveSheet(idx)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(table.Rows),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func (s *Service) writeTransactions(f *excelize.File, table reconcile.Table) error {
	if _, err := f.NewSheet(s.sheet); err != nil {
		return err
	}

	cols := table.Columns()
	headers := append([]string{}, cols...)
	headers = append(headers, "source")
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(s.sheet, cell, h); err != nil {
			return err
		}
	}

	for r, row := range table.Rows {
		values := []any{row.Date, row.Description, row.Amount, row.MainCategory, row.Subcategory}
		if len(cols) > len(constants.RequiredColumns()) {
			values = append(values, row.Category)
		}
		values = append(values, sourceCell(row.Source))
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(s.sheet, cell, v); err != nil {
				return err
			}
		}
	}

	_ = f.SetColWidth(s.sheet, "A", "A", 12)
	_ = f.SetColWidth(s.sheet, "B", "B", 48)
	_ = f.SetColWidth(s.sheet, "C", "C", 14)
	_ = f.SetColWidth(s.sheet, "D", "E", 22)
	return nil
}

func (s *Service) writeSummary(f *excelize.File, table reconcile.Table) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return err
	}

	var sum float64
	for _, row := range table.Rows {
		sum += row.Amount
	}
	avg := 0.0
	if len(table.Rows) > 0 {
		avg = sum / float64(len(table.Rows))
	}

	lines := [][]any{
		{"Metric", "Value"},
		{"Total Transactions", len(table.Rows)},
		{"Total Amount", sum},
		{"Average Amount", avg},
	}
	for r, line := range lines {
		for c, v := range line {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellValue(sheetSummary, cell, v); err != nil {
				return err
			}
		}
	}
	_ = f.SetColWidth(sheetSummary, "A", "A", 24)
	return nil
}

func (s *Service) writeCategorySummary(f *excelize.File, table reconcile.Table) error {
	if _, err := f.NewSheet(sheetCategories); err != nil {
		return err
	}

	type agg struct {
		sum   float64
		count int
	}
	byCat := make(map[string]*agg)
	for _, row := range table.Rows {
		a, ok := byCat[row.Category]
		if !ok {
			a = &agg{}
			byCat[row.Category] = a
		}
		a.sum += row.Amount
		a.count++
	}

	names := make([]string, 0, len(byCat))
	for name := range byCat {
		names = append(names, name)
	}
	// largest total first; name breaks ties so output is stable
	sort.Slice(names, func(i, j int) bool {
		si, sj := byCat[names[i]].sum, byCat[names[j]].sum
		if si != sj {
			return si > sj
		}
		return names[i] < names[j]
	})

	header := []any{"Category", "Total Amount", "Transactions"}
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellValue(sheetCategories, cell, v); err != nil {
			return err
		}
	}
	for r, name := range names {
		a := byCat[name]
		for c, v := range []any{name, a.sum, a.count} {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheetCategories, cell, v); err != nil {
				return err
			}
		}
	}
	_ = f.SetColWidth(sheetCategories, "A", "A", 32)
	return nil
}

func hasCategories(table reconcile.Table) bool {
	for _, row := range table.Rows {
		if row.Category != "" {
			return true
		}
	}
	return false
}

// sourceCell renders the auxiliary payload as compact JSON so nothing the
// model produced is lost in the workbook.
func sourceCell(src map[string]any) string {
	if len(src) == 0 {
		return ""
	}
	b, err := json.Marshal(src)
	if err != nil {
		return ""
	}
	return string(b)
}
