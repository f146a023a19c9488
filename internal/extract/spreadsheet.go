package extract

import (
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tablelift/tablelift/internal/common"
)

// extractSpreadsheet reads every cell of every sheet into a CSV-like text
// blob and keeps the first few rows of each sheet as SheetSamples.
func (e *Extractor) extractSpreadsheet(path string) (RawContent, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return RawContent{}, common.WrapExtraction(err, "open workbook")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			e.logger.Warn("extract.spreadsheet.close_error", "path", path, "error", cerr)
		}
	}()

	var (
		b       strings.Builder
		samples []SheetSample
	)
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return RawContent{}, common.WrapExtraction(err, "read sheet "+sheet)
		}

		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Sheet: ")
		b.WriteString(sheet)
		b.WriteString("\n")
		for _, row := range rows {
			b.WriteString(strings.Join(row, ","))
			b.WriteString("\n")
		}

		sample := SheetSample{Sheet: sheet}
		for i, row := range rows {
			if i >= e.cfg.SampleRows {
				break
			}
			sample.Rows = append(sample.Rows, row)
		}
		samples = append(samples, sample)
	}

	return RawContent{
		Text:         b.String(),
		SheetSamples: samples,
		Pages:        len(samples),
	}, nil
}
