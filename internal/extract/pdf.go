package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/tablelift/tablelift/internal/common"
)

// tablesMarker separates flattened table rows from free text so tabular
// structure survives the text-only prompt.
const tablesMarker = "TABLES:"

// extractPDF pulls per-page text and appends any detected table-like line
// runs, comma-joined, under the TABLES marker.
func (e *Extractor) extractPDF(ctx context.Context, path string) (RawContent, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return RawContent{}, common.WrapExtraction(err, "open pdf")
	}
	defer doc.Close()

	var (
		b     strings.Builder
		warns []string
	)
	pages := doc.NumPage()
	for i := 0; i < pages; i++ {
		if err := ctx.Err(); err != nil {
			return RawContent{}, common.WrapExtraction(err, "pdf extraction canceled")
		}
		pageText, err := doc.Text(i)
		if err != nil {
			e.logger.Warn("extract.pdf.page_error", "path", path, "page", i+1, "error", err)
			warns = append(warns, err.Error())
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(pageText)
	}

	text := b.String()
	if tables := detectTables(text); len(tables) > 0 {
		var tb strings.Builder
		tb.WriteString(text)
		tb.WriteString("\n\n")
		tb.WriteString(tablesMarker)
		tb.WriteString("\n")
		for _, row := range tables {
			tb.WriteString(strings.Join(row, ","))
			tb.WriteString("\n")
		}
		text = tb.String()
	}

	return RawContent{Text: text, Pages: pages, Warnings: warns}, nil
}

var (
	reNumericCell = regexp.MustCompile(`-?[\d,]+\.\d+|-?\d+`)
	reColumnSplit = regexp.MustCompile(`\t|\s{2,}`)
)

// detectTables finds line runs that look like table rows: at least three
// columns once split on tabs or wide gaps, with two or more numeric cells.
// It returns the rows as column slices ready for comma-joining.
func detectTables(text string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cols := reColumnSplit.Split(line, -1)
		if len(cols) < 3 {
			continue
		}
		numeric := 0
		for _, c := range cols {
			if reNumericCell.MatchString(c) {
				numeric++
			}
		}
		if numeric < 2 {
			continue
		}
		for i := range cols {
			cols[i] = strings.TrimSpace(cols[i])
		}
		rows = append(rows, cols)
	}
	return rows
}
