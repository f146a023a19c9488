package extract

import (
	"os"

	"github.com/tablelift/tablelift/internal/common"
)

// extractCSV reads the file bytes verbatim: delimited text is already the
// shape the model wants.
func (e *Extractor) extractCSV(path string) (RawContent, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return RawContent{}, common.WrapExtraction(err, "read csv")
	}
	return RawContent{Text: string(b), Pages: 1}, nil
}
