package extract

import (
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/tablelift/tablelift/internal/common"
)

// tesseractOCR binds gosseract. One client per call: the binding is not
// safe for reuse across files.
type tesseractOCR struct {
	languages string
}

func (t tesseractOCR) ImageText(path string) (string, error) {
	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if t.languages != "" {
		if err := client.SetLanguage(strings.Split(t.languages, "+")...); err != nil {
			return "", err
		}
	}
	if err := client.SetImage(path); err != nil {
		return "", err
	}
	return client.Text()
}

func (e *Extractor) extractImage(path string) (RawContent, error) {
	text, err := e.ocr.ImageText(path)
	if err != nil {
		return RawContent{}, common.WrapExtraction(err, "image ocr")
	}
	return RawContent{Text: strings.TrimSpace(text), Pages: 1}, nil
}
