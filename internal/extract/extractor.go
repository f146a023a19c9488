package extract

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/tablelift/tablelift/constants"
	"github.com/tablelift/tablelift/internal/common"
)

// Config for the content extractor.
type Config struct {
	// SampleRows is how many head rows per sheet are kept as structural
	// context for the model. Default 10.
	SampleRows int

	// OCRLanguages passed to tesseract, e.g. "eng". Default "eng".
	OCRLanguages string
}

// Extractor dispatches on file extension and produces RawContent. Side
// effects are limited to transient file reads.
type Extractor struct {
	cfg    Config
	ocr    ImageOCR
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SampleRows <= 0 {
		cfg.SampleRows = 10
	}
	if cfg.OCRLanguages == "" {
		cfg.OCRLanguages = "eng"
	}
	return &Extractor{cfg: cfg, ocr: tesseractOCR{languages: cfg.OCRLanguages}, logger: logger}
}

// Extract picks a strategy based on file extension. Failures are wrapped as
// ErrExtraction with the original cause; partial content is never returned.
func (e *Extractor) Extract(ctx context.Context, path string) (RawContent, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	format, ok := constants.MapExtToFormat(ext)
	if !ok {
		e.logger.Error("extract.unsupported_extension", "path", path, "ext", ext)
		return RawContent{}, &common.UnsupportedFileTypeError{Ext: ext}
	}

	e.logger.Debug("extract.start", "path", path, "format", string(format))

	var (
		res RawContent
		err error
	)
	switch format {
	case constants.SPREADSHEET:
		res, err = e.extractSpreadsheet(path)
	case constants.CSV:
		res, err = e.extractCSV(path)
	case constants.PDF:
		res, err = e.extractPDF(ctx, path)
	case constants.IMAGE:
		res, err = e.extractImage(path)
	}
	if err != nil {
		e.logger.Error("extract.failed", "path", path, "format", string(format), "error", err)
		return RawContent{}, err
	}

	res.Format = format
	res.Duration = time.Since(start)
	e.logger.Info("extract.ok",
		"path", path,
		"format", string(format),
		"text_len", len(res.Text),
		"pages", res.Pages,
		"sheets", len(res.SheetSamples),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
