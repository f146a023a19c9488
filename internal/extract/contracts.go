package extract

import (
	"context"
	"time"

	"github.com/tablelift/tablelift/constants"
)

// SheetSample is the head of one spreadsheet sheet, kept alongside the flat
// text blob so the model sees some structure even after flattening.
type SheetSample struct {
	Sheet string     `json:"sheet"`
	Rows  [][]string `json:"rows"`
}

// RawContent is the format-independent representation of one uploaded file.
// It is owned by the pipeline for the duration of a single parse call.
type RawContent struct {
	Text         string
	SheetSamples []SheetSample
	Format       constants.Format
	Pages        int
	Duration     time.Duration
	Warnings     []string
}

// ContentExtractor is Stage 1: file -> raw content.
type ContentExtractor interface {
	Extract(ctx context.Context, path string) (RawContent, error)
}

// ImageOCR transcribes one image file. Split out so tests can stub the
// tesseract binding.
type ImageOCR interface {
	ImageText(path string) (string, error)
}
