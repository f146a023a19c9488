package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tablelift/tablelift/internal/extract"
)

// Extraction-only debug tool: prints the raw content blob a document would
// feed the model, without spending a model call.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "extract <document>")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ex := extract.NewExtractor(extract.Config{}, logger)
	content, err := ex.Extract(ctx, os.Args[1])
	if err != nil {
		logger.Error("extraction failed", "path", os.Args[1], "error", err)
		os.Exit(1)
	}

	logger.Info("extraction OK",
		"format", content.Format,
		"pages", content.Pages,
		"bytes", len(content.Text),
		"duration_ms", content.Duration.Milliseconds(),
	)
	fmt.Println(content.Text)
}
