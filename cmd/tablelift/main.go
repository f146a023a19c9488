package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tablelift/tablelift/internal/categorize"
	"github.com/tablelift/tablelift/internal/common"
	"github.com/tablelift/tablelift/internal/export"
	"github.com/tablelift/tablelift/internal/extract"
	"github.com/tablelift/tablelift/internal/llm/openai"
	"github.com/tablelift/tablelift/internal/pipeline"
	"github.com/tablelift/tablelift/internal/reconcile"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var (
		outPath        = flag.String("o", "", "output .xlsx path (default: <input>.xlsx)")
		withCategories = flag.Bool("categorize", false, "add the category column (extra model call)")
		timeout        = flag.Duration("timeout", 2*time.Minute, "overall processing timeout")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "tablelift [-o out.xlsx] [-categorize] <document>")
		os.Exit(2)
	}
	input := flag.Arg(0)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("config invalid", "error", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	proc := buildProcessor(cfg, logger)

	table, err := proc.ProcessWithOptions(ctx, input, pipeline.Options{Categorize: *withCategories})
	if err != nil {
		// the table is empty but well-formed; still export it so the run
		// leaves an artifact behind
		logger.Error("processing failed", "path", input, "error", err)
	}

	svc := export.NewService(cfg.Export.SheetName, logger)
	data, xerr := svc.ExportXLSX(table)
	if xerr != nil {
		logger.Error("export failed", "error", xerr)
		os.Exit(1)
	}

	dst := *outPath
	if dst == "" {
		dst = strings.TrimSuffix(input, filepath.Ext(input)) + ".xlsx"
	}
	if werr := os.WriteFile(dst, data, 0o644); werr != nil {
		logger.Error("write output", "path", dst, "error", werr)
		os.Exit(1)
	}

	logger.Info("done", "input", input, "output", dst, "rows", len(table.Rows))
	if err != nil {
		os.Exit(1)
	}
}

func buildProcessor(cfg *common.Config, logger *slog.Logger) *pipeline.Processor {
	client := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	ex := extract.NewExtractor(extract.Config{}, logger)
	rc := reconcile.NewReconciler(logger)
	cat := categorize.NewCategorizer(client, logger)
	return pipeline.NewProcessor(logger, ex, client, rc, cat)
}
