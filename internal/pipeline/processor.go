package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tablelift/tablelift/internal/categorize"
	"github.com/tablelift/tablelift/internal/extract"
	"github.com/tablelift/tablelift/internal/llm"
	"github.com/tablelift/tablelift/internal/reconcile"
)

// Processor coordinates the stages for one document: content extraction,
// model transformation, reconciliation, and (optionally) categorization.
type Processor struct {
	Logger      *slog.Logger
	Extractor   *extract.Extractor
	Transformer llm.TableExtractor
	Reconciler  *reconcile.Reconciler
	Categorizer *categorize.Categorizer
}

// Options toggle the optional stages for a run.
type Options struct {
	// Categorize adds the category column after reconciliation. Off by
	// default; it costs an extra model round trip.
	Categorize bool
}

func NewProcessor(logger *slog.Logger, ex *extract.Extractor, tr llm.TableExtractor, rc *reconcile.Reconciler, cat *categorize.Categorizer) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		Logger:      logger,
		Extractor:   ex,
		Transformer: tr,
		Reconciler:  rc,
		Categorizer: cat,
	}
}

// Process runs one document through the pipeline. On extraction or
// transformation failure it returns an EMPTY table with the canonical
// columns alongside the error, so a batch caller can keep going and still
// render something for the failed document. Reconciliation itself never
// fails, and categorization degrades internally.
func (p *Processor) Process(ctx context.Context, path string) (reconcile.Table, error) {
	rid := uuid.New().String()
	start := time.Now()
	p.Logger.Info("pipeline.start", "req_id", rid, "path", path)

	content, err := p.Extractor.Extract(ctx, path)
	if err != nil {
		p.Logger.Error("pipeline.extract.failed", "req_id", rid, "path", path, "err", err)
		return reconcile.EmptyTable(), err
	}
	p.Logger.Info("pipeline.extract.ok",
		"req_id", rid,
		"format", content.Format,
		"text_len", len(content.Text),
		"pages", content.Pages,
	)

	records, _, err := p.Transformer.Transform(ctx, content.Text)
	if err != nil {
		p.Logger.Error("pipeline.transform.failed", "req_id", rid, "path", path, "err", err)
		return reconcile.EmptyTable(), err
	}

	table := p.Reconciler.Reconcile(records)

	p.Logger.Info("pipeline.ok",
		"req_id", rid,
		"rows", len(table.Rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return table, nil
}

// ProcessWithOptions runs Process and then the optional stages.
func (p *Processor) ProcessWithOptions(ctx context.Context, path string, opts Options) (reconcile.Table, error) {
	table, err := p.Process(ctx, path)
	if err != nil {
		return table, err
	}
	if opts.Categorize && p.Categorizer != nil {
		table = p.Categorizer.Categorize(ctx, table)
	}
	return table, nil
}
