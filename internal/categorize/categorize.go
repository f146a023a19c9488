package categorize

import (
	"context"
	"log/slog"
	"time"

	"github.com/tablelift/tablelift/constants"
	"github.com/tablelift/tablelift/internal/llm"
	"github.com/tablelift/tablelift/internal/reconcile"
)

// Categorizer labels canonical rows against the closed vocabulary.
// Categorization is strictly additive and never fails the pipeline: when the
// model is unavailable, unreachable, or answers out of contract, every row
// is labeled Uncategorized and processing continues.
type Categorizer struct {
	rows llm.RowCategorizer
	log  *slog.Logger
}

// configured is implemented by clients that can tell whether a credential is
// available, letting the categorizer skip the network entirely.
type configured interface {
	Configured() bool
}

func NewCategorizer(rows llm.RowCategorizer, logger *slog.Logger) *Categorizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Categorizer{rows: rows, log: logger}
}

// Categorize fills the Category column on every row in place and returns the
// table. Labels outside the vocabulary are folded back through Canonicalize;
// a response with the wrong number of labels is discarded wholesale rather
// than misaligned.
func (c *Categorizer) Categorize(ctx context.Context, table reconcile.Table) reconcile.Table {
	if table.Empty() {
		return table
	}

	if cc, ok := c.rows.(configured); ok && !cc.Configured() {
		c.log.Warn("categorize.skipped_no_credential", "rows", len(table.Rows))
		return fillDefault(table)
	}

	start := time.Now()
	batch := make([]llm.CategorizeRow, len(table.Rows))
	for i, row := range table.Rows {
		batch[i] = llm.CategorizeRow{
			Date:        row.Date,
			Description: row.Description,
			Amount:      row.Amount,
		}
	}

	labels, err := c.rows.CategorizeRows(ctx, batch)
	if err != nil {
		c.log.Warn("categorize.failed", "error", err, "rows", len(batch),
			"elapsed_ms", time.Since(start).Milliseconds())
		return fillDefault(table)
	}
	if len(labels) != len(table.Rows) {
		c.log.Warn("categorize.length_mismatch",
			"want", len(table.Rows), "got", len(labels))
		return fillDefault(table)
	}

	folded := 0
	for i, label := range labels {
		cat, ok := constants.Canonicalize(label)
		if !ok {
			folded++
		}
		table.Rows[i].Category = string(cat)
	}
	if folded > 0 {
		c.log.Warn("categorize.labels_folded", "count", folded)
	}
	c.log.Info("categorize.ok", "rows", len(table.Rows),
		"elapsed_ms", time.Since(start).Milliseconds())
	return table
}

func fillDefault(table reconcile.Table) reconcile.Table {
	for i := range table.Rows {
		table.Rows[i].Category = string(constants.Uncategorized)
	}
	return table
}
