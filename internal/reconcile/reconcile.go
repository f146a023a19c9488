package reconcile

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tablelift/tablelift/constants"
	"github.com/tablelift/tablelift/internal/llm"
)

// Reconciler coerces provisional model rows into the canonical schema.
// Reconciliation is total: it never fails, it only substitutes defaults.
type Reconciler struct {
	log *slog.Logger

	// now is the clock used for the missing-date default.
	now func() time.Time
}

func NewReconciler(logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{log: logger, now: time.Now}
}

// Reconcile maps each provisional record onto the canonical columns,
// preserving input order. Missing or unparseable values get deterministic
// defaults: today's date, amount zero, Uncategorized / Unknown labels.
// Re-reconciling already-canonical rows is a no-op.
func (r *Reconciler) Reconcile(records []llm.ProvisionalRecord) Table {
	today := r.now().UTC().Format(constants.DateLayout)

	rows := make([]Record, 0, len(records))
	defaulted := 0
	for _, rec := range records {
		row := Record{
			Date:         today,
			Amount:       0,
			MainCategory: constants.DefaultMainCategory,
			Subcategory:  constants.DefaultSubcategory,
		}

		if rec.Date != nil {
			row.Date = *rec.Date
		} else {
			defaulted++
		}
		if rec.Amount != nil {
			row.Amount = *rec.Amount
		}
		if rec.MainCategory != nil {
			row.MainCategory = *rec.MainCategory
		}
		if rec.Subcategory != nil {
			row.Subcategory = *rec.Subcategory
		}
		row.Description = synthesizeDescription(rec, row.Subcategory)
		row.Source = sourcePayload(rec)

		rows = append(rows, row)
	}

	if defaulted > 0 {
		r.log.Warn("reconcile.date_defaulted", "rows", defaulted, "date", today)
	}
	r.log.Info("reconcile.ok", "rows", len(rows))
	return Table{Rows: rows}
}

// synthesizeDescription builds the human-readable line for a row. An
// explicit description from the model wins; otherwise it is composed from
// entity, subcategory and period.
func synthesizeDescription(rec llm.ProvisionalRecord, subcategory string) string {
	if rec.Description != nil {
		return *rec.Description
	}

	entity := ""
	if rec.Entity != nil {
		entity = *rec.Entity
	}
	period := ""
	if rec.Period != nil {
		period = *rec.Period
	}

	switch {
	case entity != "" && period != "":
		return fmt.Sprintf("%s - %s (%s)", entity, subcategory, period)
	case period != "":
		return fmt.Sprintf("%s (%s)", subcategory, period)
	case entity != "":
		return fmt.Sprintf("%s - %s", entity, subcategory)
	default:
		return subcategory
	}
}

// sourcePayload collects the auxiliary fields that have no canonical column
// so they survive export and audit. Nil when there is nothing to keep.
func sourcePayload(rec llm.ProvisionalRecord) map[string]any {
	src := make(map[string]any)
	if rec.Entity != nil {
		src["entity"] = *rec.Entity
	}
	if rec.Period != nil {
		src["period"] = *rec.Period
	}
	if rec.Currency != nil {
		src["currency"] = *rec.Currency
	}
	if rec.GSTTreatment != nil {
		src["gst_treatment"] = *rec.GSTTreatment
	}
	for k, v := range rec.Extra {
		src[k] = v
	}
	if len(src) == 0 {
		return nil
	}
	return src
}
