package llm

import "context"

// ProvisionalRecord is one row of unvalidated model output. Every field is
// optional: the model may or may not include a given key, so the record is
// a tagged optional-field shape and never accessed as a raw map. Amount and
// Date carry parse-or-null semantics — invalid values arrive as nil, not as
// errors.
type ProvisionalRecord struct {
	MainCategory *string  // "HighLevelCategory" / "main_category" / "category"
	Subcategory  *string  // "Subcategory"
	Amount       *float64 // "Amount", free-form text or numeric in the wire form
	Entity       *string  // "Entity", department or team if present
	Period       *string  // "Period", e.g. "March 2025"
	Date         *string  // "Date", normalized to YYYY-MM-DD or nil
	Currency     *string  // "Currency"
	GSTTreatment *string  // "GST_Treatment"
	Description  *string  // "Description", present when reconciling canonical rows

	// Extra keeps non-canonical fields so later enrichment does not force
	// schema churn.
	Extra map[string]any
}

// TableExtractor is the structured-extraction contract: document content in,
// provisional rows out, plus the raw model JSON for logging/audit.
type TableExtractor interface {
	Transform(ctx context.Context, content string) ([]ProvisionalRecord, []byte, error)
}

// RowCategorizer labels a batch of canonical rows against the closed
// vocabulary. Implementations must return exactly one label per input row.
type RowCategorizer interface {
	CategorizeRows(ctx context.Context, rows []CategorizeRow) ([]string, error)
}

// CategorizeRow is the minimal row shape the categorizer needs.
type CategorizeRow struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}
