package reconcile

import (
	"github.com/tablelift/tablelift/constants"
)

// Record is one canonical row. The five required fields are always
// populated; Category is filled by the categorizer as a pass-through column
// and Source keeps auxiliary model fields that have no canonical home.
type Record struct {
	Date         string         `json:"date"`
	Description  string         `json:"description"`
	Amount       float64        `json:"amount"`
	MainCategory string         `json:"main_category"`
	Subcategory  string         `json:"subcategory"`
	Category     string         `json:"category,omitempty"`
	Source       map[string]any `json:"source,omitempty"`
}

// Table is an ordered set of canonical records. Row order always follows
// the order rows were extracted in.
type Table struct {
	Rows []Record `json:"rows"`
}

// EmptyTable is the degraded result for a failed document: zero rows but
// the full canonical column set, so downstream consumers never special-case
// absence.
func EmptyTable() Table {
	return Table{Rows: []Record{}}
}

// Columns returns the column set in presentation order: the required five,
// then category when any row carries one.
func (t Table) Columns() []string {
	cols := constants.RequiredColumns()
	for _, r := range t.Rows {
		if r.Category != "" {
			return append(cols, constants.ColCategory)
		}
	}
	return cols
}

// Empty reports whether the table has no rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}
