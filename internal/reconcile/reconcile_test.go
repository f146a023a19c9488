package reconcile

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/tablelift/tablelift/constants"
	"github.com/tablelift/tablelift/internal/llm"
)

func newFixedReconciler() *Reconciler {
	r := NewReconciler(nil)
	r.now = func() time.Time {
		return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	}
	return r
}

func s(v string) *string   { return &v }
func f(v float64) *float64 { return &v }

func TestReconcileTwoRowScenario(t *testing.T) {
	r := newFixedReconciler()
	table := r.Reconcile([]llm.ProvisionalRecord{
		{
			MainCategory: s("Revenue"),
			Subcategory:  s("Sales Revenue"),
			Amount:       f(12400),
			Entity:       s("Retail"),
			Period:       s("March 2025"),
			Currency:     s("NZD"),
		},
		{
			MainCategory: s("Operating Expenses"),
			Subcategory:  s("Rent"),
			Amount:       f(-800),
			Date:         s("2025-03-31"),
		},
	})

	if len(table.Rows) != 2 {
		t.Fatalf("want 2 rows, got %d", len(table.Rows))
	}

	first := table.Rows[0]
	if first.Description != "Retail - Sales Revenue (March 2025)" {
		t.Errorf("Description = %q", first.Description)
	}
	if first.Date != "2025-06-15" {
		t.Errorf("missing date should default to today, got %q", first.Date)
	}
	if first.Source["currency"] != "NZD" || first.Source["entity"] != "Retail" {
		t.Errorf("Source = %v", first.Source)
	}

	second := table.Rows[1]
	if second.Date != "2025-03-31" {
		t.Errorf("Date = %q", second.Date)
	}
	if second.Amount != -800 {
		t.Errorf("Amount = %v", second.Amount)
	}
	if second.Description != "Rent" {
		t.Errorf("Description = %q", second.Description)
	}
}

func TestReconcileDefaults(t *testing.T) {
	r := newFixedReconciler()
	table := r.Reconcile([]llm.ProvisionalRecord{{}})

	row := table.Rows[0]
	if row.Date != "2025-06-15" {
		t.Errorf("Date = %q", row.Date)
	}
	if row.Amount != 0 {
		t.Errorf("Amount = %v", row.Amount)
	}
	if row.MainCategory != constants.DefaultMainCategory {
		t.Errorf("MainCategory = %q", row.MainCategory)
	}
	if row.Subcategory != constants.DefaultSubcategory {
		t.Errorf("Subcategory = %q", row.Subcategory)
	}
	if row.Description != constants.DefaultDescription {
		t.Errorf("Description = %q", row.Description)
	}
	if row.Source != nil {
		t.Errorf("Source should be empty, got %v", row.Source)
	}
}

func TestSynthesizeDescriptionVariants(t *testing.T) {
	tests := []struct {
		name string
		rec  llm.ProvisionalRecord
		want string
	}{
		{
			"entity and period",
			llm.ProvisionalRecord{Subcategory: s("Sales Revenue"), Entity: s("Retail"), Period: s("March 2025")},
			"Retail - Sales Revenue (March 2025)",
		},
		{
			"period only",
			llm.ProvisionalRecord{Subcategory: s("Sales Revenue"), Period: s("March 2025")},
			"Sales Revenue (March 2025)",
		},
		{
			"entity only",
			llm.ProvisionalRecord{Subcategory: s("Sales Revenue"), Entity: s("Retail")},
			"Retail - Sales Revenue",
		},
		{
			"subcategory only",
			llm.ProvisionalRecord{Subcategory: s("Sales Revenue")},
			"Sales Revenue",
		},
		{
			"nothing at all",
			llm.ProvisionalRecord{},
			"Unknown",
		},
		{
			"explicit description wins",
			llm.ProvisionalRecord{Description: s("already written"), Entity: s("Retail"), Period: s("March 2025")},
			"already written",
		},
	}

	r := newFixedReconciler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := r.Reconcile([]llm.ProvisionalRecord{tt.rec})
			if got := table.Rows[0].Description; got != tt.want {
				t.Fatalf("Description = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReconcilePreservesOrder(t *testing.T) {
	r := newFixedReconciler()
	recs := make([]llm.ProvisionalRecord, 5)
	for i := range recs {
		v := float64(i)
		recs[i] = llm.ProvisionalRecord{Amount: &v}
	}
	table := r.Reconcile(recs)
	for i, row := range table.Rows {
		if row.Amount != float64(i) {
			t.Fatalf("row %d has amount %v, order not preserved", i, row.Amount)
		}
	}
}

// Reconciling already-canonical rows must be a no-op: encode the table as a
// model envelope, decode it back through the provisional layer, reconcile
// again, and the JSON must be byte-identical.
func TestReconcileIdempotent(t *testing.T) {
	r := newFixedReconciler()
	first := r.Reconcile([]llm.ProvisionalRecord{
		{
			MainCategory: s("Revenue"),
			Subcategory:  s("Sales Revenue"),
			Amount:       f(12400),
			Entity:       s("Retail"),
			Period:       s("March 2025"),
			Currency:     s("NZD"),
		},
		{
			Subcategory: s("Rent"),
			Amount:      f(-800),
			Date:        s("2025-03-31"),
		},
	})

	rowsJSON, err := json.Marshal(first.Rows)
	if err != nil {
		t.Fatal(err)
	}
	envelope := []byte(`{"table_data": ` + string(rowsJSON) + `}`)

	recs, err := llm.DecodeTableData(envelope)
	if err != nil {
		t.Fatalf("canonical rows failed to decode: %v", err)
	}
	second := r.Reconcile(recs)

	firstJSON, _ := json.Marshal(first)
	secondJSON, _ := json.Marshal(second)
	if !bytes.Equal(firstJSON, secondJSON) {
		t.Fatalf("re-reconcile changed the table:\n first: %s\nsecond: %s", firstJSON, secondJSON)
	}
}

func TestReconcileFromModelEnvelope(t *testing.T) {
	envelope := []byte(`{"table_data": [
		{"HighLevelCategory": "Revenue", "Subcategory": "Sales", "Amount": "1200.00", "Date": "2025-03-01"},
		{"HighLevelCategory": "Expenses", "Subcategory": "Rent", "Amount": "-800", "Date": null}
	]}`)
	recs, err := llm.DecodeTableData(envelope)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	table := newFixedReconciler().Reconcile(recs)
	if len(table.Rows) != 2 {
		t.Fatalf("want 2 rows, got %d", len(table.Rows))
	}

	first := table.Rows[0]
	if first.Date != "2025-03-01" || first.Amount != 1200 ||
		first.MainCategory != "Revenue" || first.Subcategory != "Sales" ||
		first.Description != "Sales" {
		t.Errorf("row 0 = %+v", first)
	}

	second := table.Rows[1]
	if second.Date != "2025-06-15" || second.Amount != -800 ||
		second.MainCategory != "Expenses" || second.Subcategory != "Rent" ||
		second.Description != "Rent" {
		t.Errorf("row 1 = %+v", second)
	}
}

func TestTableColumns(t *testing.T) {
	plain := Table{Rows: []Record{{Date: "2025-01-01"}}}
	if got := plain.Columns(); len(got) != 5 {
		t.Fatalf("plain table columns = %v", got)
	}

	categorized := Table{Rows: []Record{{Category: "Revenue"}}}
	got := categorized.Columns()
	if len(got) != 6 || got[5] != constants.ColCategory {
		t.Fatalf("categorized table columns = %v", got)
	}

	empty := EmptyTable()
	if got := empty.Columns(); len(got) != 5 {
		t.Fatalf("empty table must keep canonical columns, got %v", got)
	}
	if !empty.Empty() {
		t.Fatal("EmptyTable should be empty")
	}
}
