package llm

import (
	"strings"
)

// MaxPromptContentChars bounds how much document text is embedded in one
// extraction request. Content beyond it is cut — extraction is best-effort
// on very large documents and callers must accept the loss.
const MaxPromptContentChars = 8000

// TableDataKey is the designated top-level array key the model must answer
// with.
const TableDataKey = "table_data"

// BuildExtractionSystemPrompt composes the single unified instruction that
// both classifies the document genre and extracts rows in one call. The
// model decides whether it is looking at a transaction list, a profit and
// loss statement, a balance sheet or something else; callers never branch
// on a separately detected document type.
func BuildExtractionSystemPrompt() string {
	parts := []string{
		"You are an expert financial data extraction and consolidation assistant.",
		"The uploaded content may be a transaction list, a Profit and Loss Statement, a Balance Sheet, a Cashflow Statement, or another financial document; determine which yourself and extract accordingly.",
		"Consolidate all available financial data into a single structured JSON table with these fields per row:",
		"- HighLevelCategory (Revenue, Cost of Goods Sold, Operating Expenses, Assets, Liabilities, Equity, Cashflow, GST, Other)",
		"- Subcategory (specific line-item name, e.g. Sales Revenue, Donations, Accounts Payable)",
		"- Amount (numeric, no currency signs, no thousands separators)",
		"- Entity (department or team name if available; otherwise null)",
		"- Period (e.g. 'March 2025', 'FY2024 Q1') if available; otherwise null",
		"- Date (specific transaction date as YYYY-MM-DD if available, otherwise null)",
		"- GST_Treatment (Standard, Zero-Rated, Exempt, or Unknown)",
		"- Currency (3-letter ISO 4217 code)",
		"Consolidate multiple departments, time periods, and sheets when present.",
		"If a value is missing, set the field to null.",
		"Return ONLY strict JSON. No explanations, no commentary, no Markdown fences.",
		`Return exactly one JSON object of the form {"table_data": [ ... rows ... ]}.`,
		"Worked example: a P&L line 'Sales Revenue  12,400.00  (Retail, Mar 2025)' becomes " +
			`{"HighLevelCategory":"Revenue","Subcategory":"Sales Revenue","Amount":12400.00,` +
			`"Entity":"Retail","Period":"March 2025","Date":null,"GST_Treatment":"Standard","Currency":"NZD"}.`,
	}
	return strings.Join(parts, "\n")
}

// BuildExtractionUserPrompt embeds the (truncated) document content.
func BuildExtractionUserPrompt(content string) string {
	truncated := false
	if len(content) > MaxPromptContentChars {
		content = content[:MaxPromptContentChars]
		truncated = true
	}

	var b strings.Builder
	b.WriteString("Extract and structure the financial data from the following document content.\n\n")
	b.WriteString("Document content:\n")
	b.WriteString(content)
	if truncated {
		b.WriteString("\n…(content truncated)")
	}
	return b.String()
}

// BuildCategorizeSystemPrompt is the fixed instruction for the batch
// categorization call.
func BuildCategorizeSystemPrompt() string {
	return "You are a financial categorization assistant. Return ONLY valid JSON."
}

// BuildCategorizeUserPrompt embeds the closed vocabulary and the serialized
// row batch, and pins the positional response contract: one label per row,
// same order.
func BuildCategorizeUserPrompt(vocabulary []string, rowsJSON string) string {
	var b strings.Builder
	b.WriteString("Categorize each of the following financial transactions. ")
	b.WriteString("For each transaction, assign exactly ONE of the following categories:\n")
	for _, v := range vocabulary {
		b.WriteString("- ")
		b.WriteString(v)
		b.WriteString("\n")
	}
	b.WriteString("\nTransactions (JSON array):\n")
	b.WriteString(rowsJSON)
	b.WriteString("\n\nReturn ONLY a JSON object of the form {\"categories\": [...]} where the array ")
	b.WriteString("contains one category string per transaction, in the same order as the input.")
	return b.String()
}
