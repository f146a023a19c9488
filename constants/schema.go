package constants

// Canonical column names. Every table the pipeline hands to a collaborator
// carries exactly these five, in this order, plus optional pass-through
// columns after them.
const (
	ColDate         = "date"
	ColDescription  = "description"
	ColAmount       = "amount"
	ColMainCategory = "main_category"
	ColSubcategory  = "subcategory"

	// ColCategory is the single-level label added by the categorizer; it is
	// a pass-through column, not part of the required five.
	ColCategory = "category"
)

// RequiredColumns returns the canonical column set in presentation order.
func RequiredColumns() []string {
	return []string{ColDate, ColDescription, ColAmount, ColMainCategory, ColSubcategory}
}

// Sentinel defaults substituted by the reconciler for unresolved values.
const (
	DefaultMainCategory = "Uncategorized"
	DefaultSubcategory  = "Unknown"
	DefaultDescription  = "Unknown"
)

// DateLayout is the ISO-8601 date form used everywhere a date is rendered.
const DateLayout = "2006-01-02"
