package constants

import "strings"

// Category is one label from the closed categorization vocabulary. The
// model is instructed to answer with these exact strings; anything else is
// folded back through Canonicalize.
type Category string

const (
	Revenue              Category = "Revenue"
	ExpensesOffice       Category = "Expenses: Office"
	ExpensesTravel       Category = "Expenses: Travel"
	ExpensesMarketing    Category = "Expenses: Marketing"
	ExpensesProfessional Category = "Expenses: Professional Services"
	ExpensesTechnology   Category = "Expenses: Technology"
	ExpensesPayroll      Category = "Expenses: Payroll"
	ExpensesOther        Category = "Expenses: Other"
	AssetPurchase        Category = "Asset Purchase"
	LiabilityPayment     Category = "Liability Payment"
	Transfer             Category = "Transfer"
	Uncategorized        Category = "Uncategorized"
)

var allCategories = []Category{
	Revenue,
	ExpensesOffice,
	ExpensesTravel,
	ExpensesMarketing,
	ExpensesProfessional,
	ExpensesTechnology,
	ExpensesPayroll,
	ExpensesOther,
	AssetPurchase,
	LiabilityPayment,
	Transfer,
	Uncategorized,
}

// CategoryVocabulary returns the closed label set as plain strings, in the
// order it is presented to the model.
func CategoryVocabulary() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// Canonicalize maps a free-form model label onto the vocabulary. The second
// return is false when the label had no match and Uncategorized was used.
func Canonicalize(input string) (Category, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return Uncategorized, false
	}

	// synonyms the model drifts toward despite the enum instruction
	synonyms := map[string]Category{
		"income":            Revenue,
		"sales":             Revenue,
		"office":            ExpensesOffice,
		"rent":              ExpensesOffice,
		"travel":            ExpensesTravel,
		"marketing":         ExpensesMarketing,
		"advertising":       ExpensesMarketing,
		"professional fees": ExpensesProfessional,
		"software":          ExpensesTechnology,
		"technology":        ExpensesTechnology,
		"payroll":           ExpensesPayroll,
		"salaries":          ExpensesPayroll,
		"wages":             ExpensesPayroll,
		"asset":             AssetPurchase,
		"equipment":         AssetPurchase,
		"loan repayment":    LiabilityPayment,
		"other":             ExpensesOther,
	}
	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}

	return Uncategorized, false
}
