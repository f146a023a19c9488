package llm

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/tablelift/tablelift/constants"
	"github.com/tablelift/tablelift/internal/common"
)

// CleanModelJSON strips Markdown code fences and surrounding prose the model
// sometimes emits despite the strict-JSON instruction, keeping only the
// outermost JSON object.
func CleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	// If junk remains around the object, keep first '{' to last '}'.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}

// DecodeTableData parses a cleaned model response into provisional records.
// The envelope must be a JSON object whose table_data key holds an array of
// objects; anything else is ErrMalformedModelOutput. An empty array is valid
// (zero extracted rows). Field-level problems never raise — they coerce to
// nil per parse-or-null.
func DecodeTableData(cleaned []byte) ([]ProvisionalRecord, error) {
	var envelope map[string]any
	if err := json.Unmarshal(cleaned, &envelope); err != nil {
		return nil, common.WrapMalformedOutput("response is not valid JSON", err)
	}

	rowsAny, ok := envelope[TableDataKey]
	if !ok {
		return nil, common.WrapMalformedOutput("missing top-level "+strconv.Quote(TableDataKey)+" key", nil)
	}
	rowsList, ok := rowsAny.([]any)
	if !ok {
		return nil, common.WrapMalformedOutput(strconv.Quote(TableDataKey)+" is not an array", nil)
	}

	if err := ValidateJSONAgainstSchema(BuildTableResponseSchema(), cleaned); err != nil {
		return nil, common.WrapMalformedOutput("envelope rejected by schema", err)
	}

	records := make([]ProvisionalRecord, 0, len(rowsList))
	for _, item := range rowsList {
		obj, ok := item.(map[string]any)
		if !ok {
			// schema validation already rejects non-object rows; defensive
			continue
		}
		records = append(records, decodeRecord(obj))
	}
	return records, nil
}

// normalizeKey folds field-name variants the model produces: case,
// underscores and spaces are insignificant.
func normalizeKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	k = strings.ReplaceAll(k, "_", "")
	k = strings.ReplaceAll(k, " ", "")
	return k
}

func decodeRecord(obj map[string]any) ProvisionalRecord {
	var rec ProvisionalRecord

	// "category" is resolved after the loop: map iteration order must not
	// decide whether it acts as a main-category synonym or stays auxiliary.
	var categoryKey string
	var categoryVal any

	for key, val := range obj {
		switch normalizeKey(key) {
		case "highlevelcategory", "maincategory":
			rec.MainCategory = parseString(val)
		case "category":
			categoryKey, categoryVal = key, val
		case "subcategory":
			rec.Subcategory = parseString(val)
		case "amount":
			rec.Amount = parseAmount(val)
		case "entity":
			rec.Entity = parseString(val)
		case "period":
			rec.Period = parseString(val)
		case "date":
			rec.Date = parseDate(val)
		case "currency":
			rec.Currency = parseString(val)
		case "gsttreatment":
			rec.GSTTreatment = parseString(val)
		case "description":
			rec.Description = parseString(val)
		case "source":
			absorbSource(&rec, val)
		default:
			setExtra(&rec, key, val)
		}
	}

	if categoryKey != "" {
		// single-level synonym; never overrides an explicit main category
		if rec.MainCategory == nil {
			rec.MainCategory = parseString(categoryVal)
		} else {
			setExtra(&rec, categoryKey, categoryVal)
		}
	}
	return rec
}

// absorbSource unpacks an already-reconciled auxiliary payload back into the
// record, so canonical rows decode to the same shape fresh model rows do.
func absorbSource(rec *ProvisionalRecord, val any) {
	src, ok := val.(map[string]any)
	if !ok {
		setExtra(rec, "source", val)
		return
	}
	for k, v := range src {
		switch normalizeKey(k) {
		case "entity":
			rec.Entity = parseString(v)
		case "period":
			rec.Period = parseString(v)
		case "currency":
			rec.Currency = parseString(v)
		case "gsttreatment":
			rec.GSTTreatment = parseString(v)
		default:
			setExtra(rec, k, v)
		}
	}
}

func setExtra(rec *ProvisionalRecord, key string, val any) {
	if rec.Extra == nil {
		rec.Extra = make(map[string]any)
	}
	rec.Extra[key] = val
}

func parseString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return nil
	}
	return &s
}

var amountCleaner = strings.NewReplacer("$", "", "£", "", "€", "", ",", "", " ", "")

// parseAmount accepts numeric wire values and free-form strings like
// "$1,234.56" or "-800". Anything unparseable becomes nil.
func parseAmount(v any) *float64 {
	switch t := v.(type) {
	case float64:
		f := t
		return &f
	case int:
		f := float64(t)
		return &f
	case string:
		s := amountCleaner.Replace(strings.TrimSpace(t))
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// dateLayouts are tried in order; the first hit wins. The output is always
// re-rendered as ISO-8601.
var dateLayouts = []string{
	constants.DateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2006/01/02",
	"2 January 2006",
	"Jan 2, 2006",
}

func parseDate(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			iso := t.Format(constants.DateLayout)
			return &iso
		}
	}
	return nil
}
