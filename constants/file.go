package constants

import "strings"

// Format is the coarse document family an uploaded file belongs to.
// Extraction strategy is dispatched on this, never on content sniffing.
type Format string

const (
	SPREADSHEET Format = "SPREADSHEET"
	CSV         Format = "CSV"
	PDF         Format = "PDF"
	IMAGE       Format = "IMAGE"
)

// extToFormat is the full supported extension set. Anything outside it is
// rejected with UnsupportedFileTypeError before any file read happens.
var extToFormat = map[string]Format{
	"xlsx": SPREADSHEET,
	"xls":  SPREADSHEET,
	"csv":  CSV,
	"pdf":  PDF,
	"jpg":  IMAGE,
	"jpeg": IMAGE,
	"png":  IMAGE,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat resolves a (possibly dotted, mixed-case) extension to its
// Format. The second return is false for unsupported extensions.
func MapExtToFormat(ext string) (Format, bool) {
	f, ok := extToFormat[NormalizeExt(ext)]
	return f, ok
}

// SupportedExtensions returns the allowed extension list, sorted the way it
// is documented (spreadsheets first).
func SupportedExtensions() []string {
	return []string{"xlsx", "xls", "csv", "pdf", "jpg", "jpeg", "png"}
}
