package constants

import "strings"

// AllowedExtensions holds the file extensions accepted as OCR documents.
var AllowedExtensions = map[string]struct{}{
	"json": {},
}

// ListExtensions holds the file extensions accepted for known insurer lists.
var ListExtensions = map[string]struct{}{
	"yaml": {},
	"yml":  {},
	"json": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsDocumentExt reports whether ext (with or without dot) is an OCR document.
func IsDocumentExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
