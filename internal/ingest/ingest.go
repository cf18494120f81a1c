// Package ingest discovers OCR documents on disk: a one-shot directory scan
// for batch runs and a filesystem watcher for drop-folder processing.
package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/hoken-card-reader/constants"
)

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Skipped uint32
	Failed  uint32
}

// AllowedExt checks if a file extension is an OCR document extension.
func AllowedExt(ext string) bool {
	return constants.IsDocumentExt(ext)
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}
