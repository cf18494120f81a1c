package ocr

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/hoken-card-reader/constants"
	"github.com/joseph-ayodele/hoken-card-reader/internal/common"
)

// DecodeDocument validates and decodes an OCR document. fallbackKind is used
// when the document does not name its kind; an unknown kind is an error.
func DecodeDocument(data []byte, fallbackKind constants.DocKind) (Document, error) {
	if err := ValidateJSONAgainstSchema(BuildDocumentJSONSchema(), data); err != nil {
		return Document{}, common.NewAppError("INVALID_DOCUMENT", "ocr document rejected", fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, common.NewAppError("INVALID_DOCUMENT", "decode ocr document", fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
	}
	raw := string(doc.Kind)
	if raw == "" {
		raw = string(fallbackKind)
	}
	kind, ok := constants.ParseKind(raw)
	if !ok {
		return Document{}, common.NewAppError("INVALID_DOCUMENT", fmt.Sprintf("unknown document kind %q", raw), common.ErrUnsupportedKind)
	}
	doc.Kind = kind
	return doc, nil
}

// LoadDocument reads and decodes an OCR document from disk.
func LoadDocument(path string, fallbackKind constants.DocKind) (Document, error) {
	if !constants.IsDocumentExt(filepath.Ext(path)) {
		return Document{}, fmt.Errorf("unsupported extension: %q", filepath.Ext(path))
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read document: %w", err)
	}
	return DecodeDocument(b, fallbackKind)
}
