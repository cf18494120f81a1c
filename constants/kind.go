package constants

import "strings"

// DocKind is the card type an OCR document was scanned from.
type DocKind string

const (
	KindMain    DocKind = "主保険"   // primary insurer card
	KindPublic  DocKind = "公費"    // public-subsidy card
	KindElderly DocKind = "高齢受給者" // elderly/senior co-pay card
	KindLimit   DocKind = "限度額認証" // co-pay limit certificate, read like an elderly card
)

var allKinds = []DocKind{KindMain, KindPublic, KindElderly, KindLimit}

// kind aliases accepted from callers that cannot send Japanese text
var kindSynonyms = map[string]DocKind{
	"main":    KindMain,
	"primary": KindMain,
	"public":  KindPublic,
	"kouhi":   KindPublic,
	"elderly": KindElderly,
	"kourei":  KindElderly,
	"limit":   KindLimit,
}

// ParseKind canonicalizes a document kind.
func ParseKind(input string) (DocKind, bool) {
	s := strings.TrimSpace(input)
	for _, k := range allKinds {
		if s == string(k) {
			return k, true
		}
	}
	if k, ok := kindSynonyms[strings.ToLower(s)]; ok {
		return k, true
	}
	return "", false
}

// KindStrings lists the canonical kinds, e.g. for schema enums.
func KindStrings() []string {
	out := make([]string, len(allKinds))
	for i, k := range allKinds {
		out[i] = string(k)
	}
	return out
}
