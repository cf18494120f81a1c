package pattern

import "github.com/agext/levenshtein"

// MaxLabelEdits is the OCR error budget for fuzzy label search.
const MaxLabelEdits = 2

// FuzzyContains reports whether some substring of text is within maxEdits
// insertions, deletions or substitutions of needle.
func FuzzyContains(text, needle string, maxEdits int) bool {
	tr, nr := []rune(text), []rune(needle)
	if len(nr) == 0 {
		return true
	}
	minLen := max(1, len(nr)-maxEdits)
	if len(tr) < minLen {
		return levenshtein.Distance(text, needle, nil) <= maxEdits
	}
	maxLen := min(len(tr), len(nr)+maxEdits)
	for size := minLen; size <= maxLen; size++ {
		for start := 0; start+size <= len(tr); start++ {
			if levenshtein.Distance(string(tr[start:start+size]), needle, nil) <= maxEdits {
				return true
			}
		}
	}
	return false
}
