package pattern

import "strings"

// prefixWindow bounds how much of a long canonical number has to appear in
// the text, so trailing OCR noise does not hide an otherwise clean match.
const prefixWindow = 7

// minTolerantNeedle keeps the "no 1" search from degenerating into a match
// on almost any text once every 1 has been removed.
const minTolerantNeedle = 4

// KnownList holds canonical insurer numbers. Standard is searched first;
// Tolerant is the list used by the fallback that assumes the OCR engine
// inserted a stray '1'.
type KnownList struct {
	Standard []string
	Tolerant []string
}

// Match searches the concatenated document text, after deleting the given
// confusable characters, for the prefix window of each standard entry. The
// first entry found wins.
func (k *KnownList) Match(text string, deleteChars []string) (string, bool) {
	if k == nil {
		return "", false
	}
	haystack := deleteAll(text, deleteChars)
	for _, p := range k.Standard {
		if needle := window(p); needle != "" && strings.Contains(haystack, needle) {
			return p, true
		}
	}
	return "", false
}

// MatchWithoutOnes is the fallback search: every '1' is removed from both
// the text and the tolerant entries before comparing.
func (k *KnownList) MatchWithoutOnes(text string, deleteChars []string) (string, bool) {
	if k == nil {
		return "", false
	}
	haystack := deleteAll(text, append([]string{"1"}, deleteChars...))
	for _, p := range k.Tolerant {
		needle := strings.ReplaceAll(window(p), "1", "")
		if len(needle) < minTolerantNeedle {
			continue
		}
		if strings.Contains(haystack, needle) {
			return p, true
		}
	}
	return "", false
}

func window(p string) string {
	if len(p) > prefixWindow {
		return p[:prefixWindow]
	}
	return p
}

func deleteAll(s string, chars []string) string {
	for _, c := range chars {
		s = strings.ReplaceAll(s, c, "")
	}
	return s
}
