package ocr

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

var (
	reCRLF = regexp.MustCompile(`[\r\n]+`)
	reTabs = regexp.MustCompile(`\t+`)
)

// FoldWidth maps full-width ASCII (digits, hyphens, parentheses) to ASCII
// and half-width katakana to full-width. The mapping is one rune to one
// rune, so per-rune token geometry stays aligned.
func FoldWidth(s string) string {
	if s == "" {
		return s
	}
	return width.Fold.String(s)
}

// Normalize folds widths and replaces stray control whitespace with a
// single space. Line texts never contain line breaks after this.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = FoldWidth(s)
	s = reCRLF.ReplaceAllString(s, " ")
	s = reTabs.ReplaceAllString(s, " ")
	return strings.TrimRight(s, " ")
}

// NormalizeLines returns normalized copies of lines; token texts are folded
// too so they keep adding up to the line text.
func NormalizeLines(lines []Line) []Line {
	out := CloneLines(lines)
	for i := range out {
		out[i].Text = Normalize(out[i].Text)
		for j := range out[i].Tokens {
			out[i].Tokens[j].Text = FoldWidth(out[i].Tokens[j].Text)
		}
	}
	return out
}
