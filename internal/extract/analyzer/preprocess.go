package analyzer

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/joseph-ayodele/hoken-card-reader/internal/extract/pattern"
	"github.com/joseph-ayodele/hoken-card-reader/internal/ocr"
)

const (
	repeatLowConfidence  = 0.7
	repeatHighConfidence = 0.9
	hyphenGapFactor      = 3.0
)

func reiwaPreprocessor() Preprocessor {
	return Preprocessor{Name: "normalize_reiwa", Run: func(lines []ocr.Line) {
		for i := range lines {
			lines[i].Text = pattern.NormalizeReiwa(lines[i].Text)
		}
	}}
}

func firstYearPreprocessor() Preprocessor {
	return Preprocessor{Name: "reiwa_first_year", Run: func(lines []ocr.Line) {
		for i := range lines {
			lines[i].Text = strings.ReplaceAll(lines[i].Text, "令和年", "令和元年")
		}
	}}
}

// repeatedOnePreprocessor drops the second digit of an "11" on the insurer
// line when one of the pair is read with low confidence and the other with
// high confidence: the OCR engine saw one 1 twice.
func repeatedOnePreprocessor() Preprocessor {
	return Preprocessor{Name: "remove_repeated_one", Run: func(lines []ocr.Line) {
		for i := range lines {
			l := &lines[i]
			if !strings.Contains(l.Text, "保険者番号") || !strings.Contains(l.Text, "11") {
				continue
			}
			confs, ok := l.RuneConfidences()
			if !ok {
				continue
			}
			rs := []rune(l.Text)
			pos := runeIndex(rs, []rune("11"))
			if pos < 0 || pos+1 >= len(confs) {
				continue
			}
			lo, hi := min(confs[pos], confs[pos+1]), max(confs[pos], confs[pos+1])
			if lo < repeatLowConfidence && hi > repeatHighConfidence {
				l.Text = string(rs[:pos+1]) + string(rs[pos+2:])
			}
		}
	}}
}

// hyphenPreprocessor restores a hyphen between two digit tokens on the
// symbol line when the gap between them is much wider than their own
// character pitch.
func hyphenPreprocessor() Preprocessor {
	return Preprocessor{Name: "recover_hyphen", Run: func(lines []ocr.Line) {
		for i := range lines {
			l := &lines[i]
			if !strings.Contains(l.Text, "記号") || l.JoinTokens() != l.Text {
				continue
			}
			rs := []rune(l.Text)
			var cuts []int
			offset := 0
			for j := 0; j+1 < len(l.Tokens); j++ {
				w1, w2 := l.Tokens[j], l.Tokens[j+1]
				offset += w1.RuneLen()
				if !isDigitToken(w1) || !isDigitToken(w2) {
					continue
				}
				g1, ok1 := w1.MeanCharGap()
				g2, ok2 := w2.MeanCharGap()
				if !ok1 || !ok2 {
					continue
				}
				if w2.Left()-w1.Right() > (g1+g2)/2*hyphenGapFactor {
					cuts = append(cuts, offset)
				}
			}
			for k := len(cuts) - 1; k >= 0; k-- {
				c := cuts[k]
				rs = append(rs[:c], append([]rune{'-'}, rs[c:]...)...)
			}
			l.Text = string(rs)
		}
	}}
}

var reNumberLabel = regexp.MustCompile(`番号`)

// branchPreprocessor inserts 枝番 before the final two digits of a 番号
// line when the layout suggests a branch number was merged into it: either
// the last token is exactly two runes, or those two runes sit further from
// the rest of the token than factor times its character pitch.
func branchPreprocessor(factor float64) Preprocessor {
	return Preprocessor{Name: "synthesize_branch", Run: func(lines []ocr.Line) {
		for i := range lines {
			l := &lines[i]
			rs := []rune(l.Text)
			if len(rs) < 4 || !reNumberLabel.MatchString(string(rs[:len(rs)-4])) {
				continue
			}
			if !unicode.IsDigit(rs[len(rs)-1]) || !unicode.IsDigit(rs[len(rs)-2]) || len(l.Tokens) == 0 {
				continue
			}
			last := l.Tokens[len(l.Tokens)-1]
			if branchSplit(l.Tokens, last, factor) {
				l.Text = string(rs[:len(rs)-2]) + "枝番" + string(rs[len(rs)-2:])
			}
		}
	}}
}

func branchSplit(tokens []ocr.Token, last ocr.Token, factor float64) bool {
	if len(tokens) > 1 && last.RuneLen() == 2 {
		return true
	}
	if last.RuneLen() < 4 || len(last.CharX) < 4 {
		return false
	}
	xs := last.CharX
	avg, ok := ocr.MeanGap(xs[:len(xs)-2])
	if !ok || avg <= 0 {
		return false
	}
	return xs[len(xs)-2]-xs[len(xs)-3] > avg*factor
}

var reSelfPayTail = regexp.MustCompile(`自己負担.*\d$`)

// yenPreprocessor appends 円 to a self-pay line that ends in digits so the
// limit amount finder can anchor on the unit.
func yenPreprocessor() Preprocessor {
	return Preprocessor{Name: "append_yen", Run: func(lines []ocr.Line) {
		for i := range lines {
			if reSelfPayTail.MatchString(lines[i].Text) {
				lines[i].Text += "円"
			}
		}
	}}
}

func isDigitToken(t ocr.Token) bool {
	return t.RuneLen() > 1 && pattern.IsDigits(t.Text)
}

func runeIndex(rs, sub []rune) int {
	for i := 0; i+len(sub) <= len(rs); i++ {
		match := true
		for j := range sub {
			if rs[i+j] != sub[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
