package finder

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/hoken-card-reader/constants"
	"github.com/joseph-ayodele/hoken-card-reader/internal/extract/pattern"
	"github.com/joseph-ayodele/hoken-card-reader/internal/ocr"
)

// findSymbolSubscriber stores symbol and number together or not at all.
func findSymbolSubscriber(lines []ocr.Line) Result {
	for _, l := range lines {
		if m, ok := pattern.MatchSymbolSubscriber(l.Text); ok {
			return Result{
				constants.SymbolCode:       m.Symbol,
				constants.SubscriberNumber: m.Number,
			}
		}
	}
	return Result{}
}

var (
	reCopayLabel = regexp.MustCompile(`(?:負担区分|負担割合|一部負担金(?:の割合)?|負担)[\s:：]*([^\s:：]+)`)
	reCopayRatio = regexp.MustCompile(`[1-3]割`)
)

// findCopayClass reads the value after a copay label. A line mentioning
// 負担 without a readable label still yields a bare ratio such as "2割".
func findCopayClass(lines []ocr.Line) Result {
	for _, l := range lines {
		if !strings.Contains(l.Text, "負担") || containsAny(l.Text, []string{"負担者番号", "自己負担"}) {
			continue
		}
		if m := reCopayLabel.FindStringSubmatch(l.Text); m != nil {
			return Result{constants.CopayClass: m[1]}
		}
		if r := reCopayRatio.FindString(l.Text); r != "" {
			return Result{constants.CopayClass: r}
		}
	}
	return Result{}
}

var reLimitAmount = regexp.MustCompile(`自己負担[^\d]*?([\d,]+)\s*円`)

// findLimitAmount reads the self-pay ceiling; thousands separators are
// dropped.
func findLimitAmount(lines []ocr.Line) Result {
	for _, l := range lines {
		if m := reLimitAmount.FindStringSubmatch(l.Text); m != nil {
			if v := strings.ReplaceAll(m[1], ",", ""); v != "" {
				return Result{constants.LimitAmount: v}
			}
		}
	}
	return Result{}
}
