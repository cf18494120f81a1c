package finder

import (
	"slices"
	"strings"

	"github.com/joseph-ayodele/hoken-card-reader/constants"
	"github.com/joseph-ayodele/hoken-card-reader/internal/extract/pattern"
	"github.com/joseph-ayodele/hoken-card-reader/internal/ocr"
)

// dateKeywords is checked in order; the first hit labels the line.
var dateKeywords = []struct {
	words []string
	tag   constants.FieldTag
}{
	{[]string{"生年月日", "生年"}, constants.Birthday},
	{[]string{"交付", "発行"}, constants.IssueDate},
	{[]string{"有効期限", "まで", "迄"}, constants.ValidityEnd},
	{[]string{"から", "開始", "有効開始"}, constants.ValidityStart},
}

// skipDateKeywords label dates that belong to a later pass.
var skipDateKeywords = []string{"資格取得", "認定"}

func dateKeyword(text string) (constants.FieldTag, bool) {
	for _, k := range dateKeywords {
		for _, w := range k.words {
			if strings.Contains(text, w) {
				return k.tag, true
			}
		}
	}
	return "", false
}

// findDates assigns dates line by line. A keyword on a line without a date
// labels the first date of the next line. Unlabelled dates go to Birthday
// until it is taken. A from/until line with two dates fills both ends.
func findDates(lines []ocr.Line, tags []constants.FieldTag) Result {
	out := Result{}
	set := func(tag constants.FieldTag, d pattern.DateValue) {
		if !slices.Contains(tags, tag) || out.Has(tag) {
			return
		}
		out[tag] = d.String()
	}

	var pending constants.FieldTag
	for _, l := range lines {
		text := l.Text
		carried := pending
		pending = ""

		if containsAny(text, skipDateKeywords) {
			continue
		}
		tag, labelled := dateKeyword(text)
		ds := pattern.ParseDates(text)
		if len(ds) == 0 {
			if labelled {
				pending = tag
			}
			continue
		}
		if len(ds) >= 2 && strings.Contains(text, "から") && containsAny(text, []string{"まで", "迄"}) {
			set(constants.ValidityStart, ds[0])
			set(constants.ValidityEnd, ds[1])
			continue
		}
		switch {
		case labelled:
			set(tag, ds[0])
		case carried != "":
			set(carried, ds[0])
		default:
			set(constants.Birthday, ds[0])
		}
	}
	return out
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
