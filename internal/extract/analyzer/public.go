package analyzer

import (
	"regexp"
	"sort"
	"strings"

	"github.com/joseph-ayodele/hoken-card-reader/constants"
	"github.com/joseph-ayodele/hoken-card-reader/internal/extract/finder"
	"github.com/joseph-ayodele/hoken-card-reader/internal/extract/pattern"
	"github.com/joseph-ayodele/hoken-card-reader/internal/ocr"
)

// NewPublic returns the analyzer for public-subsidy (公費) cards.
func NewPublic(opts ...Option) *Base {
	o := buildOptions(opts)
	return &Base{
		kind: constants.KindPublic,
		entries: []Entry{
			{Tags: []constants.FieldTag{constants.InsurerNumber}, Finder: finder.New(finder.Wide, constants.InsurerNumber)},
			{Tags: []constants.FieldTag{constants.SubscriberNumber}, Finder: finder.New(finder.Simple, constants.SubscriberNumber)},
			{Tags: dateTags, Finder: finder.New(finder.Dates, dateTags...)},
			{Tags: []constants.FieldTag{constants.LimitAmount}, Finder: finder.New(finder.LimitAmount)},
			{Tags: []constants.FieldTag{constants.CopayClass}, Finder: finder.New(finder.CopayClass)},
		},
		preprocess: []Preprocessor{
			yenPreprocessor(),
		},
		passes: []Pass{
			{Name: "numeric_pair", Run: numericPair},
			{Name: "symbol_fallback", Run: symbolFallback},
			{Name: "multi_date", Run: multiDate},
			{Name: "copay_ratio", Run: dropCopayRatio},
			symbolNonePass(),
			{Name: "bare_number", Run: bareNumber},
			knownListPass(o.known, publicListDeletes),
			knownListNoOnePass(o.known, publicNoOneDeletes),
			dualDatePass(),
			numericSubscriberPass(),
			{Name: "validity_label", Run: validityLabel},
		},
		logger: o.logger,
	}
}

// numericPair handles cards where the insurer and recipient labels share a
// line and both numbers were read as one digit run on the next line: the
// first eight digits are the insurer number.
func numericPair(res Result, lines []ocr.Line) {
	if res.Has(constants.InsurerNumber) && res.Has(constants.SubscriberNumber) {
		return
	}
	for i := 0; i < min(5, len(lines)) && i+1 < len(lines); i++ {
		if !pattern.MatchInsurerLabel(lines[i].Text) || !pattern.MatchPublicRecipient(lines[i].Text) {
			continue
		}
		next := strings.TrimSpace(lines[i+1].Text)
		if !pattern.IsDigits(next) || len(next) <= 8 {
			continue
		}
		if !res.Has(constants.InsurerNumber) {
			res[constants.InsurerNumber] = next[:8]
		}
		if !res.Has(constants.SubscriberNumber) {
			res[constants.SubscriberNumber] = next[8:]
		}
		return
	}
}

var reSymbol = regexp.MustCompile(`記号[\s:：]*([^\s:：]+)`)

// symbolFallback takes the last 記号 value printed on the card.
func symbolFallback(res Result, lines []ocr.Line) {
	if res.Has(constants.SymbolCode) {
		return
	}
	for _, l := range lines {
		if m := reSymbol.FindStringSubmatch(l.Text); m != nil {
			res[constants.SymbolCode] = m[1]
		}
	}
}

// Category keywords for per-category validity ranges, longest first so
// 入院外 is not read as 入院.
var dateCategories = []string{"入院外", "入院", "外来", "通院", "調剤", "無", "1割"}

type datedLine struct {
	idx  int
	date pattern.DateValue
}

// multiDate handles cards listing several validity ranges, one per care
// category. It only acts when at least two from-dates and two until-dates
// exist. Each from/until pair takes the categories of the nearest line
// within two lines of both that still has unused categories. The result
// overrides the single range the finders found.
func multiDate(res Result, lines []ocr.Line) {
	var froms, untils []datedLine
	for i, l := range lines {
		rs := []rune(l.Text)
		hasFrom := strings.Contains(l.Text, "から") || (len(rs) > 2 && rs[len(rs)-2] == 'か')
		hasUntil := strings.Contains(l.Text, "迄") || strings.Contains(l.Text, "まで")
		if !hasFrom && !hasUntil {
			continue
		}
		ds := pattern.ParseDates(l.Text)
		switch {
		case hasFrom && hasUntil && len(ds) == 2:
			froms = append(froms, datedLine{i, ds[0]})
			untils = append(untils, datedLine{i, ds[1]})
		case len(ds) == 1 && hasFrom:
			froms = append(froms, datedLine{i, ds[0]})
		case len(ds) == 1 && hasUntil:
			untils = append(untils, datedLine{i, ds[0]})
		}
	}
	if len(froms) < 2 || len(untils) < 2 {
		return
	}

	categories := make([][]string, len(lines))
	for i, l := range lines {
		categories[i] = lineCategories(strings.ReplaceAll(l.Text, "憮", "無"))
	}

	var start, end strings.Builder
	for k := 0; k < min(len(froms), len(untils)); k++ {
		f, u := froms[k], untils[k]
		lo := max(0, f.idx-2, u.idx-2)
		hi := min(len(lines)-1, f.idx+2, u.idx+2)
		window := make([]int, 0, hi-lo+1)
		for i := lo; i <= hi; i++ {
			window = append(window, i)
		}
		sort.SliceStable(window, func(a, b int) bool {
			return absInt(window[a]-f.idx) < absInt(window[b]-f.idx)
		})
		for _, i := range window {
			if len(categories[i]) == 0 {
				continue
			}
			for _, c := range categories[i] {
				start.WriteString(c + " " + f.date.String() + ";")
				end.WriteString(c + " " + u.date.String() + ";")
			}
			categories[i] = nil
			break
		}
	}
	if start.Len() > 0 && end.Len() > 0 {
		res[constants.ValidityStart] = start.String()
		res[constants.ValidityEnd] = end.String()
	}
}

func lineCategories(text string) []string {
	var out []string
	for _, c := range dateCategories {
		if strings.Contains(text, c) {
			out = append(out, c)
			text = strings.ReplaceAll(text, c, "")
		}
	}
	return out
}

// dropCopayRatio removes a copay value holding a ratio; on these cards the
// ratio belongs to the subsidy, not to the elderly classification.
func dropCopayRatio(res Result, _ []ocr.Line) {
	if v, ok := res.Get(constants.CopayClass); ok && strings.Contains(v, "割") {
		delete(res, constants.CopayClass)
	}
}

var (
	reBareNumberLabel = regexp.MustCompile(`(?:^|\d)番号`)
	reDigitRun        = regexp.MustCompile(`[\d・-]+`)
)

// bareNumber reads a subscriber number after a 番号 label that starts the
// line or follows digits directly. The last such line wins.
func bareNumber(res Result, lines []ocr.Line) {
	if res.Has(constants.SubscriberNumber) {
		return
	}
	for _, l := range lines {
		text := strings.TrimSpace(l.Text)
		loc := reBareNumberLabel.FindStringIndex(text)
		if loc == nil {
			continue
		}
		if v := reDigitRun.FindString(text[loc[1]:]); v != "" {
			res[constants.SubscriberNumber] = v
		}
	}
}

// validityLabel looks around a fuzzy 有効期間 label for the range. The
// first date found fills the start when it is missing; the next one
// overrides the end.
func validityLabel(res Result, lines []ocr.Line) {
	if res.Has(constants.ValidityStart) && res.Has(constants.ValidityEnd) {
		return
	}
	for idx, l := range lines {
		if !pattern.FuzzyContains(l.Text, "有効期間", pattern.MaxLabelEdits) {
			continue
		}
		for i := max(0, idx-1); i <= min(len(lines)-1, idx+1); i++ {
			d, ok := pattern.FirstDate(lines[i].Text)
			if !ok {
				continue
			}
			if !res.Has(constants.ValidityStart) {
				res[constants.ValidityStart] = d.String()
				continue
			}
			res[constants.ValidityEnd] = d.String()
			return
		}
	}
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
