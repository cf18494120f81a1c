package analyzer

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/joseph-ayodele/hoken-card-reader/constants"
	"github.com/joseph-ayodele/hoken-card-reader/internal/extract/finder"
	"github.com/joseph-ayodele/hoken-card-reader/internal/extract/pattern"
	"github.com/joseph-ayodele/hoken-card-reader/internal/ocr"
)

var dateTags = []constants.FieldTag{
	constants.Birthday,
	constants.ValidityStart,
	constants.ValidityEnd,
	constants.IssueDate,
}

// NewMain returns the analyzer for primary insurer cards.
func NewMain(opts ...Option) *Base {
	o := buildOptions(opts)
	return &Base{
		kind: constants.KindMain,
		entries: []Entry{
			{Tags: []constants.FieldTag{constants.InsurerNumber}, Finder: finder.New(finder.Wide, constants.InsurerNumber)},
			{Tags: []constants.FieldTag{constants.SymbolCode, constants.SubscriberNumber}, Finder: finder.New(finder.SymbolSubscriber)},
			{Tags: dateTags, Finder: finder.New(finder.Dates, dateTags...)},
			{Tags: []constants.FieldTag{constants.BranchNumber}, Finder: finder.New(finder.Wide, constants.BranchNumber)},
			{Tags: []constants.FieldTag{constants.CopayClass}, Finder: finder.New(finder.CopayClass)},
		},
		preprocess: []Preprocessor{
			reiwaPreprocessor(),
			repeatedOnePreprocessor(),
			hyphenPreprocessor(),
			branchPreprocessor(3),
		},
		passes: []Pass{
			{Name: "insurer_fallback", Run: insurerFallback},
			{Name: "insurer_trim", Run: trimInsurer},
			{Name: "branch_fallback", Run: branchFallback},
			{Name: "symbol_number_split", Run: symbolNumberSplit},
			{Name: "qualification_date", Run: qualificationDate},
			{Name: "dependent_class", Run: classifyDependent},
			{Name: "symbol_number_cleanup", Run: cleanSymbolNumber},
			knownListPass(o.known, mainListDeletes),
			symbolNonePass(),
			{Name: "prefix28_overrides", Run: prefix28Overrides},
			knownListNoOnePass(o.known, mainNoOneDeletes),
			{Name: "trailing_valid_end", Run: trailingValidEnd},
			dualDatePass(),
		},
		logger: o.logger,
	}
}

// insurerFallback looks for an insurer number near the bottom of the card,
// where some insurers print it without a label, then for any line that is
// nothing but a six or eight digit number.
func insurerFallback(res Result, lines []ocr.Line) {
	if res.Has(constants.InsurerNumber) {
		return
	}
	for _, l := range lines[max(0, len(lines)-2):] {
		if v, ok := pattern.MatchInsurerNumber(l.Text); ok {
			res[constants.InsurerNumber] = v
			return
		}
		if v, ok := pattern.BareInsurerNumber(l.Text); ok {
			res[constants.InsurerNumber] = v
			return
		}
	}
	for _, l := range lines {
		if t := strings.TrimSpace(l.Text); pattern.IsInsurerShape(t) {
			res[constants.InsurerNumber] = t
			return
		}
	}
}

// trimInsurer cuts a long insurer number to six digits on national health
// insurance cards and to eight everywhere else.
func trimInsurer(res Result, lines []ocr.Line) {
	v, ok := res.Get(constants.InsurerNumber)
	if !ok || len(v) < 7 {
		return
	}
	n := 8
	if strings.Contains(ocr.AllText(lines), "国民健康保険") {
		n = 6
	}
	if len(v) > n {
		res[constants.InsurerNumber] = v[:n]
	}
}

var reBranchAfterNumber = regexp.MustCompile(`番号\d+\(?番\)?(\d+)`)

// branchFallback handles "番号 123 番 45" where the branch follows a 番.
func branchFallback(res Result, lines []ocr.Line) {
	if res.Has(constants.BranchNumber) {
		return
	}
	for _, l := range lines {
		if m := reBranchAfterNumber.FindStringSubmatch(stripSpace(l.Text)); m != nil {
			res[constants.BranchNumber] = m[1]
			return
		}
	}
}

var reNumberValue = regexp.MustCompile(`番号[\s:：]*([\d・-]+)`)

// symbolNumberSplit pairs a 記号 line with the 番号 line two below it, for
// cards where the holder name sits between them.
func symbolNumberSplit(res Result, lines []ocr.Line) {
	if res.Has(constants.SymbolCode) || res.Has(constants.SubscriberNumber) {
		return
	}
	for i := 0; i+2 < len(lines); i++ {
		text := lines[i].Text
		at := strings.Index(text, "記号")
		if at < 0 || !strings.Contains(lines[i+2].Text, "番号") {
			continue
		}
		symbol := strings.TrimSpace(strings.TrimLeft(text[at+len("記号"):], ":： "))
		m := reNumberValue.FindStringSubmatch(lines[i+2].Text)
		if symbol == "" || m == nil {
			continue
		}
		res[constants.SymbolCode] = symbol
		res[constants.SubscriberNumber] = m[1]
		return
	}
}

var reQualification = regexp.MustCompile(`資格(?:取得|認定)`)

// qualificationDate reads the date the holder became insured. When the line
// carries two dates the earlier one is taken.
func qualificationDate(res Result, lines []ocr.Line) {
	if res.Has(constants.QualificationDate) {
		return
	}
	for _, l := range lines {
		loc := reQualification.FindStringIndex(l.Text)
		if loc == nil {
			continue
		}
		text := l.Text[loc[0]:]
		if first, second, ok := pattern.SplitDualDate(text); ok {
			a, okA := pattern.FirstDate(first)
			b, okB := pattern.FirstDate(second)
			if okA && okB {
				if b.Before(a) {
					a = b
				}
				res[constants.QualificationDate] = a.String()
				return
			}
		}
		if d, ok := pattern.FirstDate(text); ok {
			res[constants.QualificationDate] = d.String()
			return
		}
	}
}

var (
	familyKeywords = []string{"家族", "被扶養者"}
	selfKeywords   = []string{"本人"}
	// national health insurance and some mutual-aid numbers put the
	// householder and each insured person on separate cards
	holderNamePrefixes = []string{"67", "06"}
	reHolderName       = regexp.MustCompile(`(世帯主氏名|被保険者氏名|世帯主|氏名)[\s:：]*([^\d:：]*)`)
	// labels that may follow a name on the same line
	nameStopLabels = []string{"性別", "生年月日", "続柄", "住所", "記号", "番号", "交付", "有効"}
)

// classifyDependent decides 本人 or 家族. Explicit keywords win; for
// six digit numbers and the prefixes above, one distinct holder name means
// the card belongs to the holder.
func classifyDependent(res Result, lines []ocr.Line) {
	num, ok := res.Get(constants.InsurerNumber)
	if !ok || res.Has(constants.DependentClass) {
		return
	}
	all := ocr.AllText(lines)
	switch {
	case containsAny(all, familyKeywords):
		res[constants.DependentClass] = constants.HolderFamily
		return
	case containsAny(all, selfKeywords):
		res[constants.DependentClass] = constants.HolderSelf
		return
	}

	countNames := len(num) == 6
	for _, p := range holderNamePrefixes {
		countNames = countNames || strings.HasPrefix(num, p)
	}
	if !countNames {
		res[constants.DependentClass] = constants.HolderSelf
		return
	}
	names := map[string]struct{}{}
	for _, l := range lines {
		m := reHolderName.FindStringSubmatch(l.Text)
		if m == nil {
			continue
		}
		name := cutAtLabel(m[2], nameStopLabels)
		name = stripSpace(name)
		name = strings.ReplaceAll(name, "氏名", "")
		name = strings.ReplaceAll(name, "主", "")
		if name != "" {
			names[name] = struct{}{}
		}
	}
	if len(names) == 1 {
		res[constants.DependentClass] = constants.HolderSelf
	} else {
		res[constants.DependentClass] = constants.HolderFamily
	}
}

// cleanSymbolNumber trims separators OCR leaves around symbol and number and
// cuts an unbalanced parenthesis.
func cleanSymbolNumber(res Result, _ []ocr.Line) {
	for _, tag := range []constants.FieldTag{constants.SymbolCode, constants.SubscriberNumber} {
		v, ok := res.Get(tag)
		if !ok {
			continue
		}
		v = strings.Trim(v, "・")
		v = strings.Trim(v, "-")
		v = strings.ReplaceAll(v, ".", "")
		if (strings.Contains(v, "(") && !strings.Contains(v, ")")) || strings.Contains(v, "()") {
			v = v[:strings.Index(v, "(")]
		}
		res[tag] = v
	}
}

var reCertificateNumber = regexp.MustCompile(`被保険者証(\d+)`)

// prefix28Overrides applies to insurer numbers starting with 28, whose
// cards print the qualification date in the notes block and the number
// right after 被保険者証. Values are replaced only when found.
func prefix28Overrides(res Result, lines []ocr.Line) {
	num, ok := res.Get(constants.InsurerNumber)
	if !ok || !strings.HasPrefix(num, "28") {
		return
	}
	for _, l := range lines {
		if !pattern.FuzzyContains(l.Text, "注意事項", pattern.MaxLabelEdits) {
			continue
		}
		if d, ok := pattern.FirstDate(l.Text); ok {
			res[constants.QualificationDate] = d.String()
		}
	}
	for _, l := range lines {
		if m := reCertificateNumber.FindStringSubmatch(stripSpace(l.Text)); m != nil {
			res[constants.SubscriberNumber] = m[1]
		}
	}
}

// trailingValidEnd takes the date of a line ending in "…有効" as the end of
// validity, overriding the finder.
func trailingValidEnd(res Result, lines []ocr.Line) {
	for _, l := range lines {
		rs := []rune(l.Text)
		tail := string(rs[max(0, len(rs)-3):])
		if !strings.Contains(tail, "有効") {
			continue
		}
		if d, ok := pattern.FirstDate(l.Text); ok {
			res[constants.ValidityEnd] = d.String()
			return
		}
	}
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// cutAtLabel drops everything from the first of labels onward.
func cutAtLabel(s string, labels []string) string {
	for _, l := range labels {
		if i := strings.Index(s, l); i >= 0 {
			s = s[:i]
		}
	}
	return s
}
