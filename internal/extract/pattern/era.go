// Package pattern holds the low-level matchers the finders and analyzers are
// built from. Everything here is a pure function of its input: no state, no
// errors, just "matched" or "not matched".
package pattern

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// Era is a Japanese imperial era, or Gregorian for plain western years.
type Era int

const (
	Gregorian Era = iota
	Meiji
	Taisho
	Showa
	Heisei
	Reiwa
)

var eraFirstYear = map[Era]int{
	Meiji:  1868,
	Taisho: 1912,
	Showa:  1926,
	Heisei: 1989,
	Reiwa:  2019,
}

var eraByMarker = map[string]Era{
	"明治": Meiji, "M": Meiji,
	"大正": Taisho, "T": Taisho,
	"昭和": Showa, "S": Showa,
	"平成": Heisei, "H": Heisei,
	"令和": Reiwa, "R": Reiwa,
}

func (e Era) String() string {
	switch e {
	case Meiji:
		return "明治"
	case Taisho:
		return "大正"
	case Showa:
		return "昭和"
	case Heisei:
		return "平成"
	case Reiwa:
		return "令和"
	}
	return "西暦"
}

// DateValue is a calendar date read from a card. Year, Month and Day are
// always Gregorian; Era and EraYear record how the card printed it.
type DateValue struct {
	Era     Era
	EraYear int
	Year    int
	Month   int
	Day     int
}

func newDate(era Era, eraYear, month, day int) (DateValue, bool) {
	year := eraYear
	if era != Gregorian {
		year = eraFirstYear[era] + eraYear - 1
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return DateValue{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return DateValue{}, false
	}
	return DateValue{Era: era, EraYear: eraYear, Year: year, Month: month, Day: day}, true
}

// String renders the date as YYYY-MM-DD.
func (d DateValue) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Compare orders dates by their Gregorian value; the printed era is ignored.
func (d DateValue) Compare(o DateValue) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(d.Month, o.Month)
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d DateValue) Equal(o DateValue) bool  { return d.Compare(o) == 0 }
func (d DateValue) Before(o DateValue) bool { return d.Compare(o) < 0 }

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// NormalizeReiwa repairs the Reiwa era marker when OCR dropped one of its
// two characters ("令2年", "和2年") and spells out the first year ("令和年").
// A lone 和 is only rewritten in front of a year so names and 昭和 survive.
func NormalizeReiwa(text string) string {
	rs := []rune(text)
	var b strings.Builder
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case r == '令' && i+1 < len(rs) && rs[i+1] == '和':
			b.WriteString("令和")
			i++
		case r == '令' && yearFollows(rs, i+1):
			b.WriteString("令和")
		case r == '和' && (i == 0 || rs[i-1] != '昭') && yearFollows(rs, i+1):
			b.WriteString("令和")
		default:
			b.WriteRune(r)
		}
	}
	return strings.ReplaceAll(b.String(), "令和年", "令和元年")
}

func yearFollows(rs []rune, i int) bool {
	for ; i < len(rs) && unicode.IsSpace(rs[i]); i++ {
	}
	if i >= len(rs) {
		return false
	}
	switch {
	case rs[i] == '年':
		return true
	case rs[i] == '元':
		return yearMarkerAt(rs, i+1)
	case !unicode.IsDigit(rs[i]):
		return false
	}
	for ; i < len(rs) && unicode.IsDigit(rs[i]); i++ {
	}
	return yearMarkerAt(rs, i)
}

// yearMarkerAt reports whether 年 or a date separator follows position i,
// so "和1丁目" is not mistaken for a year.
func yearMarkerAt(rs []rune, i int) bool {
	for ; i < len(rs) && unicode.IsSpace(rs[i]); i++ {
	}
	return i < len(rs) && (rs[i] == '年' || rs[i] == '.' || rs[i] == '/')
}

var reBareYear = regexp.MustCompile(`\d+年`)

// InsertImplicitReiwa prefixes 令和 to the first year number printed without
// an era. Four-digit years are Gregorian and left alone.
func InsertImplicitReiwa(text string) string {
	text = NormalizeReiwa(text)
	for _, loc := range reBareYear.FindAllStringIndex(text, -1) {
		digits := loc[1] - loc[0] - len("年")
		if digits >= 4 {
			continue
		}
		if hasEraBefore(text[:loc[0]]) {
			continue
		}
		return text[:loc[0]] + "令和" + text[loc[0]:]
	}
	return text
}

func hasEraBefore(prefix string) bool {
	p := strings.TrimRightFunc(prefix, unicode.IsSpace)
	for marker := range eraByMarker {
		if strings.HasSuffix(p, marker) {
			return true
		}
	}
	return false
}
