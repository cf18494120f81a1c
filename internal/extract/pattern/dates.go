package pattern

import (
	"iter"
	"regexp"
	"slices"
	"strconv"
)

// era marker, year, year separator, month, day
var reDate = regexp.MustCompile(`(?:(明治|大正|昭和|平成|令和|[MTSHR])\s*\.?\s*)?(\d{1,4}|元)\s*(年|[./])\s*(\d{1,2})\s*(?:月|[./])\s*(\d{1,2})\s*日?`)

// Dates yields every date expression in text, left to right. A year printed
// without an era inherits the era of the previous date in the same text, or
// Reiwa when it is the first one. Expressions that do not form a real
// calendar date are skipped.
func Dates(text string) iter.Seq[DateValue] {
	return func(yield func(DateValue) bool) {
		lastEra := Reiwa
		offset := 0
		for offset < len(text) {
			m := reDate.FindStringSubmatchIndex(text[offset:])
			if m == nil {
				return
			}
			base := offset
			group := func(i int) string {
				if m[2*i] < 0 {
					return ""
				}
				return text[base+m[2*i] : base+m[2*i+1]]
			}
			offset += m[1]

			marker, yearText, sep := group(1), group(2), group(3)
			era, hasEra := eraByMarker[marker]
			if !hasEra && sep != "年" && len(yearText) != 4 {
				continue
			}
			year := 1
			if yearText != "元" {
				year, _ = strconv.Atoi(yearText)
			}
			switch {
			case hasEra:
			case len(yearText) == 4:
				era = Gregorian
			case len(yearText) <= 2:
				era = lastEra
			default:
				continue
			}
			month, _ := strconv.Atoi(group(4))
			day, _ := strconv.Atoi(group(5))
			d, ok := newDate(era, year, month, day)
			if !ok {
				continue
			}
			if era != Gregorian {
				lastEra = era
			}
			if !yield(d) {
				return
			}
		}
	}
}

// ParseDates collects Dates(text).
func ParseDates(text string) []DateValue {
	return slices.Collect(Dates(text))
}

// FirstDate returns the leftmost date in text.
func FirstDate(text string) (DateValue, bool) {
	for d := range Dates(text) {
		return d, true
	}
	return DateValue{}, false
}

var reDualDate = regexp.MustCompile(`年.+月.+日.+年.+月.+日`)
var reFirstYMD = regexp.MustCompile(`年.*?月.*?日`)

// HasDualDate reports whether text looks like two year-month-day spans.
func HasDualDate(text string) bool { return reDualDate.MatchString(text) }

// SplitDualDate cuts text right after its first year…month…day span. The
// two halves are returned unparsed.
func SplitDualDate(text string) (first, second string, ok bool) {
	if !HasDualDate(text) {
		return "", "", false
	}
	loc := reFirstYMD.FindStringIndex(text)
	if loc == nil {
		return "", "", false
	}
	return text[:loc[1]], text[loc[1]:], true
}
