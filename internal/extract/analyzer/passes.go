package analyzer

import (
	"strings"

	"github.com/joseph-ayodele/hoken-card-reader/constants"
	"github.com/joseph-ayodele/hoken-card-reader/internal/extract/pattern"
	"github.com/joseph-ayodele/hoken-card-reader/internal/ocr"
)

// Characters deleted from the joined document text before the known-list
// search. The lists differ per card type and per search.
var (
	mainListDeletes    = []string{"(", ")", "ミ"}
	mainNoOneDeletes   = []string{"(", ")"}
	publicListDeletes  = []string{"(", ")", "ミ"}
	publicNoOneDeletes = []string{"(", ")", "ミ"}
)

var symbolNoneMarkers = []string{"無", "し", "ノ", "/"}

// knownListPass replaces an absent or malformed insurer number with the
// first canonical number found in the document. A well-formed number from
// an earlier pass is kept.
func knownListPass(known *pattern.KnownList, deletes []string) Pass {
	return Pass{Name: "known_list", Run: func(res Result, lines []ocr.Line) {
		if v, ok := res.Get(constants.InsurerNumber); ok && pattern.IsInsurerShape(v) {
			return
		}
		if p, ok := known.Match(ocr.AllText(lines), deletes); ok {
			res[constants.InsurerNumber] = p
		}
	}}
}

// knownListNoOnePass is the fallback for a stray '1' inserted by the OCR
// engine. It only runs when nothing else produced an insurer number.
func knownListNoOnePass(known *pattern.KnownList, deletes []string) Pass {
	return Pass{Name: "known_list_no_one", Run: func(res Result, lines []ocr.Line) {
		if res.Has(constants.InsurerNumber) {
			return
		}
		if p, ok := known.MatchWithoutOnes(ocr.AllText(lines), deletes); ok {
			res[constants.InsurerNumber] = p
		}
	}}
}

func symbolNonePass() Pass {
	return Pass{Name: "symbol_none", Run: normalizeSymbolNone}
}

func normalizeSymbolNone(res Result, _ []ocr.Line) {
	v, ok := res.Get(constants.SymbolCode)
	if !ok {
		return
	}
	for _, m := range symbolNoneMarkers {
		if strings.Contains(v, m) {
			res[constants.SymbolCode] = constants.SymbolNone
			return
		}
	}
}

// dualDatePass reads a validity range printed as two dates on one line.
// The second half is the end date and is parsed first; nothing is written
// unless both halves parse.
func dualDatePass() Pass {
	return Pass{Name: "dual_date", Run: func(res Result, lines []ocr.Line) {
		if res.Has(constants.ValidityStart) && res.Has(constants.ValidityEnd) {
			return
		}
		for _, l := range lines {
			if !pattern.HasDualDate(l.Text) {
				continue
			}
			first, second, ok := pattern.SplitDualDate(pattern.InsertImplicitReiwa(l.Text))
			if !ok {
				continue
			}
			end, ok := pattern.FirstDate(second)
			if !ok {
				continue
			}
			start, ok := pattern.FirstDate(first)
			if !ok {
				continue
			}
			res[constants.ValidityEnd] = end.String()
			res[constants.ValidityStart] = start.String()
			return
		}
	}}
}

func numericSubscriberPass() Pass {
	return Pass{Name: "subscriber_digits", Run: func(res Result, _ []ocr.Line) {
		if v, ok := res.Get(constants.SubscriberNumber); ok {
			res[constants.SubscriberNumber] = pattern.DigitsOnly(v)
		}
	}}
}
