package pattern

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reInsurerLabel   = regexp.MustCompile(`(?:保険者|負担者)(?:番号|No\.?)`)
	reInsurerNumber  = regexp.MustCompile(`(?:保険者|負担者)(?:番号|No\.?)\D{0,4}?(\d{6,})`)
	reBareInsurer    = regexp.MustCompile(`(?:^|\D)(\d{8}|\d{6})(?:\D|$)`)
	reRecipientLabel = regexp.MustCompile(`受給者番号`)
	reSymbolNumber   = regexp.MustCompile(`記号\s*[:：]?\s*(.*?)\s*番号\s*[:：]?\s*(.+)`)
	reNonDigit       = regexp.MustCompile(`\D`)
)

// MatchInsurerNumber finds a labelled insurer number (保険者番号 or, on
// public-subsidy cards, 負担者番号). Runs of more than eight digits are cut
// to eight since the extra digits belong to a neighbouring field; seven
// digit runs are left for the caller to trim.
func MatchInsurerNumber(text string) (string, bool) {
	m := reInsurerNumber.FindStringSubmatch(stripSpaces(text))
	if m == nil {
		return "", false
	}
	num := m[1]
	if len(num) > 8 {
		num = num[:8]
	}
	return num, true
}

// MatchInsurerLabel reports whether text carries the insurer-number label.
func MatchInsurerLabel(text string) bool { return reInsurerLabel.MatchString(stripSpaces(text)) }

// MatchPublicRecipient reports whether text carries the recipient-number
// label of a public-subsidy card.
func MatchPublicRecipient(text string) bool { return reRecipientLabel.MatchString(stripSpaces(text)) }

// BareInsurerNumber finds an unlabelled run of exactly six or eight digits.
func BareInsurerNumber(text string) (string, bool) {
	m := reBareInsurer.FindStringSubmatch(stripSpaces(text))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsInsurerShape reports whether s is a six or eight digit number.
func IsInsurerShape(s string) bool {
	return (len(s) == 6 || len(s) == 8) && IsDigits(s)
}

// SymbolSubscriber is the 記号/番号 pair printed on primary cards.
type SymbolSubscriber struct {
	Symbol string
	Number string
}

// MatchSymbolSubscriber splits a "記号 … 番号 …" line. Both halves must be
// present; a half pair is no match. A synthesized branch marker (枝番) ends
// the number.
func MatchSymbolSubscriber(text string) (SymbolSubscriber, bool) {
	m := reSymbolNumber.FindStringSubmatch(text)
	if m == nil {
		return SymbolSubscriber{}, false
	}
	num := m[2]
	if i := strings.Index(num, "枝番"); i >= 0 {
		num = num[:i]
	}
	out := SymbolSubscriber{
		Symbol: strings.TrimSpace(m[1]),
		Number: strings.TrimSpace(num),
	}
	if out.Symbol == "" || out.Number == "" {
		return SymbolSubscriber{}, false
	}
	return out, true
}

// DigitsOnly drops every non-digit character.
func DigitsOnly(s string) string { return reNonDigit.ReplaceAllString(s, "") }

// IsDigits reports whether s is non-empty and all ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ValidInsurerCheckDigit verifies the trailing check digit of an insurer
// number: from the right, body digits are weighted 2,1,2,1…, the digits of
// each product are summed, and the check digit is (10 - sum%10) % 10.
func ValidInsurerCheckDigit(num string) bool {
	if !IsInsurerShape(num) {
		return false
	}
	body, check := num[:len(num)-1], int(num[len(num)-1]-'0')
	sum := 0
	weight := 2
	for i := len(body) - 1; i >= 0; i-- {
		p := int(body[i]-'0') * weight
		sum += p/10 + p%10
		weight = 3 - weight
	}
	return (10-sum%10)%10 == check
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
