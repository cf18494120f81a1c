// Package finder implements the reusable extraction strategies an analyzer
// is configured with. A finder reads the line sequence and returns only the
// tags it could fill; it never sees the analyzer's shared result.
package finder

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/hoken-card-reader/constants"
	"github.com/joseph-ayodele/hoken-card-reader/internal/ocr"
)

// Result maps a field tag to its extracted text. A missing key means the
// field was not extracted.
type Result map[constants.FieldTag]string

// Get returns the value stored for tag. An empty value counts as absent.
func (r Result) Get(tag constants.FieldTag) (string, bool) {
	v, ok := r[tag]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Has reports whether tag holds a value.
func (r Result) Has(tag constants.FieldTag) bool {
	_, ok := r.Get(tag)
	return ok
}

// Finder is one extraction strategy.
type Finder interface {
	Find(lines []ocr.Line) Result
}

// Kind enumerates the built-in strategies.
type Kind int

const (
	// Simple takes the first line that matches a tag's pattern.
	Simple Kind = iota
	// Wide matches a tag's pattern against all line texts joined together.
	Wide
	// Dates parses dates per line and assigns them to tags by keyword.
	Dates
	// SymbolSubscriber extracts the 記号/番号 pair from one line.
	SymbolSubscriber
	// CopayClass extracts the elderly copay classification.
	CopayClass
	// LimitAmount extracts the monthly self-pay ceiling in yen.
	LimitAmount
)

func (k Kind) String() string {
	switch k {
	case Simple:
		return "simple"
	case Wide:
		return "wide"
	case Dates:
		return "dates"
	case SymbolSubscriber:
		return "symbol_subscriber"
	case CopayClass:
		return "copay_class"
	case LimitAmount:
		return "limit_amount"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type strategy struct {
	kind Kind
	tags []constants.FieldTag
}

// New returns the strategy of the given kind restricted to tags. Simple and
// Wide look each tag up in the pattern table; Dates only assigns the date
// tags it is given. The joint finders ignore tags and always report their
// own fixed set.
func New(kind Kind, tags ...constants.FieldTag) Finder {
	return &strategy{kind: kind, tags: append([]constants.FieldTag(nil), tags...)}
}

func (s *strategy) String() string {
	names := make([]string, len(s.tags))
	for i, t := range s.tags {
		names[i] = string(t)
	}
	return s.kind.String() + "(" + strings.Join(names, ",") + ")"
}

func (s *strategy) Find(lines []ocr.Line) Result {
	switch s.kind {
	case Simple:
		return findSimple(lines, s.tags)
	case Wide:
		return findWide(lines, s.tags)
	case Dates:
		return findDates(lines, s.tags)
	case SymbolSubscriber:
		return findSymbolSubscriber(lines)
	case CopayClass:
		return findCopayClass(lines)
	case LimitAmount:
		return findLimitAmount(lines)
	}
	return Result{}
}

func findSimple(lines []ocr.Line, tags []constants.FieldTag) Result {
	out := Result{}
	for _, tag := range tags {
		match, ok := tagMatchers[tag]
		if !ok {
			continue
		}
		for _, l := range lines {
			if v, ok := match(l.Text); ok {
				out[tag] = v
				break
			}
		}
	}
	return out
}

func findWide(lines []ocr.Line, tags []constants.FieldTag) Result {
	out := Result{}
	all := ocr.AllText(lines)
	for _, tag := range tags {
		match, ok := tagMatchers[tag]
		if !ok {
			continue
		}
		if v, ok := match(all); ok {
			out[tag] = v
		}
	}
	return out
}
