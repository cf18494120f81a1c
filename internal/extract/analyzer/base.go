// Package analyzer drives field extraction for one document: preprocessing,
// the configured finders, then an ordered list of fallback and correction
// passes that share one result map.
package analyzer

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/joseph-ayodele/hoken-card-reader/constants"
	"github.com/joseph-ayodele/hoken-card-reader/internal/extract/finder"
	"github.com/joseph-ayodele/hoken-card-reader/internal/extract/pattern"
	"github.com/joseph-ayodele/hoken-card-reader/internal/ocr"
)

// Result is the shared field map of one Fit call.
type Result = finder.Result

// Entry binds one or more tags to the finder that fills them. Only the
// listed tags are taken from the finder's output.
type Entry struct {
	Tags   []constants.FieldTag
	Finder finder.Finder
}

// Preprocessor rewrites line texts in place before any extraction.
type Preprocessor struct {
	Name string
	Run  func(lines []ocr.Line)
}

// Pass reads and writes the shared result. Passes that guard on a tag being
// absent must check it themselves; a pass without the guard overrides.
type Pass struct {
	Name string
	Run  func(res Result, lines []ocr.Line)
}

// Base is a configured analyzer. It holds no per-document state and is safe
// for concurrent Fit calls.
type Base struct {
	kind       constants.DocKind
	entries    []Entry
	preprocess []Preprocessor
	passes     []Pass
	logger     *slog.Logger
}

// Option configures an analyzer.
type Option func(*options)

type options struct {
	known  *pattern.KnownList
	logger *slog.Logger
}

// WithKnownList supplies the canonical insurer numbers used by the
// known-list correction passes. Without it those passes do nothing.
func WithKnownList(k *pattern.KnownList) Option {
	return func(o *options) { o.known = k }
}

// WithLogger sets the logger for debug tracing of passes.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// Kind is the document kind this analyzer was built for.
func (b *Base) Kind() constants.DocKind { return b.kind }

// Passes lists the preprocessing steps and passes in execution order.
func (b *Base) Passes() []string {
	out := make([]string, 0, len(b.preprocess)+1+len(b.passes))
	for _, p := range b.preprocess {
		out = append(out, p.Name)
	}
	out = append(out, "finders")
	for _, p := range b.passes {
		out = append(out, p.Name)
	}
	return out
}

// Fit extracts fields from lines. The input is not modified.
func (b *Base) Fit(lines []ocr.Line) Result {
	work := ocr.NormalizeLines(lines)
	for _, p := range b.preprocess {
		p.Run(work)
	}

	res := Result{}
	debug := b.logger.Enabled(context.Background(), slog.LevelDebug)
	trace := func(name string, before Result) {
		if !debug {
			return
		}
		var written []string
		for tag, v := range res {
			if before[tag] != v {
				written = append(written, string(tag))
			}
		}
		if len(written) == 0 {
			return
		}
		slices.Sort(written)
		b.logger.Debug("pass wrote fields", "kind", b.kind, "pass", name, "tags", written)
	}

	before := maps.Clone(res)
	RunFinders(res, work, b.entries)
	trace("finders", before)

	for _, p := range b.passes {
		before = maps.Clone(res)
		p.Run(res, work)
		trace(p.Name, before)
	}
	return res
}

// RunFinders runs every entry in order and merges its tags into res. A tag
// that already holds a value is never overwritten, so running the finders
// again over a filled map changes nothing.
func RunFinders(res Result, lines []ocr.Line, entries []Entry) {
	for _, e := range entries {
		found := e.Finder.Find(lines)
		for _, tag := range e.Tags {
			if res.Has(tag) {
				continue
			}
			if v, ok := found.Get(tag); ok {
				res[tag] = v
			}
		}
	}
}

// ForKind returns the analyzer for a document kind. Limit certificates are
// read with the elderly analyzer.
func ForKind(kind constants.DocKind, opts ...Option) (*Base, bool) {
	switch kind {
	case constants.KindMain:
		return NewMain(opts...), true
	case constants.KindPublic:
		return NewPublic(opts...), true
	case constants.KindElderly:
		return NewElderly(opts...), true
	case constants.KindLimit:
		a := NewElderly(opts...)
		a.kind = constants.KindLimit
		return a, true
	}
	return nil, false
}

// Set picks the analyzer for each kind once and reuses it.
type Set struct {
	byKind map[constants.DocKind]*Base
}

// NewSet builds one analyzer per supported kind.
func NewSet(opts ...Option) *Set {
	s := &Set{byKind: map[constants.DocKind]*Base{}}
	for _, k := range []constants.DocKind{constants.KindMain, constants.KindPublic, constants.KindElderly, constants.KindLimit} {
		a, _ := ForKind(k, opts...)
		s.byKind[k] = a
	}
	return s
}

// For returns the analyzer for kind.
func (s *Set) For(kind constants.DocKind) (*Base, bool) {
	a, ok := s.byKind[kind]
	return a, ok
}
