package analyzer

import (
	"github.com/joseph-ayodele/hoken-card-reader/constants"
	"github.com/joseph-ayodele/hoken-card-reader/internal/extract/finder"
)

// NewElderly returns the analyzer for elderly co-pay cards. It shares the
// primary card's layout fixes, with a looser branch spacing threshold, and
// has no correction passes.
func NewElderly(opts ...Option) *Base {
	o := buildOptions(opts)
	return &Base{
		kind: constants.KindElderly,
		entries: []Entry{
			{Tags: dateTags, Finder: finder.New(finder.Dates, dateTags...)},
			{Tags: []constants.FieldTag{constants.CopayClass}, Finder: finder.New(finder.CopayClass)},
			{Tags: []constants.FieldTag{constants.InsurerNumber}, Finder: finder.New(finder.Wide, constants.InsurerNumber)},
			{Tags: []constants.FieldTag{constants.SymbolCode, constants.SubscriberNumber}, Finder: finder.New(finder.SymbolSubscriber)},
			{Tags: []constants.FieldTag{constants.BranchNumber}, Finder: finder.New(finder.Wide, constants.BranchNumber)},
		},
		preprocess: []Preprocessor{
			firstYearPreprocessor(),
			repeatedOnePreprocessor(),
			hyphenPreprocessor(),
			branchPreprocessor(2),
		},
		logger: o.logger,
	}
}
