package finder

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/hoken-card-reader/constants"
	"github.com/joseph-ayodele/hoken-card-reader/internal/extract/pattern"
)

type matcher func(text string) (string, bool)

var (
	reRecipientNumber = regexp.MustCompile(`受給者番号\D{0,3}?(\d[\d・-]*)`)
	reBranch          = regexp.MustCompile(`枝番[\s:：]*(\d+)`)
)

// tagMatchers backs the Simple and Wide strategies.
var tagMatchers = map[constants.FieldTag]matcher{
	constants.InsurerNumber:    pattern.MatchInsurerNumber,
	constants.SubscriberNumber: submatch(reRecipientNumber),
	constants.BranchNumber:     submatch(reBranch),
}

func submatch(re *regexp.Regexp) matcher {
	return func(text string) (string, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil || strings.TrimSpace(m[1]) == "" {
			return "", false
		}
		return strings.TrimSpace(m[1]), true
	}
}
