package constants

// FieldTag names one extracted field. Values are the keys used by the
// calling service in request and response documents.
type FieldTag string

const (
	InsurerNumber     FieldTag = "HknjaNum"
	SymbolCode        FieldTag = "Kigo"
	SubscriberNumber  FieldTag = "Num"
	BranchNumber      FieldTag = "Branch"
	Birthday          FieldTag = "Birthday"
	ValidityStart     FieldTag = "YukoStYmd"
	ValidityEnd       FieldTag = "YukoEdYmd"
	IssueDate         FieldTag = "KofuYmd"
	CopayClass        FieldTag = "RouFtnKbn"
	QualificationDate FieldTag = "SkkGetYmd"
	DependentClass    FieldTag = "HonKzkKbn"
	LimitAmount       FieldTag = "JgnGak"
)

var allFieldTags = []FieldTag{
	InsurerNumber,
	SymbolCode,
	SubscriberNumber,
	BranchNumber,
	Birthday,
	ValidityStart,
	ValidityEnd,
	IssueDate,
	CopayClass,
	QualificationDate,
	DependentClass,
	LimitAmount,
}

// AllFieldTags returns every tag in a stable order (used for export columns).
func AllFieldTags() []FieldTag {
	out := make([]FieldTag, len(allFieldTags))
	copy(out, allFieldTags)
	return out
}

// ParseFieldTag resolves a wire name to a tag.
func ParseFieldTag(s string) (FieldTag, bool) {
	for _, t := range allFieldTags {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Dependent classification values.
const (
	HolderSelf   = "本人"
	HolderFamily = "家族"
)

// SymbolNone is the canonical value for a card printed without a symbol.
const SymbolNone = "無し"
