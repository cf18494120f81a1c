package finder

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/hoken-card-reader/constants"
	"github.com/joseph-ayodele/hoken-card-reader/internal/ocr"
)

func textLines(texts ...string) []ocr.Line {
	out := make([]ocr.Line, len(texts))
	for i, t := range texts {
		out[i] = ocr.Line{Text: t}
	}
	return out
}

var dateTags = []constants.FieldTag{
	constants.Birthday, constants.ValidityStart, constants.ValidityEnd, constants.IssueDate,
}

func TestFinders(t *testing.T) {
	tests := []struct {
		name   string
		finder Finder
		lines  []ocr.Line
		want   Result
	}{
		{
			name:   "wide insurer split across lines",
			finder: New(Wide, constants.InsurerNumber),
			lines:  textLines("保険者番号", "01010016"),
			want:   Result{constants.InsurerNumber: "01010016"},
		},
		{
			name:   "simple insurer stays per line",
			finder: New(Simple, constants.InsurerNumber),
			lines:  textLines("保険者番号", "01010016"),
			want:   Result{},
		},
		{
			name:   "simple recipient number",
			finder: New(Simple, constants.SubscriberNumber),
			lines:  textLines("公費負担者番号 28130011", "受給者番号 12-34・56"),
			want:   Result{constants.SubscriberNumber: "12-34・56"},
		},
		{
			name:   "wide branch",
			finder: New(Wide, constants.BranchNumber, constants.Birthday),
			lines:  textLines("記号 12 番号 34枝番", "01"),
			want:   Result{constants.BranchNumber: "01"},
		},
		{
			name:   "symbol subscriber pair",
			finder: New(SymbolSubscriber),
			lines:  textLines("被保険者証", "記号 1234 番号 567枝番01"),
			want:   Result{constants.SymbolCode: "1234", constants.SubscriberNumber: "567"},
		},
		{
			name:   "half pair is dropped",
			finder: New(SymbolSubscriber),
			lines:  textLines("記号 番号 567"),
			want:   Result{},
		},
		{
			name:   "copay label",
			finder: New(CopayClass),
			lines:  textLines("自己負担限度額 10000円", "一部負担金の割合 2割"),
			want:   Result{constants.CopayClass: "2割"},
		},
		{
			name:   "limit amount",
			finder: New(LimitAmount),
			lines:  textLines("自己負担上限額 10,000円"),
			want:   Result{constants.LimitAmount: "10000"},
		},
		{
			name:   "unknown kind",
			finder: New(Kind(99)),
			lines:  textLines("保険者番号 01010016"),
			want:   Result{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.finder.Find(tt.lines)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Find() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDatesFinder(t *testing.T) {
	lines := textLines(
		"氏名 保険 太郎",
		"生年月日 昭和50年1月2日",
		"資格取得年月日 平成10年4月1日",
		"交付年月日",
		"令和2年4月1日",
		"有効期限 令和6年3月31日",
		"令和3年1月1日",
	)
	got := New(Dates, dateTags...).Find(lines)
	want := Result{
		constants.Birthday:    "1975-01-02",
		constants.IssueDate:   "2020-04-01",
		constants.ValidityEnd: "2024-03-31",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("dates mismatch (-want +got):\n%s", diff)
	}
}

func TestDatesFinderRange(t *testing.T) {
	got := New(Dates, dateTags...).Find(textLines("令和2年4月1日から令和3年3月31日まで"))
	assert.Equal(t, "2020-04-01", got[constants.ValidityStart])
	assert.Equal(t, "2021-03-31", got[constants.ValidityEnd])

	got = New(Dates, constants.ValidityEnd).Find(textLines("昭和50年1月2日", "令和3年3月31日まで"))
	assert.Equal(t, Result{constants.ValidityEnd: "2021-03-31"}, got, "unconfigured tags are not filled")
}

func TestResultGet(t *testing.T) {
	r := Result{constants.SymbolCode: "", constants.SubscriberNumber: "1"}
	_, ok := r.Get(constants.SymbolCode)
	assert.False(t, ok)
	_, ok = r.Get(constants.BranchNumber)
	assert.False(t, ok)
	v, ok := r.Get(constants.SubscriberNumber)
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	assert.Equal(t, "wide(HknjaNum)", New(Wide, constants.InsurerNumber).(interface{ String() string }).String())
}
