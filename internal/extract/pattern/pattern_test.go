package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dateStrings(ds []DateValue) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.String())
	}
	return out
}

func TestParseDates(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"reiwa", "令和2年4月1日", []string{"2020-04-01"}},
		{"first year", "令和元年5月1日", []string{"2019-05-01"}},
		{"showa", "生年月日 昭和50年1月2日", []string{"1975-01-02"}},
		{"heisei letter", "H31.4.30", []string{"2019-04-30"}},
		{"gregorian", "2021/03/31", []string{"2021-03-31"}},
		{"two on one line", "令和2年4月1日から令和3年3月31日まで", []string{"2020-04-01", "2021-03-31"}},
		{"inherits era", "平成30年4月1日から31年3月31日", []string{"2018-04-01", "2019-03-31"}},
		{"bare year defaults to reiwa", "3年3月31日まで", []string{"2021-03-31"}},
		{"impossible day", "令和3年2月30日", []string{}},
		{"dotted without era", "1.2.3", []string{}},
		{"no date", "保険者番号 01010016", []string{}},
		{"date after other text", "有効期限 令和5年3月31日", []string{"2023-03-31"}},
		{"three dates", "交付 令和2年4月1日 開始 令和2年4月1日 終了 令和3年3月31日", []string{"2020-04-01", "2020-04-01", "2021-03-31"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dateStrings(ParseDates(tt.in)))
		})
	}
}

func TestDatesStopsEarly(t *testing.T) {
	var got []DateValue
	for d := range Dates("令和2年4月1日 令和3年3月31日") {
		got = append(got, d)
		break
	}
	require.Len(t, got, 1)
	assert.Equal(t, "2020-04-01", got[0].String())
}

func TestDateValueOrdering(t *testing.T) {
	heisei, ok := FirstDate("平成31年4月30日")
	require.True(t, ok)
	gregorian, ok := FirstDate("2019/04/30")
	require.True(t, ok)
	reiwa, ok := FirstDate("令和元年5月1日")
	require.True(t, ok)

	assert.True(t, heisei.Equal(gregorian))
	assert.NotEqual(t, heisei.Era, gregorian.Era)
	assert.True(t, heisei.Before(reiwa))
	assert.Equal(t, 1, reiwa.Compare(heisei))
}

func TestNormalizeReiwa(t *testing.T) {
	tests := map[string]string{
		"令2年4月1日":    "令和2年4月1日",
		"和3年3月31日":   "令和3年3月31日",
		"令和年5月1日":    "令和元年5月1日",
		"昭和50年1月2日":  "昭和50年1月2日",
		"和田 太郎":      "和田 太郎",
		"令和2年":       "令和2年",
		"令3.4.1":     "令和3.4.1",
		"住所 平和1丁目2番": "住所 平和1丁目2番",
		"和歌山 令3号室":   "和歌山 令3号室",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeReiwa(in), in)
	}
}

func TestInsertImplicitReiwa(t *testing.T) {
	assert.Equal(t, "令和2年4月1日から令和3年3月31日まで", InsertImplicitReiwa("令和2年4月1日から3年3月31日まで"))
	assert.Equal(t, "2020年4月1日", InsertImplicitReiwa("2020年4月1日"))
	assert.Equal(t, "平成30年4月1日", InsertImplicitReiwa("平成30年4月1日"))
}

func TestSplitDualDate(t *testing.T) {
	first, second, ok := SplitDualDate("令和2年4月1日から令和3年3月31日まで")
	require.True(t, ok)
	assert.Equal(t, "令和2年4月1日", first)
	assert.Equal(t, "から令和3年3月31日まで", second)

	_, _, ok = SplitDualDate("令和2年4月1日")
	assert.False(t, ok)
}

func TestMatchInsurerNumber(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		found bool
	}{
		{"保険者番号 01010016", "01010016", true},
		{"保険者番号:0101001612", "01010016", true},
		{"負担者番号 28130011", "28130011", true},
		{"保 険 者 番 号 138057", "138057", true},
		{"記号 12 番号 34", "", false},
	}
	for _, tt := range tests {
		got, ok := MatchInsurerNumber(tt.in)
		assert.Equal(t, tt.found, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestLabels(t *testing.T) {
	assert.True(t, MatchInsurerLabel("保険者番号"))
	assert.True(t, MatchInsurerLabel("負担者 番号"))
	assert.False(t, MatchInsurerLabel("記号"))
	assert.True(t, MatchPublicRecipient("受給者 番号 1234567"))
	assert.False(t, MatchPublicRecipient("保険者番号"))
}

func TestBareInsurerNumber(t *testing.T) {
	got, ok := BareInsurerNumber("01010016")
	require.True(t, ok)
	assert.Equal(t, "01010016", got)

	got, ok = BareInsurerNumber("No 138057")
	require.True(t, ok)
	assert.Equal(t, "138057", got)

	_, ok = BareInsurerNumber("1234567")
	assert.False(t, ok)
}

func TestMatchSymbolSubscriber(t *testing.T) {
	got, ok := MatchSymbolSubscriber("記号 1234 番号 56枝番01")
	require.True(t, ok)
	assert.Equal(t, SymbolSubscriber{Symbol: "1234", Number: "56"}, got)

	got, ok = MatchSymbolSubscriber("記号:無 番号:7")
	require.True(t, ok)
	assert.Equal(t, "無", got.Symbol)

	_, ok = MatchSymbolSubscriber("記号 番号 12")
	assert.False(t, ok, "pair without symbol is not stored")
	_, ok = MatchSymbolSubscriber("記号 12")
	assert.False(t, ok)
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "123456", DigitsOnly("12-34・56"))
	assert.True(t, IsDigits("0123"))
	assert.False(t, IsDigits(""))
	assert.False(t, IsDigits("12a"))
	assert.True(t, IsInsurerShape("138057"))
	assert.False(t, IsInsurerShape("1380571"))
}

func TestValidInsurerCheckDigit(t *testing.T) {
	for _, n := range []string{"01010016", "01130012", "06139992", "138057"} {
		assert.True(t, ValidInsurerCheckDigit(n), n)
	}
	for _, n := range []string{"01010017", "0101001", "abcdefgh"} {
		assert.False(t, ValidInsurerCheckDigit(n), n)
	}
}

func TestFuzzyContains(t *testing.T) {
	assert.True(t, FuzzyContains("有効期間 令和2年", "有効期間", MaxLabelEdits))
	assert.True(t, FuzzyContains("有劾期間", "有効期間", MaxLabelEdits))
	assert.True(t, FuzzyContains("有期", "有効期間", MaxLabelEdits))
	assert.False(t, FuzzyContains("保険者番号", "有効期間", MaxLabelEdits))
	assert.True(t, FuzzyContains("anything", "", MaxLabelEdits))
}

func TestKnownListMatch(t *testing.T) {
	list := &KnownList{
		Standard: []string{"01010016", "138057"},
		Tolerant: []string{"01130012"},
	}

	got, ok := list.Match("保険者番号(0101001)6", []string{"(", ")", "ミ"})
	require.True(t, ok)
	assert.Equal(t, "01010016", got)

	got, ok = list.Match("番号 138057", nil)
	require.True(t, ok)
	assert.Equal(t, "138057", got)

	_, ok = list.Match("番号 01113001", nil)
	assert.False(t, ok)

	got, ok = list.MatchWithoutOnes("番号 011113001", []string{"(", ")"})
	require.True(t, ok, "stray ones are ignored")
	assert.Equal(t, "01130012", got)

	var none *KnownList
	_, ok = none.Match("01010016", nil)
	assert.False(t, ok)
}
