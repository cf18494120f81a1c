package ocr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/hoken-card-reader/constants"
)

// Token is one recognized fragment of a line.
type Token struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	// CharConfidences holds one score per rune of Text when the OCR engine
	// reports them; otherwise Confidence applies to every rune.
	CharConfidences []float64 `json:"char_confidences,omitempty"`
	X               float64   `json:"x"`
	Y               float64   `json:"y"`
	// CharX holds per-rune horizontal offsets relative to X.
	CharX []float64 `json:"char_x,omitempty"`
}

// Line is a top-to-bottom ordered OCR line. Text is the concatenated line
// text and is what every matcher reads; Tokens carry the geometry.
type Line struct {
	Tokens []Token `json:"tokens,omitempty"`
	Text   string  `json:"text"`
}

// Document is the unit handed to an analyzer.
type Document struct {
	Kind  constants.DocKind `json:"kind"`
	Lines []Line            `json:"lines"`
}

// RuneLen returns the number of runes in the token text.
func (t Token) RuneLen() int { return utf8.RuneCountInString(t.Text) }

// RuneConfidence returns the score of the i-th rune.
func (t Token) RuneConfidence(i int) float64 {
	if i >= 0 && i < len(t.CharConfidences) {
		return t.CharConfidences[i]
	}
	return t.Confidence
}

// Left and Right are absolute x positions of the first and last rune.
func (t Token) Left() float64 {
	if len(t.CharX) == 0 {
		return t.X
	}
	return t.X + t.CharX[0]
}

func (t Token) Right() float64 {
	if len(t.CharX) == 0 {
		return t.X
	}
	return t.X + t.CharX[len(t.CharX)-1]
}

// MeanCharGap is the average distance between adjacent rune offsets.
// ok is false when fewer than two offsets are known.
func (t Token) MeanCharGap() (gap float64, ok bool) {
	return meanGap(t.CharX)
}

func meanGap(xs []float64) (float64, bool) {
	if len(xs) < 2 {
		return 0, false
	}
	var sum float64
	for i := 1; i < len(xs); i++ {
		sum += xs[i] - xs[i-1]
	}
	return sum / float64(len(xs)-1), true
}

// MeanGap is exported for preprocessing heuristics that look at a subset
// of a token's offsets.
func MeanGap(xs []float64) (float64, bool) { return meanGap(xs) }

// JoinTokens concatenates the token texts.
func (l Line) JoinTokens() string {
	var b strings.Builder
	for _, t := range l.Tokens {
		b.WriteString(t.Text)
	}
	return b.String()
}

// RuneConfidences flattens per-rune scores across tokens. ok is false when
// the token texts do not add up to the line text, which happens once the
// line text has been rewritten.
func (l Line) RuneConfidences() ([]float64, bool) {
	var out []float64
	for _, t := range l.Tokens {
		for i := 0; i < t.RuneLen(); i++ {
			out = append(out, t.RuneConfidence(i))
		}
	}
	if len(out) != utf8.RuneCountInString(l.Text) {
		return nil, false
	}
	return out, true
}

// Clone deep-copies a line so preprocessing never touches caller data.
func (l Line) Clone() Line {
	out := Line{Text: l.Text, Tokens: make([]Token, len(l.Tokens))}
	for i, t := range l.Tokens {
		c := t
		c.CharConfidences = append([]float64(nil), t.CharConfidences...)
		c.CharX = append([]float64(nil), t.CharX...)
		out.Tokens[i] = c
	}
	return out
}

// CloneLines deep-copies a line sequence.
func CloneLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		out[i] = l.Clone()
	}
	return out
}

// Texts returns only the line texts.
func Texts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

// AllText concatenates every line text without separators.
func AllText(lines []Line) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.Text)
	}
	return b.String()
}

// UnmarshalJSON accepts both the object form and the array form produced by
// the OCR service: [token, token, ..., "line text"].
func (l *Line) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		return l.unmarshalArray(b)
	}
	type plain Line
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*l = Line(p)
	if l.Text == "" {
		l.Text = l.JoinTokens()
	}
	return nil
}

func (l *Line) unmarshalArray(b []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(b, &parts); err != nil {
		return err
	}
	if len(parts) == 0 {
		return fmt.Errorf("line: empty array")
	}
	var text string
	if err := json.Unmarshal(parts[len(parts)-1], &text); err != nil {
		return fmt.Errorf("line: last element must be the line text: %w", err)
	}
	toks := make([]Token, 0, len(parts)-1)
	for i, raw := range parts[:len(parts)-1] {
		var t Token
		if err := json.Unmarshal(raw, &t); err != nil {
			return fmt.Errorf("line: token %d: %w", i, err)
		}
		toks = append(toks, t)
	}
	*l = Line{Tokens: toks, Text: text}
	return nil
}

// UnmarshalJSON accepts the object form and the array form
// [text, confidences, char offsets, [x, y]].
func (t *Token) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '[' {
		type plain Token
		var p plain
		if err := json.Unmarshal(b, &p); err != nil {
			return err
		}
		*t = Token(p)
		return nil
	}
	var parts []json.RawMessage
	if err := json.Unmarshal(b, &parts); err != nil {
		return err
	}
	if len(parts) == 0 {
		return fmt.Errorf("token: empty array")
	}
	var out Token
	if err := json.Unmarshal(parts[0], &out.Text); err != nil {
		return fmt.Errorf("token: text: %w", err)
	}
	if len(parts) > 1 {
		conf, perRune, err := decodeScores(parts[1])
		if err != nil {
			return fmt.Errorf("token: confidences: %w", err)
		}
		out.Confidence, out.CharConfidences = conf, perRune
	}
	if len(parts) > 2 {
		if err := json.Unmarshal(parts[2], &out.CharX); err != nil {
			return fmt.Errorf("token: char offsets: %w", err)
		}
	}
	if len(parts) > 3 {
		var origin []float64
		if err := json.Unmarshal(parts[3], &origin); err != nil {
			return fmt.Errorf("token: origin: %w", err)
		}
		if len(origin) > 0 {
			out.X = origin[0]
		}
		if len(origin) > 1 {
			out.Y = origin[1]
		}
	}
	*t = out
	return nil
}

// decodeScores accepts a scalar or a per-rune array; the scalar for an
// array is its minimum.
func decodeScores(raw json.RawMessage) (float64, []float64, error) {
	var scalar float64
	if err := json.Unmarshal(raw, &scalar); err == nil {
		return scalar, nil, nil
	}
	var arr []float64
	if err := json.Unmarshal(raw, &arr); err != nil {
		return 0, nil, err
	}
	if len(arr) == 0 {
		return 0, nil, nil
	}
	low := arr[0]
	for _, v := range arr[1:] {
		low = min(low, v)
	}
	return low, arr, nil
}
