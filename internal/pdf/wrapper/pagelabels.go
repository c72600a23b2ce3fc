package wrapper

import (
	"sort"
	"strconv"
	"strings"
)

// Page label numbering styles (/S entry of a page label dictionary)
const (
	LabelStyleNone         = ""
	LabelStyleDecimal      = "D"
	LabelStyleUpperRoman   = "R"
	LabelStyleLowerRoman   = "r"
	LabelStyleUpperLetters = "A"
	LabelStyleLowerLetters = "a"
)

const (
	// maxLabelStart caps /St so a malformed value cannot blow up label sizes
	maxLabelStart = 1000000
	// maxSymbolicNumber is the largest number written as roman numerals or
	// letters; larger values fall back to decimal.
	maxSymbolicNumber = 10000
)

// LabelRange is one entry of the /PageLabels number tree: it applies from
// StartIndex up to the next range.
type LabelRange struct {
	StartIndex int    `json:"start_index"`
	Style      string `json:"style,omitempty"`
	Prefix     string `json:"prefix,omitempty"`
	First      int    `json:"first"`
}

// PageLabels resolves page indexes to their printed labels
type PageLabels struct {
	ranges []LabelRange
}

// NewPageLabels sorts the ranges and fills in the default start value
func NewPageLabels(ranges []LabelRange) *PageLabels {
	sorted := make([]LabelRange, 0, len(ranges))
	for _, r := range ranges {
		if r.StartIndex < 0 {
			continue
		}
		if r.First < 1 {
			r.First = 1
		}
		if r.First > maxLabelStart {
			r.First = maxLabelStart
		}
		sorted = append(sorted, r)
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StartIndex < sorted[j].StartIndex })
	return &PageLabels{ranges: sorted}
}

// Ranges returns a copy of the label ranges
func (pl *PageLabels) Ranges() []LabelRange {
	return append([]LabelRange(nil), pl.ranges...)
}

// Label returns the printed label of a 0-based page index. Pages before
// the first range have no label.
func (pl *PageLabels) Label(index int) (string, bool) {
	if pl == nil || index < 0 {
		return "", false
	}

	r, ok := pl.rangeFor(index)
	if !ok {
		return "", false
	}
	return r.Prefix + formatLabelNumber(r.Style, r.First+index-r.StartIndex), true
}

// Number returns the page number of a page labelled in plain decimal style
// without a prefix.
func (pl *PageLabels) Number(index int) (int, bool) {
	if pl == nil || index < 0 {
		return 0, false
	}

	r, ok := pl.rangeFor(index)
	if !ok || r.Style != LabelStyleDecimal || r.Prefix != "" {
		return 0, false
	}
	return r.First + index - r.StartIndex, true
}

func (pl *PageLabels) rangeFor(index int) (LabelRange, bool) {
	i := sort.Search(len(pl.ranges), func(i int) bool { return pl.ranges[i].StartIndex > index }) - 1
	if i < 0 {
		return LabelRange{}, false
	}
	return pl.ranges[i], true
}

func formatLabelNumber(style string, n int) string {
	switch style {
	case LabelStyleDecimal:
		return strconv.Itoa(n)
	case LabelStyleUpperRoman:
		return toRoman(n)
	case LabelStyleLowerRoman:
		return strings.ToLower(toRoman(n))
	case LabelStyleUpperLetters:
		return toLetters(n)
	case LabelStyleLowerLetters:
		return strings.ToLower(toLetters(n))
	default:
		return ""
	}
}

var romanNumerals = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

func toRoman(n int) string {
	if n <= 0 || n > maxSymbolicNumber {
		return strconv.Itoa(n)
	}
	var b strings.Builder
	for _, r := range romanNumerals {
		for n >= r.value {
			b.WriteString(r.symbol)
			n -= r.value
		}
	}
	return b.String()
}

// toLetters follows the PDF convention A..Z, AA..ZZ, AAA..ZZZ
func toLetters(n int) string {
	if n <= 0 || n > maxSymbolicNumber {
		return strconv.Itoa(n)
	}
	letter := byte('A' + (n-1)%26)
	return strings.Repeat(string(letter), (n-1)/26+1)
}
