package schema

import (
	"sort"

	"github.com/shopspring/decimal"
)

// StatValue aggregates the numeric values of one column within one bucket.
// Nil Min/Max/Avg/Median mean "not applicable", which is distinct from zero.
type StatValue struct {
	Sum    decimal.Decimal  `json:"sum" yaml:"sum"`
	Min    *decimal.Decimal `json:"min,omitempty" yaml:"min,omitempty"`
	Max    *decimal.Decimal `json:"max,omitempty" yaml:"max,omitempty"`
	Avg    *decimal.Decimal `json:"avg,omitempty" yaml:"avg,omitempty"`
	Median *decimal.Decimal `json:"median,omitempty" yaml:"median,omitempty"`

	// Text holds a value reported verbatim by the benchmark harness.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`
}

// AvgPrecision is the number of fractional digits kept for averages.
const AvgPrecision = 3

// NewCountStat returns a StatValue holding only a count.
func NewCountStat(n int) *StatValue {
	return &StatValue{Sum: decimal.NewFromInt(int64(n))}
}

// NewTextStat returns a StatValue displaying a harness-reported value.
func NewTextStat(text string) *StatValue {
	return &StatValue{Text: text}
}

// StatValueFromList aggregates values. An empty list yields a zero sum with
// every other field unset. The median is the upper middle element.
func StatValueFromList(values []decimal.Decimal) *StatValue {
	if len(values) == 0 {
		return &StatValue{Sum: decimal.Zero}
	}

	sorted := append([]decimal.Decimal(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	sum := decimal.Sum(sorted[0], sorted[1:]...)
	minV := sorted[0]
	maxV := sorted[len(sorted)-1]
	avg := sum.Div(decimal.NewFromInt(int64(len(sorted)))).RoundBank(AvgPrecision)
	median := sorted[len(sorted)/2]

	return &StatValue{
		Sum:    sum,
		Min:    &minV,
		Max:    &maxV,
		Avg:    &avg,
		Median: &median,
	}
}

// IsZero reports whether the sum is zero and no verbatim text is attached.
func (s *StatValue) IsZero() bool {
	return s == nil || (s.Text == "" && s.Sum.IsZero())
}

// String renders the sum, or the verbatim text when present.
func (s *StatValue) String() string {
	if s == nil {
		return ""
	}
	if s.Text != "" {
		return s.Text
	}
	return s.Sum.String()
}

// StatsRow is one line of the statistics footer. Content is flattened across
// run-sets and columns; nil entries are not applicable.
type StatsRow struct {
	ID          string       `json:"id" yaml:"id"`
	Title       string       `json:"title" yaml:"title"`
	Indent      int          `json:"indent,omitempty" yaml:"indent,omitempty"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Content     []*StatValue `json:"content" yaml:"content"`
}

// RunSetCounts is the (correct, wrong, other) tally of one run-set.
type RunSetCounts struct {
	Correct int `json:"correct" yaml:"correct"`
	Wrong   int `json:"wrong" yaml:"wrong"`
	Other   int `json:"other" yaml:"other"`
}
