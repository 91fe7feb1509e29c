// Package units normalizes raw benchmark values: it separates numbers from
// their unit suffix, reformats them and converts them to exact decimals.
package units

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/huangsam/benchtable/schema"
	"github.com/shopspring/decimal"
)

// DefaultTimePrecision is the number of fractional digits used for columns
// whose title ends with "time" when no precision is configured.
const DefaultTimePrecision = 3

// SplitNumberAndUnit splits s at its last digit into a number prefix and a
// unit suffix. The prefix may contain non-digits as long as a digit follows.
func SplitNumberAndUnit(s string) (string, string) {
	pos := len(s)
	for pos > 0 && !isDigit(s[pos-1]) {
		pos--
	}
	return s[:pos], s[pos:]
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// RemoveUnit strips the unit from a number string, or returns the whole
// string when it holds no number.
func RemoveUnit(s string) string {
	prefix, suffix := SplitNumberAndUnit(s)
	if prefix == "" {
		return suffix
	}
	return prefix
}

// FormatNumber rounds the numeric part of s to digits fractional digits and
// re-appends its unit. Values that are not numbers are returned unchanged.
func FormatNumber(s string, digits int) string {
	value, suffix := SplitNumberAndUnit(strings.TrimSpace(s))
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return s
	}
	return strconv.FormatFloat(f, 'f', digits, 64) + suffix
}

// FormatValue renders a value for human-readable output. Empty values become
// "-"; time columns default to DefaultTimePrecision digits.
func FormatValue(value string, column schema.Column) string {
	if value == "" {
		return "-"
	}
	digits := column.NumberOfDigits
	if digits == nil && strings.HasSuffix(strings.ToLower(column.Title), "time") {
		d := DefaultTimePrecision
		digits = &d
	}
	if digits == nil {
		return value
	}
	return FormatNumber(value, *digits)
}

// ToDecimal parses the numeric part of s as an exact decimal. An empty string
// yields zero.
func ToDecimal(s string) (decimal.Decimal, error) {
	value, _ := SplitNumberAndUnit(strings.TrimFunc(s, unicode.IsSpace))
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return d, nil
}

// CollapseEqualValues merges adjacent equal values and sums their counts.
func CollapseEqualValues(values []string, counts []int) ([]string, []int) {
	if len(values) == 0 {
		return nil, nil
	}
	outValues := []string{values[0]}
	outCounts := []int{0}
	for i, v := range values {
		last := len(outValues) - 1
		if v != outValues[last] {
			outValues = append(outValues, v)
			outCounts = append(outCounts, 0)
			last++
		}
		outCounts[last] += counts[i]
	}
	return outValues, outCounts
}

// PrettyList de-duplicates values in order and renders a single value as is,
// several values as "[a; b]".
func PrettyList(values []string) string {
	seen := make(map[string]struct{}, len(values))
	var unique []string
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		unique = append(unique, v)
	}
	switch len(unique) {
	case 0:
		return ""
	case 1:
		return unique[0]
	default:
		return "[" + strings.Join(unique, "; ") + "]"
	}
}
