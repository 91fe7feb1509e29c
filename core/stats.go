package core

import (
	"fmt"

	"github.com/huangsam/benchtable/core/loader"
	"github.com/huangsam/benchtable/core/units"
	"github.com/huangsam/benchtable/core/verdict"
	"github.com/huangsam/benchtable/internal/contract"
	"github.com/huangsam/benchtable/schema"
	"github.com/shopspring/decimal"
)

// Indices of the per-run-set statistic rows.
const (
	statTotal = iota
	statCorrect
	statCorrectTrue
	statCorrectFalse
	statIncorrect
	statWrongTrue
	statWrongFalse
	statScore
	statRowCount
)

// bucket is a (category, result class) pair.
type bucket struct {
	category schema.Category
	class    schema.ResultClass
}

var (
	correctTrue  = bucket{schema.CategoryCorrect, schema.ResultClassTrue}
	correctFalse = bucket{schema.CategoryCorrect, schema.ResultClassFalse}
	wrongTrue    = bucket{schema.CategoryWrong, schema.ResultClassTrue}
	wrongFalse   = bucket{schema.CategoryWrong, schema.ResultClassFalse}
)

// columnResults returns the results of run-set i across all rows.
func columnResults(rows []*Row, i int) []*schema.RunResult {
	results := make([]*schema.RunResult, len(rows))
	for j, row := range rows {
		results[j] = row.Results[i]
	}
	return results
}

// GetStats computes the statistics footer for the given rows. The content of
// each row is flattened across run-sets and their columns.
func GetStats(rows []*Row) []schema.StatsRow {
	var flat [statRowCount][]*schema.StatValue
	if len(rows) > 0 {
		for i := range rows[0].Results {
			perRunSet := statsOfRunSet(columnResults(rows, i))
			for k := range flat {
				flat[k] = append(flat[k], perRunSet[k]...)
			}
		}
	}

	countTrue, countFalse, maxScore := 0, 0, 0
	for _, row := range rows {
		props := row.Properties()
		if len(props) == 0 {
			countTrue, countFalse = 0, 0
			contract.Logger().Sugar().Infof("Missing property for %s.", row.Filename())
			break
		}
		if expected := verdict.SatisfiesFileProperty(row.Filename(), props); expected != nil {
			if *expected {
				countTrue++
			} else {
				countFalse++
			}
		}
		maxScore += verdict.ScoreForTask(row.Filename(), props, schema.CategoryCorrect)
	}
	taskCounts := fmt.Sprintf("in total %d true tasks, %d false tasks", countTrue, countFalse)

	stats := []schema.StatsRow{
		{ID: "total", Title: "total tasks", Description: taskCounts, Content: flat[statTotal]},
		{ID: "correct", Title: "correct results", Indent: 1,
			Description: "(property holds + result is true) OR (property does not hold + result is false)",
			Content:     flat[statCorrect]},
		{ID: "correct_true", Title: "correct true", Indent: 2,
			Description: "property holds + result is true", Content: flat[statCorrectTrue]},
		{ID: "correct_false", Title: "correct false", Indent: 2,
			Description: "property does not hold + result is false", Content: flat[statCorrectFalse]},
		{ID: "incorrect", Title: "incorrect results", Indent: 1,
			Description: "(property holds + result is false) OR (property does not hold + result is true)",
			Content:     flat[statIncorrect]},
		{ID: "incorrect_true", Title: "incorrect true", Indent: 2,
			Description: "property does not hold + result is true", Content: flat[statWrongTrue]},
		{ID: "incorrect_false", Title: "incorrect false", Indent: 2,
			Description: "property holds + result is false", Content: flat[statWrongFalse]},
	}
	if maxScore != 0 {
		stats = append(stats, schema.StatsRow{
			ID:          "score",
			Title:       fmt.Sprintf("score (%d tasks, max score: %d)", len(rows), maxScore),
			Description: taskCounts,
			Content:     flat[statScore],
		})
	}
	return stats
}

// statsOfRunSet computes, for every column of one run-set, the eight
// statistic entries. Nil entries are not applicable.
func statsOfRunSet(results []*schema.RunResult) [statRowCount][]*schema.StatValue {
	var out [statRowCount][]*schema.StatValue
	if len(results) == 0 {
		return out
	}

	for c, column := range results[0].Columns {
		var entries [statRowCount]*schema.StatValue
		if column.Title == "status" {
			entries = statusColumnStats(results)
		} else {
			values := make([]string, len(results))
			for i, r := range results {
				values[i] = r.Values[c]
			}
			numbers := numberColumnStats(values, results, column.Title)
			copy(entries[:statScore], numbers[:])
		}

		if allSumsZero(entries[:statScore]) {
			for k := 0; k < statScore; k++ {
				entries[k] = nil
			}
		}
		for k := range out {
			out[k] = append(out[k], entries[k])
		}
	}

	for k := range out {
		replaceIrrelevant(out[k])
	}
	return out
}

func statusColumnStats(results []*schema.RunResult) [statRowCount]*schema.StatValue {
	total := 0
	score := 0
	counts := make(map[bucket]int)
	for _, r := range results {
		if r.HasStatus() {
			total++
		}
		score += r.Score
		counts[bucket{r.Category, verdict.Classify(r.Status)}]++
	}

	var entries [statRowCount]*schema.StatValue
	entries[statTotal] = schema.NewCountStat(total)
	entries[statCorrect] = schema.NewCountStat(counts[correctTrue] + counts[correctFalse])
	entries[statCorrectTrue] = schema.NewCountStat(counts[correctTrue])
	entries[statCorrectFalse] = schema.NewCountStat(counts[correctFalse])
	entries[statIncorrect] = schema.NewCountStat(counts[wrongTrue] + counts[wrongFalse])
	entries[statWrongTrue] = schema.NewCountStat(counts[wrongTrue])
	entries[statWrongFalse] = schema.NewCountStat(counts[wrongFalse])
	entries[statScore] = schema.NewCountStat(score)
	return entries
}

// numberColumnStats aggregates a numeric column. One unparsable value makes
// the whole column report zeros.
func numberColumnStats(values []string, results []*schema.RunResult, title string) [statScore]*schema.StatValue {
	var entries [statScore]*schema.StatValue

	numbers := make([]decimal.Decimal, len(values))
	for i, v := range values {
		d, err := units.ToDecimal(v)
		if err != nil {
			if title != "host" {
				contract.Logger().Sugar().Warnf("%v. Statistics may be wrong.", err)
			}
			for k := range entries {
				entries[k] = schema.NewCountStat(0)
			}
			return entries
		}
		numbers[i] = d
	}

	perBucket := make(map[bucket][]decimal.Decimal)
	for i, r := range results {
		if r.Placeholder {
			continue
		}
		b := bucket{r.Category, verdict.Classify(r.Status)}
		perBucket[b] = append(perBucket[b], numbers[i])
	}
	join := func(a, b []decimal.Decimal) []decimal.Decimal {
		return append(append([]decimal.Decimal(nil), a...), b...)
	}

	entries[statTotal] = schema.StatValueFromList(numbers)
	entries[statCorrect] = schema.StatValueFromList(join(perBucket[correctTrue], perBucket[correctFalse]))
	entries[statCorrectTrue] = schema.StatValueFromList(perBucket[correctTrue])
	entries[statCorrectFalse] = schema.StatValueFromList(perBucket[correctFalse])
	entries[statIncorrect] = schema.StatValueFromList(join(perBucket[wrongTrue], perBucket[wrongFalse]))
	entries[statWrongTrue] = schema.StatValueFromList(perBucket[wrongTrue])
	entries[statWrongFalse] = schema.StatValueFromList(perBucket[wrongFalse])
	return entries
}

func allSumsZero(entries []*schema.StatValue) bool {
	for _, e := range entries {
		if e != nil && !e.Sum.IsZero() {
			return false
		}
	}
	return true
}

// replaceIrrelevant clears a row when its leading entry has no data.
func replaceIrrelevant(row []*schema.StatValue) {
	if len(row) == 0 {
		return
	}
	if row[0] == nil || row[0].Sum.IsZero() {
		for i := 1; i < len(row); i++ {
			row[i] = nil
		}
	}
}

// GetRegressionCount counts the tasks whose status changed between the last
// two run-sets to something that is not correct. Timeout and out-of-memory
// are treated as equivalent. With ignoreFlappingTimeouts, new timeouts of
// tasks that already timed out in an earlier run-set are not counted.
func GetRegressionCount(rows []*Row, ignoreFlappingTimeouts bool) int {
	if len(rows) == 0 || len(rows[0].Results) < 2 {
		return 0
	}
	last := len(rows[0].Results) - 1

	timeouts := make(map[int]struct{})
	for i := 0; i < last; i++ {
		for index, row := range rows {
			if r := row.Results[i]; !r.Placeholder && r.Status == schema.StatusTimeout {
				timeouts[index] = struct{}{}
			}
		}
	}

	regressions := 0
	for index, row := range rows {
		oldResult, newResult := row.Results[last-1], row.Results[last]
		if oldResult.SameStatus(newResult) || newResult.Category == schema.CategoryCorrect {
			continue
		}
		if ignoreFlappingTimeouts && isFlappingTimeout(timeouts, index, oldResult, newResult) {
			continue
		}
		if isTimeoutMemoryFlip(oldResult, newResult) {
			continue
		}
		regressions++
	}
	return regressions
}

func isFlappingTimeout(timeouts map[int]struct{}, index int, oldResult, newResult *schema.RunResult) bool {
	_, timedOut := timeouts[index]
	return timedOut && !isStatus(oldResult, schema.StatusTimeout) && isStatus(newResult, schema.StatusTimeout)
}

func isTimeoutMemoryFlip(oldResult, newResult *schema.RunResult) bool {
	return isStatus(oldResult, schema.StatusTimeout) && isStatus(newResult, schema.StatusOutOfMemory) ||
		isStatus(oldResult, schema.StatusOutOfMemory) && isStatus(newResult, schema.StatusTimeout)
}

func isStatus(r *schema.RunResult, status string) bool {
	return !r.Placeholder && r.Status == status
}

// GetCounts returns the correct, wrong and other tallies of every run-set.
func GetCounts(rows []*Row) []schema.RunSetCounts {
	if len(rows) == 0 {
		return nil
	}
	counts := make([]schema.RunSetCounts, len(rows[0].Results))
	for _, row := range rows {
		for i, r := range row.Results {
			switch r.Category {
			case schema.CategoryCorrect:
				counts[i].Correct++
			case schema.CategoryWrong:
				counts[i].Wrong++
			case schema.CategoryUnknown, schema.CategoryError, "":
				counts[i].Other++
			}
		}
	}
	return counts
}

// GetSummary returns the "local summary" row built from the values the
// benchmark harness reported, or nil when there are none.
func GetSummary(runSets []*loader.RunSetResult) *schema.StatsRow {
	var content []*schema.StatValue
	available := false
	for _, rs := range runSets {
		for _, column := range rs.Columns {
			value := rs.Summary[column.Title]
			if value == "" {
				content = append(content, nil)
				continue
			}
			available = true
			content = append(content, schema.NewTextStat(value))
		}
	}
	if !available {
		return nil
	}
	return &schema.StatsRow{
		ID:          "local_summary",
		Title:       "local summary",
		Description: "(This line contains some statistics from local execution. Only trust those values, if you use your own computer.)",
		Content:     content,
	}
}
