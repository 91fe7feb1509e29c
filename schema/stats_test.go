package schema_test

import (
	"testing"

	"github.com/huangsam/benchtable/schema"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decimals(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.RequireFromString(v)
	}
	return out
}

func TestStatValueFromList(t *testing.T) {
	t.Run("Simple", func(t *testing.T) {
		s := schema.StatValueFromList(decimals("1", "2", "3"))
		require.NotNil(t, s.Min)
		assert.True(t, s.Sum.Equal(decimal.NewFromInt(6)))
		assert.True(t, s.Min.Equal(decimal.NewFromInt(1)))
		assert.True(t, s.Max.Equal(decimal.NewFromInt(3)))
		assert.True(t, s.Avg.Equal(decimal.RequireFromString("2.0")))
		assert.True(t, s.Median.Equal(decimal.NewFromInt(2)))
	})

	t.Run("Unsorted Even Length Uses Upper Middle", func(t *testing.T) {
		s := schema.StatValueFromList(decimals("4", "1", "3", "2"))
		assert.True(t, s.Median.Equal(decimal.NewFromInt(3)))
		assert.True(t, s.Min.Equal(decimal.NewFromInt(1)))
		assert.True(t, s.Max.Equal(decimal.NewFromInt(4)))
		assert.Equal(t, "2.5", s.Avg.String())
	})

	t.Run("Average Rounded", func(t *testing.T) {
		s := schema.StatValueFromList(decimals("1", "1", "2"))
		assert.Equal(t, "1.333", s.Avg.String())
	})

	t.Run("Exact Summation", func(t *testing.T) {
		values := make([]decimal.Decimal, 10)
		for i := range values {
			values[i] = decimal.RequireFromString("0.1")
		}
		s := schema.StatValueFromList(values)
		assert.True(t, s.Sum.Equal(decimal.NewFromInt(1)))
	})

	t.Run("Empty", func(t *testing.T) {
		s := schema.StatValueFromList(nil)
		assert.True(t, s.Sum.IsZero())
		assert.Nil(t, s.Min)
		assert.Nil(t, s.Max)
		assert.Nil(t, s.Avg)
		assert.Nil(t, s.Median)
		assert.True(t, s.IsZero())
	})
}

func TestStatValueString(t *testing.T) {
	var nilStat *schema.StatValue
	assert.Equal(t, "", nilStat.String())
	assert.True(t, nilStat.IsZero())
	assert.Equal(t, "7", schema.NewCountStat(7).String())
	assert.Equal(t, "12.5 s", schema.NewTextStat("12.5 s").String())
	assert.False(t, schema.NewTextStat("0").IsZero())
}

func TestResultHelpers(t *testing.T) {
	id := schema.TaskID{Name: "a.c", Properties: "unreach-call  termination"}
	assert.Equal(t, []string{"unreach-call", "termination"}, id.PropertyList())
	assert.Equal(t, "a.c", id.Part(0))
	assert.Equal(t, "unreach-call  termination", id.Part(1))
	assert.Equal(t, "", id.Part(2))

	columns := []schema.Column{{Title: "status"}, {Title: "cputime"}}
	assert.Equal(t, []string{"status", "cputime"}, schema.ColumnTitles(columns))

	placeholder := schema.NewPlaceholderResult(id, columns)
	assert.Equal(t, schema.CategoryMissing, placeholder.Category)
	assert.Equal(t, 0, placeholder.Score)
	assert.Len(t, placeholder.Values, 2)
	assert.False(t, placeholder.HasStatus())

	empty := &schema.RunResult{TaskID: id}
	assert.False(t, empty.HasStatus())
	assert.False(t, placeholder.SameStatus(empty), "absent status differs from empty status")
	assert.True(t, placeholder.SameStatus(schema.NewPlaceholderResult(id, nil)))
}

func TestTableCounts(t *testing.T) {
	table := &schema.Table{
		RunSets: []schema.RunSetInfo{
			{Columns: []schema.Column{{Title: "status"}, {Title: "cputime"}}},
			{Columns: []schema.Column{{Title: "status"}}},
		},
		RelevantIDColumns: []bool{true, false, true},
	}
	assert.Equal(t, 3, table.ColumnCount())
	assert.Equal(t, 2, table.IDColumnCount())
}
