package core

import (
	"path/filepath"
	"testing"

	"github.com/huangsam/benchtable/core/loader"
	"github.com/huangsam/benchtable/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestGetRows(t *testing.T) {
	first := newRunSet("first",
		newResult("dir/a.c", "true", schema.CategoryCorrect, 2),
		newResult("dir/b.c", "false", schema.CategoryCorrect, 1),
	)
	second := newRunSet("second",
		newResult("dir/a.c", "TIMEOUT", schema.CategoryError, 0),
		newResult("dir/b.c", "false", schema.CategoryCorrect, 1),
	)

	rows, err := GetRows([]*loader.RunSetResult{first, second})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "dir/a.c", rows[0].Filename())
	assert.Equal(t, []string{"unreach-call"}, rows[0].Properties())
	assert.Same(t, second.Results[0], rows[0].Results[1])

	rows, err = GetRows(nil)
	assert.NoError(t, err)
	assert.Empty(t, rows)
}

func TestGetRowsMisaligned(t *testing.T) {
	first := newRunSet("first", newResult("a.c", "true", schema.CategoryCorrect, 2))
	second := newRunSet("second", newResult("b.c", "true", schema.CategoryCorrect, 2))
	_, err := GetRows([]*loader.RunSetResult{first, second})
	assert.ErrorContains(t, err, "not all results are for same task")

	third := newRunSet("third")
	_, err = GetRows([]*loader.RunSetResult{first, third})
	assert.ErrorContains(t, err, "not aligned")
}

func TestCommonPrefix(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		expected string
	}{
		{"shared directory", []string{"programs/loops/a.c", "programs/loops/ab.c"}, "programs/loops/"},
		{"partial directory name", []string{"programs/loop1/a.c", "programs/loop2/a.c"}, "programs/"},
		{"no directory", []string{"a.c", "b.c"}, ""},
		{"single file", []string{"x/y/z.c"}, "x/y/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var results []*schema.RunResult
			for _, f := range tt.files {
				results = append(results, newResult(f, "true", schema.CategoryCorrect, 2))
			}
			rows := rowsOf(t, newRunSet("rs", results...))
			assert.Equal(t, tt.expected, CommonPrefix(rows))
		})
	}
	assert.Empty(t, CommonPrefix(nil))
}

func TestSetRelativePaths(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "abs.c")
	rows := rowsOf(t, newRunSet("rs",
		newResult("programs/a.c", "true", schema.CategoryCorrect, 2),
		newResult(abs, "true", schema.CategoryCorrect, 2),
	))

	SetRelativePaths(rows, "programs/", "results")
	assert.Equal(t, "a.c", rows[0].ShortName)
	assert.Equal(t, filepath.Join("..", "programs", "a.c"), rows[0].FilePath)
	assert.Equal(t, abs, rows[1].FilePath)
}

func TestSelectRelevantIDColumns(t *testing.T) {
	same := rowsOf(t, newRunSet("rs",
		newResult("a.c", "true", schema.CategoryCorrect, 2),
		newResult("b.c", "true", schema.CategoryCorrect, 2),
	))
	assert.Equal(t, []bool{true, false, false}, SelectRelevantIDColumns(same))

	other := newResult("b.c", "true", schema.CategoryCorrect, 2)
	other.TaskID.Properties = "valid-memsafety"
	differ := rowsOf(t, newRunSet("rs", newResult("a.c", "true", schema.CategoryCorrect, 2), other))
	assert.Equal(t, []bool{true, true, false}, SelectRelevantIDColumns(differ))

	assert.Equal(t, []bool{true}, SelectRelevantIDColumns(nil))
}

func TestFilterRowsWithDifferences(t *testing.T) {
	t.Run("single run-set", func(t *testing.T) {
		rows := rowsOf(t, newRunSet("rs", newResult("a.c", "true", schema.CategoryCorrect, 2)))
		assert.Nil(t, FilterRowsWithDifferences(rows))
	})

	t.Run("some rows differ", func(t *testing.T) {
		observeLogs(t)
		rows := rowsOf(t,
			newRunSet("first",
				newResult("a.c", "true", schema.CategoryCorrect, 2),
				newResult("b.c", "true", schema.CategoryCorrect, 2),
			),
			newRunSet("second",
				newResult("a.c", "true", schema.CategoryCorrect, 2),
				newResult("b.c", "TIMEOUT", schema.CategoryError, 0),
			),
		)
		diff := FilterRowsWithDifferences(rows)
		require.Len(t, diff, 1)
		assert.Equal(t, "b.c", diff[0].Filename())
	})

	t.Run("missing result is not a difference", func(t *testing.T) {
		observeLogs(t)
		first := newRunSet("first",
			newResult("a.c", "true", schema.CategoryCorrect, 2),
			newResult("b.c", "true", schema.CategoryCorrect, 2),
		)
		second := newRunSet("second", newResult("a.c", "false", schema.CategoryWrong, -16))
		MergeTasks([]*loader.RunSetResult{first, second})
		diff := FilterRowsWithDifferences(rowsOf(t, first, second))
		require.Len(t, diff, 1)
		assert.Equal(t, "a.c", diff[0].Filename())
	})

	t.Run("no differences", func(t *testing.T) {
		logs := observeLogs(t)
		rows := rowsOf(t,
			newRunSet("first", newResult("a.c", "true", schema.CategoryCorrect, 2)),
			newRunSet("second", newResult("a.c", "true", schema.CategoryCorrect, 2)),
		)
		assert.Empty(t, FilterRowsWithDifferences(rows))
		assert.Equal(t, []string{"---> NO DIFFERENCE FOUND IN COLUMN 'STATUS'"}, messages(logs, zapcore.InfoLevel))
	})

	t.Run("all rows differ", func(t *testing.T) {
		logs := observeLogs(t)
		rows := rowsOf(t,
			newRunSet("first", newResult("a.c", "true", schema.CategoryCorrect, 2)),
			newRunSet("second", newResult("a.c", "false", schema.CategoryWrong, -16)),
		)
		assert.Nil(t, FilterRowsWithDifferences(rows))
		assert.Equal(t, []string{"---> DIFFERENCES FOUND IN ALL ROWS, NO NEED TO CREATE DIFFERENCE TABLE"}, messages(logs, zapcore.InfoLevel))
	})
}
