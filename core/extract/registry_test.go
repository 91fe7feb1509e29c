package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefixExtractor(t *testing.T) {
	lines := []string{
		"Some header",
		"   Time for analysis:   3.5s (a lot)",
		"Time for analysis: 9s",
		"Number of refinements: 7",
	}
	e := prefixExtractor{}

	v, ok := e.ValueFromOutput(lines, "Time for analysis")
	assert.True(t, ok)
	assert.Equal(t, "3.5s", v)

	v, ok = e.ValueFromOutput(lines, "Number of refinements")
	assert.True(t, ok)
	assert.Equal(t, "7", v)

	_, ok = e.ValueFromOutput(lines, "Unknown")
	assert.False(t, ok)
}

func TestRegexExtractor(t *testing.T) {
	e, err := NewExtractor(KindRegex)
	require.NoError(t, err)

	lines := []string{"iterations=12", "memory used: 512 MB"}

	v, ok := e.ValueFromOutput(lines, `iterations=(\d+)`)
	assert.True(t, ok)
	assert.Equal(t, "12", v)

	v, ok = e.ValueFromOutput(lines, `\d+ MB`)
	assert.True(t, ok)
	assert.Equal(t, "512 MB", v)

	_, ok = e.ValueFromOutput(lines, `nothing`)
	assert.False(t, ok)

	logs := observeLogs(t)
	_, ok = e.ValueFromOutput(lines, `(`)
	assert.False(t, ok)
	_, ok = e.ValueFromOutput(lines, `(`)
	assert.False(t, ok)
	assert.Equal(t, 1, logs.Len(), "invalid patterns are reported once")
}

func TestBaseAndNoneExtractors(t *testing.T) {
	for _, kind := range []Kind{KindBase, KindNone} {
		e, err := NewExtractor(kind)
		require.NoError(t, err)
		_, ok := e.ValueFromOutput([]string{"Time: 1"}, "Time")
		assert.False(t, ok)
	}

	_, err := NewExtractor(Kind("python"))
	assert.ErrorContains(t, err, "unknown extractor kind 'python'")
}

func TestRegistry(t *testing.T) {
	t.Run("Known Module", func(t *testing.T) {
		r, err := NewRegistry(nil)
		require.NoError(t, err)
		assert.IsType(t, prefixExtractor{}, r.Load("benchexec.tools.cpachecker", "rs"))
		assert.IsType(t, baseExtractor{}, r.Load("benchexec.tools.fusebmc", "rs"))
		assert.IsType(t, baseExtractor{}, r.Load("benchexec.tools.witch", "rs"))
	})

	t.Run("Missing Module Cached", func(t *testing.T) {
		logs := observeLogs(t)
		r, err := NewRegistry(nil)
		require.NoError(t, err)

		assert.Equal(t, Unavailable, r.Load("", "my-runset"))
		assert.Equal(t, Unavailable, r.Load("", "my-runset"))
		require.Equal(t, 1, logs.Len())
		assert.Contains(t, logs.All()[0].Message, `benchmark results my-runset (missing attribute "toolmodule" on tag "result")`)
	})

	t.Run("Unknown Module Cached", func(t *testing.T) {
		logs := observeLogs(t)
		r, err := NewRegistry(nil)
		require.NoError(t, err)

		assert.Equal(t, Unavailable, r.Load("benchexec.tools.unknown", "rs"))
		assert.Equal(t, Unavailable, r.Load("benchexec.tools.unknown", "rs"))
		assert.Equal(t, 1, logs.FilterMessageSnippet("benchexec.tools.unknown").Len())
	})

	t.Run("Aliases", func(t *testing.T) {
		r, err := NewRegistry(map[string]string{
			"benchexec.tools.mytool":     "regex",
			"benchexec.tools.cpachecker": "none",
		})
		require.NoError(t, err)
		assert.IsType(t, &regexExtractor{}, r.Load("benchexec.tools.mytool", "rs"))
		assert.Equal(t, Unavailable, r.Load("benchexec.tools.cpachecker", "rs"))
	})

	t.Run("Invalid Alias", func(t *testing.T) {
		_, err := NewRegistry(map[string]string{"benchexec.tools.mytool": "python"})
		assert.ErrorContains(t, err, "invalid extractor kind 'python'")
	})
}
