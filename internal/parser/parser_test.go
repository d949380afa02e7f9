package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFencedBlocks(t *testing.T) {
	t.Run("single block with language tag", func(t *testing.T) {
		blocks := ExtractFencedBlocks("Here you go:\n```yaml\nskills:\n  - Go\n```\nDone.")
		require.Len(t, blocks, 1)
		assert.Equal(t, "skills:\n  - Go", blocks[0])
	})

	t.Run("multiple blocks in order", func(t *testing.T) {
		text := "```\nfirst: 1\n```\nprose\n```yaml\nsecond: 2\n```"
		blocks := ExtractFencedBlocks(text)
		require.Len(t, blocks, 2)
		assert.Equal(t, "first: 1", blocks[0])
		assert.Equal(t, "second: 2", blocks[1])
	})

	t.Run("no fences", func(t *testing.T) {
		assert.Empty(t, ExtractFencedBlocks("just prose, no code"))
	})
}

func TestParseFirstBlock(t *testing.T) {
	t.Run("fenced yaml", func(t *testing.T) {
		got := ParseFirstBlock("Sure!\n```yaml\nprofile:\n  description: 'new'\n```")
		profile, ok := got["profile"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "new", profile["description"])
	})

	t.Run("first of several blocks wins", func(t *testing.T) {
		got := ParseFirstBlock("```yaml\nwinner: true\n```\n```yaml\nloser: true\n```")
		assert.Equal(t, true, got["winner"])
		assert.NotContains(t, got, "loser")
	})

	t.Run("no fences but a marker line", func(t *testing.T) {
		text := "Let me explain my reasoning at length.\n\nskills:\n  - Go\n  - Python\n"
		got := ParseFirstBlock(text)
		assert.Equal(t, []any{"Go", "Python"}, got["skills"])
	})

	t.Run("earliest marker wins", func(t *testing.T) {
		text := "profile:\n  description: 'x'\nskills:\n  - Go\n"
		got := ParseFirstBlock(text)
		assert.Contains(t, got, "profile")
		assert.Contains(t, got, "skills")
	})

	t.Run("empty input yields empty map", func(t *testing.T) {
		got := ParseFirstBlock("")
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("garbage yields empty map", func(t *testing.T) {
		got := ParseFirstBlock("I couldn't produce the requested output, sorry.")
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("unparseable fenced block yields empty map", func(t *testing.T) {
		got := ParseFirstBlock("```yaml\n: : : not yaml { [\n```")
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("scalar yaml yields empty map", func(t *testing.T) {
		got := ParseFirstBlock("```yaml\njust a string\n```")
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestSplitPrimaryAndTrailer(t *testing.T) {
	markers := []string{"CHANGES_MADE:", "CHANGELOG:"}

	t.Run("marker splits, trailer keeps the marker", func(t *testing.T) {
		text := "```yaml\nskills: [Go]\n```\nCHANGES_MADE:\n- added Go\n"
		primary, trailer := SplitPrimaryAndTrailer(text, markers)
		assert.Contains(t, primary, "skills: [Go]")
		assert.NotContains(t, primary, "CHANGES_MADE:")
		assert.True(t, len(trailer) > 0)
		assert.Contains(t, trailer, "CHANGES_MADE:")
		assert.Contains(t, trailer, "added Go")
	})

	t.Run("earliest of several markers wins", func(t *testing.T) {
		text := "payload\nCHANGELOG:\nfirst\nCHANGES_MADE:\nsecond"
		primary, trailer := SplitPrimaryAndTrailer(text, markers)
		assert.Equal(t, "payload", primary)
		assert.Contains(t, trailer, "CHANGELOG:")
	})

	t.Run("no marker means all primary", func(t *testing.T) {
		primary, trailer := SplitPrimaryAndTrailer("  just a payload  ", markers)
		assert.Equal(t, "just a payload", primary)
		assert.Empty(t, trailer)
	})
}
